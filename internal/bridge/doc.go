// Package bridge connects the pub/sub broker to the push channel.
//
// The inbound side subscribes to the alert and admin-log topics and wraps
// arriving events for viewers; malformed payloads are dropped, not retried.
// The outbound side is a simulator that publishes synthetic events to the
// same topics on independent timers. Broker reconnection is left to the
// go-redis client: the bridge delivers what arrives while connected.
package bridge

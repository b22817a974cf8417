// Package redis builds the shared go-redis client.
//
// The client carries two hooks: a metrics hook recording operation counts
// and latency, and a circuit breaker hook that sheds load when the broker
// is down or slow instead of piling up timeouts.
package redis

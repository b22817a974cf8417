// Package domain defines the dashboard data model and the wire protocol.
//
// Concept-oriented files: dashboard.go (snapshot slices), message.go (the
// closed set of push-channel frames plus the JSON codec), event.go
// (broker-sourced events). No implementation code - just contracts shared
// by the state owner, the hub, the bridge, and the client.
package domain

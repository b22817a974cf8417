// Package client implements the viewer-side connection manager.
//
// The Manager is a small state machine: Disconnected -> Connecting ->
// Connected -> (Disconnected | Reconnecting). Reconnection uses a fixed
// delay and a bounded attempt count; a deliberate Disconnect is terminal
// and never retries. Duplicate external events are suppressed before they
// reach the message handler, and admin-topic events are dropped for
// non-admin roles. Filtering here is advisory, not a security boundary.
package client

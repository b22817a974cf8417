// Package hub implements the viewer connection registry and broadcast
// fan-out using the actor pattern.
//
// A single goroutine owns the connection map and processes commands from a
// channel (no mutexes). Each connection gets a buffered writer goroutine;
// clients that stop draining their buffer are evicted instead of blocking
// delivery to everyone else. A newly registered connection always receives
// one full snapshot before any delta.
package hub

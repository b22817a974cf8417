// Package state owns the mutable dashboard snapshot.
//
// The Store is not safe for concurrent use: it belongs to the feed loop,
// which is the only goroutine that mutates it. Every mutation replaces one
// slice of the snapshot wholesale; there are no cross-slice transactions.
package state

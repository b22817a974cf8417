// Package feed runs the metric mutators on a single goroutine.
//
// The Feed owns the state.Store and interleaves three independent tickers
// plus snapshot requests on one command loop, so every mutation-plus-publish
// pair runs to completion before the next command. No locks anywhere.
package feed

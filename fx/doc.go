// Package fx provides parallel-join combinators: run two or three
// independently-cancellable computations concurrently, wait for all of
// them, and combine their results. A failure or cancellation on any
// side cancels the others, and exactly one terminal outcome is
// delivered no matter how completions interleave.
//
// The coordination is a lock-free state machine over a single atomic
// cell; the three-way join is the pair join applied twice, so there is
// only one machine to trust.
package fx

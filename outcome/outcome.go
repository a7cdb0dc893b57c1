// Package outcome provides the terminal result type reported by a
// cancellable computation: a value or an error, never both.
package outcome

// Outcome is the tagged result of a single computation. It is terminal
// and immutable once produced.
type Outcome[T any] struct {
	value T
	err   error
}

// Success wraps a value.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failure wraps an error. A nil err still counts as a failure with a
// nil cause; callers are expected to pass a non-nil error.
func Failure[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// Succeeded reports whether the outcome carries a value.
func (o Outcome[T]) Succeeded() bool { return o.err == nil }

// Value returns the success value, or the zero value for a failure.
func (o Outcome[T]) Value() T { return o.value }

// Err returns the failure cause, or nil for a success.
func (o Outcome[T]) Err() error { return o.err }

// Unpack splits the outcome into Go's conventional (value, error) pair.
func (o Outcome[T]) Unpack() (T, error) { return o.value, o.err }

// Fold applies onSuccess or onFailure depending on the tag and returns
// the result.
func Fold[T, R any](o Outcome[T], onSuccess func(T) R, onFailure func(error) R) R {
	if o.err != nil {
		return onFailure(o.err)
	}
	return onSuccess(o.value)
}

// Pair is the intermediate tuple produced when two computations are
// joined without a user combiner, e.g. as the first half of a
// three-way join.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MkPair pairs two values. It is the identity combiner for a join.
func MkPair[A, B any](a A, b B) (Pair[A, B], error) {
	return Pair[A, B]{First: a, Second: b}, nil
}

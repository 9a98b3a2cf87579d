// Package result carries the outcome of a platform call: a value, a blame, or
// a blame together with the partial value that came back.
package result

import "github.com/abhissng/nhwr-mediator/blame"

// Result is either a success or a failure. The zero value is a success
// without a value.
type Result[T any] struct {
	val *T
	err blame.Blame
}

// NewSuccess wraps value.
func NewSuccess[T any](value *T) Result[T] {
	return Result[T]{val: value}
}

// NewFailure wraps err.
func NewFailure[T any](err blame.Blame) Result[T] {
	return Result[T]{err: err}
}

// NewFailureWithValue is a failure that still exposes what was received,
// e.g. the body of a rejected platform call.
func NewFailureWithValue[T any](value *T, err blame.Blame) Result[T] {
	return Result[T]{val: value, err: err}
}

// IsSuccess reports whether no error is held.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsError is the negation of IsSuccess.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// Value returns the value, which may be partial on failure, and the error.
func (r Result[T]) Value() (*T, blame.Blame) {
	return r.val, r.err
}

// Error returns the held error, nil on success.
func (r Result[T]) Error() blame.Blame {
	return r.err
}

// ToValue returns the value of a success and nil for a failure.
func (r Result[T]) ToValue() *T {
	if r.err != nil {
		return nil
	}
	return r.val
}

package command

import (
	"fmt"
	"strings"
)

// Outcome is the immutable result of a run. Every expected failure mode ends
// up here; a run only returns a non-nil Go error for framework-level faults.
type Outcome[T any] struct {
	result T
	errs   []*Error
	failed bool
	err    *OutcomeError
}

// Success creates a successful outcome carrying result.
func Success[T any](result T) *Outcome[T] {
	return &Outcome[T]{result: result}
}

// Failure creates a failed outcome carrying the given errors.
func Failure[T any](errs ...*Error) *Outcome[T] {
	copied := append([]*Error(nil), errs...)
	return &Outcome[T]{
		errs:   copied,
		failed: true,
		err:    &OutcomeError{errs: copied},
	}
}

// IsSuccess reports whether the run succeeded.
func (o *Outcome[T]) IsSuccess() bool {
	return !o.failed
}

// IsFailure reports whether the run failed.
func (o *Outcome[T]) IsFailure() bool {
	return o.failed
}

// Result returns the success value, or the zero value on failure.
func (o *Outcome[T]) Result() T {
	return o.result
}

// Errors returns the recorded errors in insertion order.
func (o *Outcome[T]) Errors() []*Error {
	out := make([]*Error, len(o.errs))
	copy(out, o.errs)
	return out
}

// AsError converts a failed outcome to an error, nil when successful.
func (o *Outcome[T]) AsError() error {
	if !o.failed {
		return nil
	}
	return o.err
}

// Unwrap returns the success value, or the zero value and an *OutcomeError
// when the run failed. Calling it repeatedly yields identical results.
func (o *Outcome[T]) Unwrap() (T, error) {
	if o.failed {
		var zero T
		return zero, o.err
	}
	return o.result, nil
}

// OutcomeError wraps the structured errors of a failed outcome so they can
// travel as a single Go error. It is the only place expected failures appear
// as an error value.
type OutcomeError struct {
	errs []*Error
}

// Errors returns the structured errors behind the failure.
func (e *OutcomeError) Errors() []*Error {
	out := make([]*Error, len(e.errs))
	copy(out, e.errs)
	return out
}

func (e *OutcomeError) Error() string {
	if len(e.errs) == 0 {
		return "command failed"
	}
	parts := make([]string, len(e.errs))
	for i, err := range e.errs {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("command failed: %s", strings.Join(parts, "; "))
}

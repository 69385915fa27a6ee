package app

import (
	"errors"
	"fmt"
)

// Assembly errors returned by Build, wrapped with the offending pattern and
// scope so callers can match with errors.Is.
var (
	// ErrDuplicateRoute is returned when two routes register the same
	// pattern with overlapping method sets. A route without explicit
	// methods accepts every method and therefore overlaps any other route
	// on the same pattern.
	ErrDuplicateRoute = errors.New("app: duplicate route")
)

// ErrTaskCompleted reports a request task that was run again after
// completing. Tasks are single-shot; a second run is an internal invariant
// violation, not a retryable condition.
var ErrTaskCompleted = errors.New("app: request task already completed")

// ErrBodyConsumed is returned by Context.Body when the request body has
// already been claimed.
var ErrBodyConsumed = errors.New("app: request body already consumed")

// CriticalError wraps failures that must abort the connection instead of
// producing a response: the error handler failing (or panicking), or an
// internal invariant violation such as re-running a completed task. The
// bundled http.Handler adapter reacts by panicking with
// http.ErrAbortHandler.
type CriticalError struct {
	Err error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("app: critical: %v", e.Err)
}

func (e *CriticalError) Unwrap() error { return e.Err }

// PanicError wraps a panic recovered from a handler, modifier, or the error
// handler. Value is the recovered value and Stack the goroutine stack at
// recovery time.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("app: panic: %v", e.Value)
}

package httperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with an associated HTTP status code. Msg, when set, is
// the client-visible message; Err, when set, is the wrapped cause.
type Error struct {
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return http.StatusText(e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error with the given status and client-visible message.
// An empty message falls back to the standard status text.
func New(status int, msg string) error {
	return &Error{Status: status, Msg: msg}
}

// Newf returns an error with the given status and a formatted
// client-visible message.
func Newf(status int, format string, args ...any) error {
	return &Error{Status: status, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a status to an existing error. It returns nil if err is
// nil. The wrapped error stays visible to errors.Is and errors.As, but its
// text is not client-visible; see Message.
func Wrap(status int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Status: status, Err: err}
}

// StatusOf returns the status of the first *Error in err's unwrap chain, or
// http.StatusInternalServerError if there is none.
func StatusOf(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Status
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether StatusOf(err) equals status.
func IsStatus(err error, status int) bool {
	return err != nil && StatusOf(err) == status
}

// Message returns the client-visible text for err: the message of the first
// *Error in the unwrap chain, or the bare status text for plain errors, so
// internal details are never exposed unless placed in an Error explicitly.
func Message(err error) string {
	var he *Error
	if errors.As(err, &he) {
		if he.Msg != "" {
			return he.Msg
		}
		return http.StatusText(he.Status)
	}
	return http.StatusText(http.StatusInternalServerError)
}

// BadRequest returns a 400 error with the given client-visible message.
func BadRequest(msg string) error {
	return New(http.StatusBadRequest, msg)
}

// Unauthorized returns a 401 error with the given client-visible message.
func Unauthorized(msg string) error {
	return New(http.StatusUnauthorized, msg)
}

// Forbidden returns a 403 error with the given client-visible message.
func Forbidden(msg string) error {
	return New(http.StatusForbidden, msg)
}

// NotFound returns a 404 error.
func NotFound() error {
	return New(http.StatusNotFound, "")
}

// MethodNotAllowed returns a 405 error.
func MethodNotAllowed() error {
	return New(http.StatusMethodNotAllowed, "")
}

// Internal wraps err as a 500 error, hiding its text from clients.
func Internal(err error) error {
	return Wrap(http.StatusInternalServerError, err)
}

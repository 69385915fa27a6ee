package app

import (
	"github.com/kumohq/kumo/httperror"
)

// Handler produces the response for one request. Serve may block; the
// request's context governs cancellation. Returning an error routes the
// request through the application's ErrorHandler instead of the modifier
// after-hooks.
type Handler interface {
	Serve(c *Context) (Output, error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc func(c *Context) (Output, error)

func (f HandlerFunc) Serve(c *Context) (Output, error) { return f(c) }

// Modifier wraps handler execution for every request dispatched in its scope
// and in descendant scopes.
//
// Before hooks run outermost first, root scope to leaf scope in registration
// order; After hooks run in the reverse order on the success path only. An
// error from any hook or from the handler skips the remaining hooks and goes
// to the ErrorHandler.
type Modifier interface {
	// Before runs ahead of the handler. A non-nil error short-circuits
	// the request.
	Before(c *Context) error

	// After transforms the handler's output on the success path.
	After(c *Context, out Output) (Output, error)
}

// BeforeFunc adapts a function to a Modifier whose After is a no-op.
type BeforeFunc func(c *Context) error

func (f BeforeFunc) Before(c *Context) error { return f(c) }

func (f BeforeFunc) After(_ *Context, out Output) (Output, error) { return out, nil }

// AfterFunc adapts a function to a Modifier whose Before is a no-op.
type AfterFunc func(c *Context, out Output) (Output, error)

func (f AfterFunc) Before(*Context) error { return nil }

func (f AfterFunc) After(c *Context, out Output) (Output, error) { return f(c, out) }

// ErrorHandler turns a request error into a response. It is invoked exactly
// once per failed request. If it returns an error (or panics), the request
// is aborted with a CriticalError; there is no second recovery level.
type ErrorHandler interface {
	HandleError(c *Context, err error) (Output, error)
}

// ErrorHandlerFunc adapts a function to an ErrorHandler.
type ErrorHandlerFunc func(c *Context, err error) (Output, error)

func (f ErrorHandlerFunc) HandleError(c *Context, err error) (Output, error) {
	return f(c, err)
}

// defaultErrorHandler renders the status carried by the error and its
// client-visible message as plain text.
type defaultErrorHandler struct{}

func (defaultErrorHandler) HandleError(_ *Context, err error) (Output, error) {
	return Text(httperror.StatusOf(err), httperror.Message(err)), nil
}

package app

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
)

// taskState tracks a Task through its one-shot lifecycle.
type taskState uint8

const (
	taskInit taskState = iota
	taskInFlight
	taskDone
)

// Task drives one request through resolution, the modifier chain, the
// handler, error handling, and response post-processing. A Task serves
// exactly one request: Run consumes it, and a second Run reports a critical
// ErrTaskCompleted instead of re-running hooks whose effects (consumed
// bodies, staged cookies) cannot be replayed.
//
// ServeHTTP runs a Task per request; constructing one directly is useful for
// driving the lifecycle without a transport, as in tests.
type Task struct {
	app   *App
	ctx   *Context
	state taskState
}

// NewTask prepares the lifecycle for a single request. The request path is
// taken as is; the HTTP adapter normalizes paths before constructing tasks.
func (a *App) NewTask(r *http.Request) *Task {
	return &Task{
		app: a,
		ctx: &Context{
			app:   a,
			req:   r,
			scope: RootScope,
			path:  requestPath(r),
		},
	}
}

// Context returns the task's request context. Before Run it carries only the
// request; resolution fills in the endpoint, scope, and captures.
func (t *Task) Context() *Context {
	return t.ctx
}

// Run resolves the request and executes it to a final Output.
//
// Handler and hook errors, including recovered panics, are turned into a
// response by the application's error handler; Run itself fails only on a
// critical error, after which the transport should abort the connection
// rather than write a reply.
func (t *Task) Run() (Output, error) {
	if t.state != taskInit {
		return Output{}, &CriticalError{Err: ErrTaskCompleted}
	}
	t.state = taskInFlight
	defer func() { t.state = taskDone }()

	d := t.app.resolve(t.ctx.req.Method, t.ctx.path)
	t.ctx.endpoint = d.endpoint
	t.ctx.scope = d.scope
	t.ctx.captures = d.captures
	t.ctx.allowed = d.allowed

	out, err := t.invoke(d)
	if err != nil {
		var crit *CriticalError
		if errors.As(err, &crit) {
			return Output{}, err
		}
		out, err = t.handleError(err)
		if err != nil {
			return Output{}, err
		}
	}

	t.finalize(&out)
	return out, nil
}

// invoke runs the scope's Before hooks in registration order, the handler,
// and the After hooks in reverse. The first error wins: a failing Before
// skips the handler, and any error skips every After, so the error handler
// is the single place an error surfaces.
func (t *Task) invoke(d dispatch) (out Output, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			out = Output{}
			err = &PanicError{Value: v, Stack: debug.Stack()}
		}
	}()

	mods := t.app.modifierChain(d.scope)
	for _, m := range mods {
		if err := m.Before(t.ctx); err != nil {
			return Output{}, err
		}
	}

	out, err = d.handler.Serve(t.ctx)
	if err != nil {
		return Output{}, err
	}

	for i := len(mods) - 1; i >= 0; i-- {
		out, err = mods[i].After(t.ctx, out)
		if err != nil {
			return Output{}, err
		}
	}
	return out, nil
}

// handleError renders the request error through the application's error
// handler. The produced Output does not re-enter any hook. A failing or
// panicking error handler escalates to a critical error.
func (t *Task) handleError(cause error) (out Output, err error) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			out = Output{}
			err = &CriticalError{Err: &PanicError{Value: v, Stack: debug.Stack()}}
		}
	}()

	out, err = t.app.errorHandler.HandleError(t.ctx, cause)
	if err != nil {
		return Output{}, &CriticalError{Err: err}
	}
	return out, nil
}

// finalize applies response post-processing: staged cookie changes become
// Set-Cookie headers, the header overlay replaces same-named output fields,
// and Content-Length is filled in when the body length is known. It runs on
// both the success and the error path.
func (t *Task) finalize(out *Output) {
	c := t.ctx

	if c.jar != nil {
		for _, ck := range c.jar.deltas() {
			out.ensureHeader().Add("Set-Cookie", ck.String())
		}
	}

	for k, vs := range c.header {
		out.ensureHeader()[k] = vs
	}

	if bodyless(out.statusOrDefault()) {
		return
	}
	if out.Header.Get("Content-Length") != "" {
		return
	}
	switch {
	case out.Body == nil:
		out.ensureHeader().Set("Content-Length", "0")
	case out.ContentLength > 0:
		out.ensureHeader().Set("Content-Length", strconv.FormatInt(out.ContentLength, 10))
	}
}

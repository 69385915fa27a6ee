package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
	"github.com/kumohq/kumo/localmap"
)

// ErrInvalidTimeout is returned when TimeoutConfig.Duration is not greater
// than zero.
var ErrInvalidTimeout = errors.New("middleware: duration must be greater than zero")

// cancelKey carries the deadline release between the hooks and the error
// handler decorator.
var cancelKey = localmap.NewKey[context.CancelFunc]("middleware.timeout-cancel")

// TimeoutConfig configures the Timeout modifier behaviour.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the handler to complete.
	// Must be greater than zero.
	Duration time.Duration
}

// Timeout returns a modifier that caps handler execution time through the
// request context: the handler observes the deadline via c.Context() and is
// expected to return once it expires. Handlers that ignore the context run
// to completion regardless.
//
// Pair the modifier with TimeoutErrors so deadline failures render as 503
// and the timer is released on the error path; otherwise it self-releases
// when the deadline fires.
func Timeout(cfg TimeoutConfig) (app.Modifier, error) {
	if cfg.Duration <= 0 {
		return nil, ErrInvalidTimeout
	}
	return &timeout{duration: cfg.Duration}, nil
}

type timeout struct {
	duration time.Duration
}

func (t *timeout) Before(c *app.Context) error {
	ctx, cancel := context.WithTimeout(c.Context(), t.duration)
	localmap.Set(c.Locals(), cancelKey, cancel)
	c.WithContext(ctx)
	return nil
}

func (t *timeout) After(c *app.Context, out app.Output) (app.Output, error) {
	if cancel, ok := localmap.Get(c.Locals(), cancelKey); ok {
		cancel()
	}
	return out, nil
}

// TimeoutErrors decorates an error handler so deadline-exceeded failures
// render as 503 Service Unavailable, the way http.TimeoutHandler responds.
// Other causes pass through unchanged. A nil next renders the error the way
// the application default does.
func TimeoutErrors(next app.ErrorHandler) app.ErrorHandler {
	return app.ErrorHandlerFunc(func(c *app.Context, cause error) (app.Output, error) {
		if cancel, ok := localmap.Get(c.Locals(), cancelKey); ok {
			cancel()
		}

		if errors.Is(cause, context.DeadlineExceeded) {
			cause = httperror.Wrap(http.StatusServiceUnavailable, cause)
		}
		return renderError(c, cause, next)
	})
}

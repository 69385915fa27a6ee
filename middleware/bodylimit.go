package middleware

import (
	"errors"
	"net/http"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// ErrInvalidMaxSize is returned when BodyLimitConfig.MaxBytes is not
// greater than zero.
var ErrInvalidMaxSize = errors.New("middleware: max size must be greater than zero")

// BodyLimitConfig configures the BodyLimit modifier behaviour.
type BodyLimitConfig struct {
	// MaxBytes is the maximum allowed request body size in bytes.
	// Must be greater than zero.
	MaxBytes int64
}

// BodyLimit returns a modifier that limits the size of incoming request
// bodies. Requests declaring a larger Content-Length are rejected up front
// with 413; for the rest the body is wrapped with http.MaxBytesReader, so a
// read past the limit yields *http.MaxBytesError, which the binding helpers
// render as 413 Content Too Large.
//
// It returns ErrInvalidMaxSize if MaxBytes is not greater than zero.
func BodyLimit(cfg BodyLimitConfig) (app.Modifier, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}

	maxBytes := cfg.MaxBytes

	return app.BeforeFunc(func(c *app.Context) error {
		r := c.Request()
		if r.ContentLength > maxBytes {
			return httperror.New(http.StatusRequestEntityTooLarge, "request body too large")
		}
		if r.Body != nil {
			r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
		}
		return nil
	}), nil
}

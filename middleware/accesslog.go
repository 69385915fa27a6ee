package middleware

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
	"github.com/kumohq/kumo/localmap"
)

// ErrNoLogger is returned when AccessLogConfig.Logger is nil.
var ErrNoLogger = errors.New("middleware: logger must not be nil")

var startTimeKey = localmap.NewKey[time.Time]("middleware.start-time")

// AccessLogConfig configures the AccessLog modifier behaviour.
type AccessLogConfig struct {
	// Logger receives one entry per completed request. Required.
	Logger *zap.Logger

	// SkipPaths lists exact request paths that are not logged, such as
	// health check endpoints.
	SkipPaths []string
}

// accessLog logs one entry per successfully completed request.
type accessLog struct {
	logger *zap.Logger
	skip   map[string]struct{}
}

// AccessLog returns a modifier that logs completed requests: method, path,
// route, status, duration, peer address, and the request ID when the
// RequestID modifier runs ahead of it.
//
// After hooks do not run for failed requests; pair the modifier with
// LogErrors on the application's error handler to cover the error path.
//
// It returns ErrNoLogger if Logger is nil.
func AccessLog(cfg AccessLogConfig) (app.Modifier, error) {
	if cfg.Logger == nil {
		return nil, ErrNoLogger
	}

	m := &accessLog{logger: cfg.Logger}
	if len(cfg.SkipPaths) > 0 {
		m.skip = make(map[string]struct{}, len(cfg.SkipPaths))
		for _, p := range cfg.SkipPaths {
			m.skip[p] = struct{}{}
		}
	}
	return m, nil
}

func (m *accessLog) Before(c *app.Context) error {
	localmap.Set(c.Locals(), startTimeKey, time.Now())
	return nil
}

func (m *accessLog) After(c *app.Context, out app.Output) (app.Output, error) {
	if _, skip := m.skip[c.Path()]; skip {
		return out, nil
	}

	m.logger.Info("http request", requestFields(c, statusOf(out))...)
	return out, nil
}

// LogErrors decorates an error handler so that failed requests are logged
// with the error and the status of the rendered response. A nil next renders
// the error the way the application default does.
func LogErrors(logger *zap.Logger, next app.ErrorHandler) app.ErrorHandler {
	return app.ErrorHandlerFunc(func(c *app.Context, cause error) (app.Output, error) {
		out, err := renderError(c, cause, next)
		if err != nil {
			return out, err
		}

		fields := append(requestFields(c, statusOf(out)), zap.Error(cause))
		logger.Error("http request failed", fields...)
		return out, nil
	})
}

// renderError produces the error response through next, or through the
// default rendering when next is nil.
func renderError(c *app.Context, cause error, next app.ErrorHandler) (app.Output, error) {
	if next != nil {
		return next.HandleError(c, cause)
	}
	return app.Text(httperror.StatusOf(cause), httperror.Message(cause)), nil
}

func requestFields(c *app.Context, status int) []zap.Field {
	var route string
	if ep := c.Endpoint(); ep != nil {
		route = ep.Pattern()
	}

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("remote_addr", c.Request().RemoteAddr),
		zap.String("user_agent", c.Request().UserAgent()),
	}

	if start, ok := localmap.Get(c.Locals(), startTimeKey); ok {
		fields = append(fields, zap.Duration("duration", time.Since(start)))
	}
	if id := RequestIDFrom(c); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}

func statusOf(out app.Output) int {
	if out.Status == 0 {
		return http.StatusOK
	}
	return out.Status
}

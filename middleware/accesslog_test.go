package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

func TestAccessLog(t *testing.T) {
	t.Run("config error nil logger", func(t *testing.T) {
		_, err := AccessLog(AccessLogConfig{})
		assert.ErrorIs(t, err, ErrNoLogger)
	})

	t.Run("logs completed requests", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		mw, err := AccessLog(AccessLogConfig{Logger: zap.New(core)})
		require.NoError(t, err)

		b := app.New()
		b.Use(mw)
		b.HandleFunc("/users/:id", func(*app.Context) (app.Output, error) {
			return app.Text(http.StatusOK, "ok"), nil
		}).Methods(http.MethodGet)
		a, err := b.Build()
		require.NoError(t, err)

		w := httptest.NewRecorder()
		a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "http request", entry.Message)

		fields := entry.ContextMap()
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/users/42", fields["path"])
		assert.Equal(t, "/users/:id", fields["route"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Contains(t, fields, "duration")
		assert.Contains(t, fields, "remote_addr")
	})

	t.Run("skips configured paths", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		mw, err := AccessLog(AccessLogConfig{
			Logger:    zap.New(core),
			SkipPaths: []string{"/healthz"},
		})
		require.NoError(t, err)

		b := app.New()
		b.Use(mw)
		b.HandleFunc("/healthz", func(*app.Context) (app.Output, error) {
			return app.NoContent(), nil
		})
		b.HandleFunc("/work", func(*app.Context) (app.Output, error) {
			return app.NoContent(), nil
		})
		a, err := b.Build()
		require.NoError(t, err)

		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/work", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "/work", logs.All()[0].ContextMap()["path"])
	})

	t.Run("includes request id when present", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		mw, err := AccessLog(AccessLogConfig{Logger: zap.New(core)})
		require.NoError(t, err)

		b := app.New()
		b.Use(RequestID(RequestIDConfig{Generate: func(*http.Request) string { return "rid-1" }}), mw)
		b.HandleFunc("/", func(*app.Context) (app.Output, error) {
			return app.NoContent(), nil
		})
		a, err := b.Build()
		require.NoError(t, err)

		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "rid-1", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestLogErrors(t *testing.T) {
	t.Run("logs and renders the error", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		b := app.New()
		b.SetErrorHandler(LogErrors(zap.New(core), nil))
		b.HandleFunc("/", func(*app.Context) (app.Output, error) {
			return app.Output{}, httperror.Forbidden("not yours")
		})
		a, err := b.Build()
		require.NoError(t, err)

		w := httptest.NewRecorder()
		a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "not yours", w.Body.String())

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zap.ErrorLevel, entry.Level)
		assert.Equal(t, "http request failed", entry.Message)
		assert.Equal(t, int64(http.StatusForbidden), entry.ContextMap()["status"])
		assert.Equal(t, "not yours", entry.ContextMap()["error"])
	})

	t.Run("renders through the wrapped handler", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		custom := app.ErrorHandlerFunc(func(_ *app.Context, err error) (app.Output, error) {
			return app.JSON(httperror.StatusOf(err), map[string]string{"error": httperror.Message(err)})
		})

		b := app.New()
		b.SetErrorHandler(LogErrors(zap.New(core), custom))
		b.HandleFunc("/", func(*app.Context) (app.Output, error) {
			return app.Output{}, httperror.BadRequest("nope")
		})
		a, err := b.Build()
		require.NoError(t, err)

		w := httptest.NewRecorder()
		a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"nope"}`, w.Body.String())
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("success path logs nothing", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)

		b := app.New()
		b.SetErrorHandler(LogErrors(zap.New(core), nil))
		b.HandleFunc("/", func(*app.Context) (app.Output, error) {
			return app.NoContent(), nil
		})
		a, err := b.Build()
		require.NoError(t, err)

		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Zero(t, logs.Len())
	})
}

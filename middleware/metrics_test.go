package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

func newMetricsApp(t *testing.T, m *Metrics) *app.App {
	t.Helper()

	b := app.New()
	b.Use(m)
	b.SetErrorHandler(m.WrapErrorHandler(nil))
	b.HandleFunc("/users/:id", func(*app.Context) (app.Output, error) {
		return app.Text(http.StatusOK, "ok"), nil
	}).Methods(http.MethodGet)
	b.HandleFunc("/broken", func(*app.Context) (app.Output, error) {
		return app.Output{}, httperror.New(http.StatusServiceUnavailable, "down")
	})

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestMetrics(t *testing.T) {
	t.Run("counts requests by route and status", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(MetricsConfig{Registerer: reg})
		require.NoError(t, err)

		a := newMetricsApp(t, m)
		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))
		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/8", nil))

		got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/users/:id", "200"))
		assert.Equal(t, float64(2), got)

		assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
	})

	t.Run("uses the kumo namespace by default", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(MetricsConfig{Registerer: reg})
		require.NoError(t, err)

		a := newMetricsApp(t, m)
		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))

		n, err := testutil.GatherAndCount(reg, "kumo_http_requests_total")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("custom namespace", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(MetricsConfig{Registerer: reg, Namespace: "svc"})
		require.NoError(t, err)

		a := newMetricsApp(t, m)
		a.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/7", nil))

		n, err := testutil.GatherAndCount(reg, "svc_http_requests_total")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("error responses are counted through the handler wrapper", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(MetricsConfig{Registerer: reg})
		require.NoError(t, err)

		a := newMetricsApp(t, m)
		w := httptest.NewRecorder()
		a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/broken", "503")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.errors.WithLabelValues("/broken", "503")))
	})

	t.Run("unrouted requests use the fallback label", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(MetricsConfig{Registerer: reg})
		require.NoError(t, err)

		a := newMetricsApp(t, m)
		w := httptest.NewRecorder()
		a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "fallback", "404")))
	})

	t.Run("registration conflict is reported", func(t *testing.T) {
		reg := prometheus.NewRegistry()

		_, err := NewMetrics(MetricsConfig{Registerer: reg})
		require.NoError(t, err)

		_, err = NewMetrics(MetricsConfig{Registerer: reg})
		var are prometheus.AlreadyRegisteredError
		assert.ErrorAs(t, err, &are)
	})
}

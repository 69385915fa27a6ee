package middleware

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/localmap"
)

// MetricsConfig configures the Metrics modifier behaviour.
type MetricsConfig struct {
	// Registerer receives the collectors. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	// Namespace prefixes every metric name. Defaults to "kumo".
	Namespace string

	// Buckets are the duration histogram buckets. Defaults to
	// prometheus.DefBuckets.
	Buckets []float64

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Metrics records per-request Prometheus metrics. Routes are labeled by
// their registered pattern, never by the raw request path, keeping label
// cardinality bounded.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the request counter, the duration histogram, and the
// error counter, and returns the modifier recording them.
//
// After hooks do not run for failed requests; pair the modifier with
// WrapErrorHandler so error responses are counted too.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "kumo"
	}

	buckets := cfg.Buckets
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of dispatched HTTP requests.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"method", "route", "status"}),

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     buckets,
		}, []string{"method", "route"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_request_errors_total",
			Help:        "Total number of requests rendered by the error handler.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"route", "status"}),
	}

	for _, col := range []prometheus.Collector{m.requests, m.duration, m.errors} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Before(c *app.Context) error {
	localmap.Set(c.Locals(), startTimeKey, time.Now())
	return nil
}

func (m *Metrics) After(c *app.Context, out app.Output) (app.Output, error) {
	route := routeLabel(c)
	status := strconv.Itoa(statusOf(out))

	m.requests.WithLabelValues(c.Method(), route, status).Inc()
	if start, ok := localmap.Get(c.Locals(), startTimeKey); ok {
		m.duration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
	}
	return out, nil
}

// WrapErrorHandler decorates an error handler so failed requests are counted
// in both the request and the error counters, labeled with the status of the
// rendered response. A nil next renders the error the way the application
// default does.
func (m *Metrics) WrapErrorHandler(next app.ErrorHandler) app.ErrorHandler {
	return app.ErrorHandlerFunc(func(c *app.Context, cause error) (app.Output, error) {
		out, err := renderError(c, cause, next)
		if err != nil {
			return out, err
		}

		route := routeLabel(c)
		status := strconv.Itoa(statusOf(out))
		m.requests.WithLabelValues(c.Method(), route, status).Inc()
		m.errors.WithLabelValues(route, status).Inc()
		return out, nil
	})
}

// routeLabel returns the matched route pattern, or "fallback" for requests
// served without one.
func routeLabel(c *app.Context) string {
	if ep := c.Endpoint(); ep != nil {
		return ep.Pattern()
	}
	return "fallback"
}

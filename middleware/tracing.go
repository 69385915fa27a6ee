package middleware

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/localmap"
)

// spanKey carries the active request span between the hooks and the error
// handler decorator.
var spanKey = localmap.NewKey[trace.Span]("middleware.span")

// TracingConfig configures the Tracing modifier behaviour.
type TracingConfig struct {
	// TracerName names the tracer obtained from the provider. Defaults
	// to "kumo".
	TracerName string

	// Provider supplies the tracer. Defaults to the global tracer
	// provider.
	Provider trace.TracerProvider

	// Attributes extracts extra span attributes from the request. Called
	// once per request before the span starts.
	Attributes func(c *app.Context) []attribute.KeyValue
}

// Tracing returns a modifier that opens an OpenTelemetry server span for
// each request. The span context replaces the request context, so handlers
// propagate the trace through c.Context().
//
// After hooks do not run for failed requests; pair the modifier with
// TraceErrors so spans opened for them are still ended.
func Tracing(cfg TracingConfig) app.Modifier {
	name := cfg.TracerName
	if name == "" {
		name = "kumo"
	}

	provider := cfg.Provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &tracing{
		tracer:     provider.Tracer(name),
		attributes: cfg.Attributes,
	}
}

type tracing struct {
	tracer     trace.Tracer
	attributes func(c *app.Context) []attribute.KeyValue
}

func (t *tracing) Before(c *app.Context) error {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", c.Method()),
		attribute.String("url.path", c.Path()),
	}

	// Span names follow the {method} {route} convention; the raw path
	// stays out of the name to keep cardinality bounded.
	spanName := c.Method()
	if ep := c.Endpoint(); ep != nil {
		attrs = append(attrs, attribute.String("http.route", ep.Pattern()))
		spanName = c.Method() + " " + ep.Pattern()
	}

	if t.attributes != nil {
		attrs = append(attrs, t.attributes(c)...)
	}

	ctx, span := t.tracer.Start(c.Context(), spanName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)

	localmap.Set(c.Locals(), spanKey, span)
	c.WithContext(ctx)
	return nil
}

func (t *tracing) After(c *app.Context, out app.Output) (app.Output, error) {
	span, ok := localmap.Get(c.Locals(), spanKey)
	if !ok {
		return out, nil
	}

	span.SetAttributes(attribute.Int("http.response.status_code", statusOf(out)))
	span.SetStatus(codes.Ok, "")
	span.End()
	return out, nil
}

// TraceErrors decorates an error handler so spans opened by the Tracing
// modifier are completed on the error path, with the cause recorded and the
// span status set to error. A nil next renders the error the way the
// application default does.
func TraceErrors(next app.ErrorHandler) app.ErrorHandler {
	return app.ErrorHandlerFunc(func(c *app.Context, cause error) (app.Output, error) {
		out, err := renderError(c, cause, next)

		if span, ok := localmap.Get(c.Locals(), spanKey); ok {
			span.RecordError(cause)
			span.SetStatus(codes.Error, cause.Error())
			if err == nil {
				span.SetAttributes(attribute.Int("http.response.status_code", statusOf(out)))
			}
			span.End()
		}
		return out, err
	})
}

// SpanFrom returns the span opened by the Tracing modifier for the current
// request, or a no-op span when tracing is not installed.
func SpanFrom(c *app.Context) trace.Span {
	if span, ok := localmap.Get(c.Locals(), spanKey); ok {
		return span
	}
	return trace.SpanFromContext(c.Context())
}

// Package middleware provides modifiers and handlers for common HTTP
// concerns on top of the app request lifecycle.
//
// Most constructors take a Config struct and return an app.Modifier,
// validating the configuration up front:
//
//	mw, err := middleware.CORS(middleware.CORSConfig{
//	    AllowedOrigins:   []string{"https://example.com"},
//	    AllowCredentials: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b.Root().Use(mw)
//
// Modifiers whose After hook reports on the request, such as AccessLog,
// Metrics, and Tracing, only see responses that succeed; they each ship an
// error handler decorator that covers the error path. Decorators nest, with
// the application's own rendering innermost:
//
//	b.SetErrorHandler(middleware.LogErrors(logger,
//	    middleware.TraceErrors(nil)))
//
// # Request Identity
//
// RequestID tags every request with a unique identifier, taken from the
// client when trusted and generated otherwise. The identifier is available
// downstream via RequestIDFrom and echoed in the response.
//
// ProxyHeaders restores the client address, scheme, and host from reverse
// proxy headers (X-Forwarded-For and friends, optionally the RFC 7239
// Forwarded header) when the request arrives from a trusted peer.
//
// # Observability
//
// AccessLog writes one structured log line per request. NewMetrics records
// Prometheus counters and duration histograms labeled by route pattern.
// Tracing opens an OpenTelemetry server span around each request and
// propagates it through the request context.
//
// # Protection
//
// BasicAuth implements HTTP Basic Authentication per RFC 7617 with
// constant-time credential comparison. RateLimit enforces per-client token
// buckets. BodyLimit caps request body size. ContentType rejects unsupported
// media types. Timeout bounds handler execution through the request context.
//
// # Response Shaping
//
// SecurityHeaders, CacheControl, and ServerID stage response headers.
// Compression applies gzip or deflate content coding when the client accepts
// it. CORS implements the CORS protocol per the Fetch Standard; preflight
// OPTIONS requests for routed paths are answered by the application's
// automatic OPTIONS dispatch with the CORS headers staged on the way
// through.
//
// # Static Files
//
// Static serves a file tree from any fs.FS on a trailing wildcard route,
// with conditional request support and an optional single-page application
// fallback:
//
//	files, err := middleware.Static(middleware.StaticConfig{FS: os.DirFS("./public")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	b.Root().Handle("/assets/*path", files).Methods("GET")
package middleware

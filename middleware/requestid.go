package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/localmap"
)

var requestIDKey = localmap.NewKey[string]("middleware.request-id")

// RequestIDFrom returns the request ID assigned by the RequestID modifier,
// or an empty string when none is present.
func RequestIDFrom(c *app.Context) string {
	id, _ := localmap.Get(c.Locals(), requestIDKey)
	return id
}

// RequestIDConfig configures the RequestID modifier behaviour.
type RequestIDConfig struct {
	// HeaderName overrides the header used to propagate the request ID.
	// Defaults to "X-Request-ID" when empty.
	HeaderName string

	// Generate is an optional callback that returns a new unique ID.
	// It receives the current request, allowing ID generation based on
	// request properties. Defaults to GenerateUUIDv4.
	Generate func(r *http.Request) string

	// TrustIncoming, when true, reuses an existing request ID from the
	// incoming request header instead of generating a new one.
	TrustIncoming bool
}

// RequestID returns a modifier that assigns each request a unique ID. The ID
// is stored in the request's local map, set on the request header for
// downstream services, and staged on the response header overlay so it
// reaches the client on the error path too.
func RequestID(cfg RequestIDConfig) app.Modifier {
	headerName := cfg.HeaderName
	if headerName == "" {
		headerName = "X-Request-ID"
	}

	generate := cfg.Generate
	if generate == nil {
		generate = GenerateUUIDv4
	}

	trustIncoming := cfg.TrustIncoming

	return app.BeforeFunc(func(c *app.Context) error {
		r := c.Request()

		id := ""
		if trustIncoming {
			id = r.Header.Get(headerName)
		}
		if id == "" {
			id = generate(r)
		}
		if id == "" {
			return nil
		}

		r.Header.Set(headerName, id)
		c.Header().Set(headerName, id)
		localmap.Set(c.Locals(), requestIDKey, id)
		return nil
	})
}

// GenerateUUIDv4 returns a new UUID v4 string.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.4
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a new UUID v7 string. UUIDs are time-ordered:
// IDs generated later sort lexicographically after earlier ones.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc9562#section-5.7
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}

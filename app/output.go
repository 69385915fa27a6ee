package app

import (
	"io"
	"net/http"
)

// Output is the response produced by a Handler before post-processing.
// Response post-processing merges the Context's header overlay and cookie
// changes on top of it and fills in Content-Length when the body length is
// statically known.
type Output struct {
	// Status is the response status code. Zero means 200 OK.
	Status int

	// Header holds response headers set directly on the output. May be
	// nil. The Context's header overlay takes precedence key by key.
	Header http.Header

	// Body is the response body. A nil Body is an empty body.
	Body io.Reader

	// ContentLength is the body length in bytes when statically known.
	// Zero with a non-nil Body means unknown; constructors that buffer
	// the body set it.
	ContentLength int64

	// Hijack, when non-nil, takes over the underlying connection instead
	// of writing a conventional response, as for a WebSocket upgrade
	// (RFC 6455). Transports without a takeover facility ignore it and
	// write the Output conventionally.
	Hijack func(w http.ResponseWriter, r *http.Request)
}

// ensureHeader returns the output's header map, allocating it on first use.
func (o *Output) ensureHeader() http.Header {
	if o.Header == nil {
		o.Header = make(http.Header)
	}
	return o.Header
}

// statusOrDefault returns the effective status code.
func (o *Output) statusOrDefault() int {
	if o.Status == 0 {
		return http.StatusOK
	}
	return o.Status
}

// bodyless reports whether the status code forbids a message body
// (RFC 9110, section 6.4.1: 1xx, 204, and 304 responses).
func bodyless(status int) bool {
	return (status >= 100 && status < 200) ||
		status == http.StatusNoContent ||
		status == http.StatusNotModified
}

package app

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/kumohq/kumo/httperror"
)

// Text returns a plain-text Output with a known Content-Length.
func Text(status int, body string) Output {
	return Output{
		Status:        status,
		Header:        http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
		Body:          bytes.NewReader([]byte(body)),
		ContentLength: int64(len(body)),
	}
}

// HTML returns a text/html Output with a known Content-Length.
func HTML(status int, body string) Output {
	return Output{
		Status:        status,
		Header:        http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:          bytes.NewReader([]byte(body)),
		ContentLength: int64(len(body)),
	}
}

// Bytes returns an Output serving the given bytes under the given media
// type.
func Bytes(status int, contentType string, body []byte) Output {
	return Output{
		Status:        status,
		Header:        http.Header{"Content-Type": {contentType}},
		Body:          bytes.NewReader(body),
		ContentLength: int64(len(body)),
	}
}

// JSON encodes v and returns an application/json Output. Values are encoded
// to a buffer first, so an encoding failure surfaces as a 500 error before
// any byte reaches the transport.
func JSON(status int, v any) (Output, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return Output{}, httperror.Internal(err)
	}

	return Output{
		Status:        status,
		Header:        http.Header{"Content-Type": {"application/json; charset=utf-8"}},
		Body:          &buf,
		ContentLength: int64(buf.Len()),
	}, nil
}

// XML encodes v and returns an application/xml Output, buffering like JSON.
func XML(status int, v any) (Output, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return Output{}, httperror.Internal(err)
	}

	return Output{
		Status:        status,
		Header:        http.Header{"Content-Type": {"application/xml; charset=utf-8"}},
		Body:          &buf,
		ContentLength: int64(buf.Len()),
	}, nil
}

// Stream returns an Output that copies from r without a known length. The
// transport falls back to chunked transfer coding (RFC 9112, section 7.1).
func Stream(status int, contentType string, r io.Reader) Output {
	return Output{
		Status: status,
		Header: http.Header{"Content-Type": {contentType}},
		Body:   r,
	}
}

// NoContent returns a 204 Output.
func NoContent() Output {
	return Output{Status: http.StatusNoContent}
}

// Redirect returns an Output with the given 3xx status and Location header.
// Use http.StatusPermanentRedirect (RFC 9110, section 15.4.9) when the
// method must be preserved across the redirect.
func Redirect(status int, location string) Output {
	return Output{
		Status: status,
		Header: http.Header{"Location": {location}},
	}
}

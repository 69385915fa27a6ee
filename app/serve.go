package app

import (
	"io"
	"net/http"
)

// ServeHTTP dispatches one request through the application lifecycle.
//
// The request path is normalized per RFC 3986 Section 5.2.4 (removing dot
// segments) before routing. A critical lifecycle failure aborts the
// connection via http.ErrAbortHandler instead of writing a reply.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := requestURIPath(r.URL)
	if cleaned := cleanPath(p); cleaned != p {
		u := *r.URL
		u.Path = cleaned
		u.RawPath = ""
		r = r.Clone(r.Context())
		r.URL = &u
	}

	out, err := a.NewTask(r).Run()
	if err != nil {
		panic(http.ErrAbortHandler)
	}

	if out.Hijack != nil {
		out.Hijack(w, r)
		return
	}
	writeOutput(w, r, out)
}

// writeOutput writes a finalized Output to the transport. The body is
// suppressed for HEAD requests and for status codes that forbid one, while
// the headers, Content-Length included, are written either way. A body that
// implements io.Closer, such as an open file, is closed.
func writeOutput(w http.ResponseWriter, r *http.Request, out Output) {
	h := w.Header()
	for k, vs := range out.Header {
		h[k] = vs
	}

	status := out.statusOrDefault()
	w.WriteHeader(status)

	if out.Body == nil {
		return
	}
	if closer, ok := out.Body.(io.Closer); ok {
		defer closer.Close()
	}

	if bodyless(status) || r.Method == http.MethodHead {
		return
	}
	io.Copy(w, out.Body)
}

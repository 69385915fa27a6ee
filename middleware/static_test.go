package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumohq/kumo/app"
)

var staticModTime = time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

const (
	indexBody  = "<h1>home</h1>"
	cssBody    = "body { margin: 0 }"
	readmeBody = "plain text readme"
)

func staticFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":   {Data: []byte(indexBody), ModTime: staticModTime},
		"css/site.css": {Data: []byte(cssBody), ModTime: staticModTime},
		"docs/README":  {Data: []byte(readmeBody), ModTime: staticModTime},
	}
}

func newStaticApp(t *testing.T, cfg StaticConfig) *app.App {
	t.Helper()

	h, err := Static(cfg)
	require.NoError(t, err)

	b := app.New()
	b.Handle("/assets/*path", h).Methods(http.MethodGet)

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func staticRequest(a *app.App, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestStatic(t *testing.T) {
	t.Run("config error nil fs", func(t *testing.T) {
		_, err := Static(StaticConfig{})
		assert.ErrorIs(t, err, ErrStaticNoFS)
	})

	t.Run("config error spa without index", func(t *testing.T) {
		_, err := Static(StaticConfig{
			FS:          fstest.MapFS{"app.js": {Data: []byte("x")}},
			SPAFallback: true,
		})
		assert.ErrorIs(t, err, ErrStaticNoIndexHTML)
	})

	t.Run("serves a file typed by extension", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/css/site.css")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, cssBody, w.Body.String())
		assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, strconv.Itoa(len(cssBody)), w.Header().Get("Content-Length"))
		assert.Equal(t, staticModTime.Format(http.TimeFormat), w.Header().Get("Last-Modified"))
	})

	t.Run("sniffs the type without an extension", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/docs/README")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, readmeBody, w.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("missing file responds 404", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/nope.css")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("root serves the index", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, indexBody, w.Body.String())
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("directory without index responds 404", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/css")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("spa fallback serves the index for unknown paths", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS(), SPAFallback: true})
		w := staticRequest(a, "/assets/app/dashboard")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, indexBody, w.Body.String())
	})

	t.Run("spa fallback still serves real files", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS(), SPAFallback: true})
		w := staticRequest(a, "/assets/css/site.css")

		assert.Equal(t, cssBody, w.Body.String())
	})

	t.Run("if modified since responds 304", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})

		req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
		req.Header.Set("If-Modified-Since", staticModTime.Format(http.TimeFormat))
		w := httptest.NewRecorder()
		a.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Zero(t, w.Body.Len())
		assert.Equal(t, staticModTime.Format(http.TimeFormat), w.Header().Get("Last-Modified"))
	})

	t.Run("stale if modified since serves the file", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})

		req := httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil)
		req.Header.Set("If-Modified-Since", staticModTime.Add(-time.Hour).Format(http.TimeFormat))
		w := httptest.NewRecorder()
		a.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, cssBody, w.Body.String())
	})

	t.Run("zero modtime disables conditional requests", func(t *testing.T) {
		// Files from an embed.FS have no modification time.
		a := newStaticApp(t, StaticConfig{
			FS: fstest.MapFS{"app.js": {Data: []byte("let x")}},
		})

		req := httptest.NewRequest(http.MethodGet, "/assets/app.js", nil)
		req.Header.Set("If-Modified-Since", time.Now().Format(http.TimeFormat))
		w := httptest.NewRecorder()
		a.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Last-Modified"))
	})

	t.Run("encoded dot segments are rejected", func(t *testing.T) {
		a := newStaticApp(t, StaticConfig{FS: staticFS()})
		w := staticRequest(a, "/assets/%2e%2e/secret.txt")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

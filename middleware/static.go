package middleware

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// ErrStaticNoFS is returned when StaticConfig.FS is nil.
var ErrStaticNoFS = errors.New("middleware: file system must not be nil")

// ErrStaticNoIndexHTML is returned when SPAFallback is enabled but the file
// system does not contain an index.html at the root.
var ErrStaticNoIndexHTML = errors.New("middleware: index.html is required when SPA fallback is enabled")

// StaticConfig configures the static file handler.
type StaticConfig struct {
	// FS is the file system to serve files from. Required.
	// Works with os.DirFS, embed.FS, and any fs.FS implementation.
	FS fs.FS

	// SPAFallback serves the root index.html for any path that does
	// not match an existing file. This allows client-side routers to
	// handle all routes. Requires index.html at the root of FS.
	SPAFallback bool
}

// Static returns a handler that serves files from the provided file system.
// Register it on a trailing wildcard route; the wildcard remainder names the
// file, with the percent-encoding undone. Directories serve their index.html
// or respond 404; there is no directory listing. Conditional requests with
// If-Modified-Since answer 304 when the file has not changed since.
//
// It returns ErrStaticNoFS when FS is nil, and ErrStaticNoIndexHTML when
// SPAFallback is set without a root index.html.
func Static(cfg StaticConfig) (app.Handler, error) {
	if cfg.FS == nil {
		return nil, ErrStaticNoFS
	}

	if cfg.SPAFallback {
		if _, err := fs.Stat(cfg.FS, "index.html"); err != nil {
			return nil, ErrStaticNoIndexHTML
		}
	}

	return &staticHandler{fsys: cfg.FS, spa: cfg.SPAFallback}, nil
}

type staticHandler struct {
	fsys fs.FS
	spa  bool
}

func (h *staticHandler) Serve(c *app.Context) (app.Output, error) {
	name, _ := c.Wildcard()
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		name = "."
	}

	// Validate after decoding, so encoded dot segments cannot slip
	// through.
	if !fs.ValidPath(name) {
		return app.Output{}, httperror.NotFound()
	}

	f, info, final, err := h.open(name)
	if err != nil {
		return app.Output{}, httperror.NotFound()
	}

	header := http.Header{}
	modtime := info.ModTime()
	if !modtime.IsZero() {
		header.Set("Last-Modified", modtime.UTC().Format(http.TimeFormat))

		// HTTP dates carry second precision, so the comparison does too.
		ims := c.Request().Header.Get("If-Modified-Since")
		if t, err := http.ParseTime(ims); err == nil && !modtime.Truncate(time.Second).After(t) {
			f.Close()
			return app.Output{Status: http.StatusNotModified, Header: header}, nil
		}
	}

	body, ctype, err := typedBody(f, final)
	if err != nil {
		f.Close()
		return app.Output{}, httperror.Internal(err)
	}
	if ctype != "" {
		header.Set("Content-Type", ctype)
	}

	return app.Output{
		Header:        header,
		Body:          body,
		ContentLength: info.Size(),
	}, nil
}

// open resolves name to a regular file: directories serve their index.html,
// and with SPA fallback enabled, missing paths serve the root index.html.
// final is the path of the file actually opened.
func (h *staticHandler) open(name string) (fs.File, fs.FileInfo, string, error) {
	f, info, err := openFile(h.fsys, name)
	if err == nil && info.IsDir() {
		f.Close()
		name = indexPath(name)
		f, info, err = openFile(h.fsys, name)
	}

	if err != nil && h.spa && errors.Is(err, fs.ErrNotExist) {
		name = "index.html"
		f, info, err = openFile(h.fsys, name)
	}

	if err != nil {
		return nil, nil, "", err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, "", fs.ErrNotExist
	}
	return f, info, name, nil
}

func openFile(fsys fs.FS, name string) (fs.File, fs.FileInfo, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

func indexPath(dir string) string {
	if dir == "." {
		return "index.html"
	}
	return dir + "/index.html"
}

// typedBody determines the response content type, by extension when the
// extension is known and by sniffing the first bytes otherwise. The returned
// reader still closes the underlying file.
func typedBody(f fs.File, name string) (io.Reader, string, error) {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return f, ctype, nil
	}

	probe := make([]byte, 512)
	n, err := io.ReadFull(f, probe)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", err
	}
	probe = probe[:n]

	body := &sniffedFile{
		Reader: io.MultiReader(bytes.NewReader(probe), f),
		file:   f,
	}
	return body, http.DetectContentType(probe), nil
}

// sniffedFile re-serves the sniffed prefix ahead of the rest of the file and
// forwards Close to it.
type sniffedFile struct {
	io.Reader
	file fs.File
}

func (s *sniffedFile) Close() error { return s.file.Close() }

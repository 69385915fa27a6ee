package middleware

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/kumohq/kumo/app"
)

// ErrInvalidCompressionLevel is returned when CompressionConfig.Level is
// outside the valid compression level range.
var ErrInvalidCompressionLevel = errors.New("middleware: invalid compression level")

// CompressionConfig configures the Compression modifier behaviour.
type CompressionConfig struct {
	// Level is the compression level for both gzip and deflate. When zero,
	// flate.DefaultCompression is used. Must be in
	// [flate.HuffmanOnly, flate.BestCompression] or zero.
	Level int

	// MinLength is the minimum response body size in bytes before compression
	// is applied. When zero, all responses are compressed.
	MinLength int
}

// compressor is the common interface implemented by both gzip.Writer and
// flate.Writer.
type compressor interface {
	io.WriteCloser
	Flush() error
	Reset(w io.Writer)
}

// Compression returns a modifier that compresses response bodies using gzip
// or deflate when the client advertises support via the Accept-Encoding
// header. Gzip is preferred over deflate when the client accepts both. The
// body is compressed in memory, so unknown-length streams are fully buffered
// before they go out. It uses sync.Pool instances to reuse writers.
//
// Compression is skipped when:
//   - The request does not include "gzip" or "deflate" in Accept-Encoding
//   - The request method is HEAD or the response carries no body
//   - The response already has a Content-Encoding header
//   - The response Content-Type is an inherently compressed format
//     (image/*, video/*, audio/*, or common archive types)
//   - The body is shorter than MinLength
//
// It returns ErrInvalidCompressionLevel if Level is outside the valid range.
func Compression(cfg CompressionConfig) (app.Modifier, error) {
	level := cfg.Level
	if level == 0 {
		level = flate.DefaultCompression
	}

	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, ErrInvalidCompressionLevel
	}

	cm := &compression{
		minLength: cfg.MinLength,
		gzipPool: sync.Pool{
			New: func() any {
				w, _ := gzip.NewWriterLevel(io.Discard, level)
				return w
			},
		},
		deflatePool: sync.Pool{
			New: func() any {
				w, _ := flate.NewWriter(io.Discard, level)
				return w
			},
		},
	}
	return app.AfterFunc(cm.compress), nil
}

type compression struct {
	minLength   int
	gzipPool    sync.Pool
	deflatePool sync.Pool
}

func (cm *compression) compress(c *app.Context, out app.Output) (app.Output, error) {
	if out.Body == nil || out.Hijack != nil || c.Method() == http.MethodHead {
		return out, nil
	}

	encoding := selectEncoding(c.Request())
	if encoding == "" {
		return out, nil
	}

	if out.Header.Get("Content-Encoding") != "" || isCompressedContentType(out.Header.Get("Content-Type")) {
		return out, nil
	}

	// A declared length below the threshold settles it without reading.
	if out.ContentLength > 0 && out.ContentLength < int64(cm.minLength) {
		return out, nil
	}

	plain, err := io.ReadAll(out.Body)
	if closer, ok := out.Body.(io.Closer); ok {
		closer.Close()
	}
	if err != nil {
		return out, err
	}

	if len(plain) == 0 || len(plain) < cm.minLength {
		out.Body = bytes.NewReader(plain)
		out.ContentLength = int64(len(plain))
		return out, nil
	}

	pool := &cm.gzipPool
	if encoding == "deflate" {
		pool = &cm.deflatePool
	}

	var buf bytes.Buffer
	w := pool.Get().(compressor)
	w.Reset(&buf)
	w.Write(plain)
	w.Close()
	pool.Put(w)

	if out.Header == nil {
		out.Header = http.Header{}
	}
	out.Header.Set("Content-Encoding", encoding)
	out.Header.Add("Vary", "Accept-Encoding")
	out.Header.Del("Content-Length")

	out.Body = bytes.NewReader(buf.Bytes())
	out.ContentLength = int64(buf.Len())
	return out, nil
}

// selectEncoding returns the best supported encoding from the Accept-Encoding
// header. It returns "gzip", "deflate", or "" if neither is accepted. When
// both are accepted with equal quality, gzip is preferred.
func selectEncoding(r *http.Request) string {
	var (
		gzipQ    float64 = -1
		deflateQ float64 = -1
		wildQ    float64 = -1
	)

	for part := range strings.SplitSeq(r.Header.Get("Accept-Encoding"), ",") {
		name, quality := parseEncoding(strings.TrimSpace(part))
		q := parseQuality(quality)

		switch name {
		case "gzip":
			gzipQ = q
		case "deflate":
			deflateQ = q
		case "*":
			wildQ = q
		}
	}

	// Apply wildcard to unspecified encodings.
	if gzipQ < 0 && wildQ >= 0 {
		gzipQ = wildQ
	}

	if deflateQ < 0 && wildQ >= 0 {
		deflateQ = wildQ
	}

	// Prefer gzip when quality is equal or higher.
	if gzipQ > 0 && gzipQ >= deflateQ {
		return "gzip"
	}

	if deflateQ > 0 {
		return "deflate"
	}

	return ""
}

// parseQuality converts a quality string to a float64.
// An empty string defaults to 1.0 (implicit full quality per HTTP spec).
func parseQuality(s string) float64 {
	if s == "" {
		return 1.0
	}

	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return q
}

// parseEncoding splits an encoding token into the encoding name and quality
// value. For "gzip;q=0.8" it returns ("gzip", "0.8"). When no quality value
// is present it returns the encoding and an empty string.
func parseEncoding(s string) (encoding, quality string) {
	encoding, params, ok := strings.Cut(s, ";")
	if !ok {
		return strings.TrimSpace(encoding), ""
	}

	params = strings.TrimSpace(params)
	if key, val, found := strings.Cut(params, "="); found && strings.TrimSpace(key) == "q" {
		return strings.TrimSpace(encoding), strings.TrimSpace(val)
	}

	return strings.TrimSpace(encoding), ""
}

// compressedContentTypes contains content type prefixes and exact types that
// are already compressed and should not be double-compressed.
var compressedContentTypes = []string{
	"image/",
	"video/",
	"audio/",
	"application/zip",
	"application/gzip",
	"application/x-gzip",
	"application/x-bzip2",
	"application/x-xz",
	"application/zstd",
	"application/x-7z-compressed",
	"application/x-rar-compressed",
}

// isCompressedContentType reports whether the content type is an inherently
// compressed format.
func isCompressedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))

	for _, prefix := range compressedContentTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}

	return false
}

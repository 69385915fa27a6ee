package app

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/kumohq/kumo/localmap"
	"github.com/kumohq/kumo/recognizer"
)

// Context carries one request through the handler chain: the incoming
// request, the matched endpoint and its captures, the owning scope, a header
// overlay and cookie jar applied to the response during post-processing, and
// a per-request value map.
//
// A Context is bound to a single Task and must not be retained after the
// handler chain returns.
type Context struct {
	app      *App
	req      *http.Request
	endpoint *Endpoint
	scope    ScopeID
	captures *recognizer.Captures
	path     string
	allowed  []string

	header    http.Header
	jar       *cookieJar
	locals    localmap.Map
	bodyTaken bool
}

// Request returns the incoming request.
func (c *Context) Request() *http.Request {
	return c.req
}

// Context returns the request's context.
func (c *Context) Context() context.Context {
	return c.req.Context()
}

// WithContext replaces the request's context, typically from a Before hook
// that attaches a deadline or a derived value.
func (c *Context) WithContext(ctx context.Context) {
	c.req = c.req.WithContext(ctx)
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.req.Method
}

// Path returns the routed request path.
func (c *Context) Path() string {
	return c.path
}

// Endpoint returns the matched endpoint, or nil when the request is being
// served by a default handler or a built-in responder.
func (c *Context) Endpoint() *Endpoint {
	return c.endpoint
}

// Scope returns the scope the request was attributed to. For a matched
// request this is the endpoint's scope; otherwise it is the inferred one.
func (c *Context) Scope() ScopeID {
	return c.scope
}

// App returns the application serving the request, for endpoint table
// introspection such as looking up a named route.
func (c *Context) App() *App {
	return c.app
}

// AllowedMethods returns the method set registered for the matched path,
// including HEAD when it is served by the GET fallback. It returns nil when
// the path matched no route.
func (c *Context) AllowedMethods() []string {
	if c.allowed == nil {
		return nil
	}
	out := make([]string, len(c.allowed))
	copy(out, c.allowed)
	return out
}

// Param returns the value captured for the named pattern parameter. Values
// are percent-decoded; a segment that fails to decode is returned raw.
func (c *Context) Param(name string) (string, bool) {
	if c.endpoint == nil || c.captures == nil {
		return "", false
	}
	for i, p := range c.endpoint.pattern.Params() {
		if p != name {
			continue
		}
		s, e := c.captures.Span(i)
		return decodeSegment(c.path[s:e]), true
	}
	return "", false
}

// Params returns all captured parameters as a name to value map. The map is
// freshly allocated; mutating it does not affect the request.
func (c *Context) Params() map[string]string {
	if c.endpoint == nil || c.captures == nil {
		return nil
	}
	names := c.endpoint.pattern.Params()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for i, name := range names {
		s, e := c.captures.Span(i)
		out[name] = decodeSegment(c.path[s:e])
	}
	return out
}

// Wildcard returns the path suffix captured by the pattern's wildcard
// component, without percent-decoding, and whether the pattern has one.
func (c *Context) Wildcard() (string, bool) {
	if c.endpoint == nil || c.captures == nil {
		return "", false
	}
	s, e, ok := c.captures.Wildcard()
	if !ok {
		return "", false
	}
	return c.path[s:e], true
}

func decodeSegment(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

// Header returns the response header overlay. Values set here are applied to
// the response after the handler chain finishes, replacing any same-named
// field the handler's output carries, and survive the error path.
func (c *Context) Header() http.Header {
	if c.header == nil {
		c.header = make(http.Header)
	}
	return c.header
}

// Cookie returns the named cookie as the client will observe it after this
// request: a cookie staged with SetCookie shadows the request's copy, and a
// removed cookie reports http.ErrNoCookie.
func (c *Context) Cookie(name string) (*http.Cookie, error) {
	if c.jar != nil {
		if ck, staged := c.jar.lookup(name); staged {
			if ck == nil {
				return nil, http.ErrNoCookie
			}
			return ck, nil
		}
	}
	return c.req.Cookie(name)
}

// SetCookie stages a cookie for the response. Staging the same name again
// overwrites the earlier value; the response carries one Set-Cookie per name.
func (c *Context) SetCookie(ck *http.Cookie) {
	if c.jar == nil {
		c.jar = newCookieJar()
	}
	c.jar.set(ck)
}

// RemoveCookie stages an expired cookie for the response, instructing the
// client to delete the named cookie. Path and Domain must match the original
// cookie for clients to honor the removal (RFC 6265, section 5.3).
func (c *Context) RemoveCookie(name, path, domain string) {
	if c.jar == nil {
		c.jar = newCookieJar()
	}
	c.jar.remove(name, path, domain)
}

// Locals returns the request-scoped value map, shared by all hooks and the
// handler of this request.
func (c *Context) Locals() *localmap.Map {
	return &c.locals
}

// Body claims the request body for reading. The first call returns it; any
// later call reports ErrBodyConsumed so that two decoders cannot silently
// split one stream. The caller closes the returned body.
func (c *Context) Body() (io.ReadCloser, error) {
	if c.bodyTaken {
		return nil, ErrBodyConsumed
	}
	c.bodyTaken = true
	body := c.req.Body
	if body == nil {
		body = http.NoBody
	}
	return body, nil
}

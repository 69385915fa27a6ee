package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/kumohq/kumo/httperror"
	"github.com/kumohq/kumo/recognizer"
)

// dispatchKind classifies what a resolved request will run.
type dispatchKind uint8

const (
	// dispatchHandler runs a matched endpoint's handler.
	dispatchHandler dispatchKind = iota

	// dispatchFallback runs a scope default handler or a built-in
	// responder (405, implicit OPTIONS) for a request with no exact
	// match.
	dispatchFallback

	// dispatchNotFound runs the built-in 404 responder: no match and no
	// default handler anywhere on the inferred scope's chain.
	dispatchNotFound
)

// dispatch is the outcome of resolving one (method, path) pair: what to
// run, under which scope's modifiers and state, and with which captures.
type dispatch struct {
	kind     dispatchKind
	endpoint *Endpoint
	captures *recognizer.Captures
	scope    ScopeID
	handler  Handler
	allowed  []string
}

// resolve turns a method and a rooted request path into a dispatch.
//
// Recognition outcomes map as follows: a match with an accepting endpoint
// runs its handler; a match without one falls back to HEAD→GET (when
// enabled), then to the implicit OPTIONS responder (when enabled), then to
// 405 with Allow. A partial match or no match infers the owning scope and
// runs its nearest default handler, or 404.
func (a *App) resolve(method, path string) dispatch {
	entry, caps, err := a.rec.Recognize(path)
	if err == nil {
		if ep, ok := entry.lookup(method); ok {
			return dispatch{
				kind:     dispatchHandler,
				endpoint: ep,
				captures: caps,
				scope:    ep.scope,
				handler:  ep.handler,
				allowed:  entry.allowedMethods(a.fallbackHead),
			}
		}

		if method == http.MethodHead && a.fallbackHead {
			if ep, ok := entry.lookup(http.MethodGet); ok {
				return dispatch{
					kind:     dispatchHandler,
					endpoint: ep,
					captures: caps,
					scope:    ep.scope,
					handler:  ep.handler,
					allowed:  entry.allowedMethods(a.fallbackHead),
				}
			}
		}

		scope := a.inferScope(path, entry.endpoints)
		allowed := entry.allowedMethods(a.fallbackHead)

		if method == http.MethodOptions && a.implicitOptions {
			return dispatch{
				kind:    dispatchFallback,
				scope:   scope,
				handler: optionsResponder{allowed: allowed},
				allowed: allowed,
			}
		}

		// The Allow header of a 405 carries the exact registered set,
		// without the inferred HEAD (RFC 9110, section 10.2.1).
		return dispatch{
			kind:    dispatchFallback,
			scope:   scope,
			handler: methodNotAllowedResponder{allowed: entry.allowedMethods(false)},
			allowed: allowed,
		}
	}

	var candidates []*Endpoint
	var partial *recognizer.PartialMatchError
	if errors.As(err, &partial) {
		for _, i := range partial.Candidates {
			candidates = append(candidates, a.rec.At(i).endpoints...)
		}
	}

	scope := a.inferScope(path, candidates)
	if h, _, ok := a.findFallback(scope); ok {
		return dispatch{kind: dispatchFallback, scope: scope, handler: h}
	}
	return dispatch{kind: dispatchNotFound, scope: scope, handler: notFoundResponder{}}
}

// inferScope attributes an unmatched request to a scope: the closest-to-leaf
// scope on the candidates' shared ancestor chain whose prefix is a prefix of
// the path. An empty candidate set attributes to the root.
func (a *App) inferScope(path string, candidates []*Endpoint) ScopeID {
	if len(candidates) == 0 {
		return RootScope
	}

	chain := a.scopes[candidates[0].scope].ancestors
	for _, e := range candidates[1:] {
		chain = commonChain(chain, a.scopes[e.scope].ancestors)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if a.scopes[chain[i]].prefix.IsPrefixOf(path) {
			return chain[i]
		}
	}
	return chain[len(chain)-1]
}

// commonChain returns the longest shared prefix of two root-first ancestor
// chains. Chains always share at least the root.
func commonChain(a, b []ScopeID) []ScopeID {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// notFoundResponder fails with 404; the error handler renders it.
type notFoundResponder struct{}

func (notFoundResponder) Serve(*Context) (Output, error) {
	return Output{}, httperror.NotFound()
}

// methodNotAllowedResponder stages the Allow header in the response overlay,
// which survives the error path, and fails with 405.
type methodNotAllowedResponder struct {
	allowed []string
}

func (h methodNotAllowedResponder) Serve(c *Context) (Output, error) {
	if len(h.allowed) > 0 {
		c.Header().Set("Allow", strings.Join(h.allowed, ", "))
	}
	return Output{}, httperror.MethodNotAllowed()
}

// optionsResponder answers an OPTIONS request for a known path with 204 and
// the allowed method set, without invoking any endpoint handler.
type optionsResponder struct {
	allowed []string
}

func (h optionsResponder) Serve(*Context) (Output, error) {
	out := NoContent()
	out.Header = http.Header{"Allow": {strings.Join(h.allowed, ", ")}}
	return out, nil
}

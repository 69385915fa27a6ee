package app

import (
	"slices"

	"github.com/kumohq/kumo/recognizer"
	"github.com/kumohq/kumo/uri"
)

// Endpoint is one registered route: a pattern, the scope it belongs to, and
// the methods it accepts. Endpoints are immutable after Build.
type Endpoint struct {
	id      int
	name    string
	pattern *uri.Pattern
	scope   ScopeID
	methods []string // sorted; nil accepts every method
	handler Handler
}

// Name returns the route name assigned at registration, or "".
func (e *Endpoint) Name() string { return e.name }

// Pattern returns the endpoint's full pattern, mount prefixes included.
func (e *Endpoint) Pattern() string { return e.pattern.String() }

// PathPattern returns the endpoint's compiled pattern.
func (e *Endpoint) PathPattern() *uri.Pattern { return e.pattern }

// Scope returns the id of the scope the endpoint was registered in.
func (e *Endpoint) Scope() ScopeID { return e.scope }

// Methods returns the methods the endpoint accepts, sorted. Nil means the
// endpoint accepts every method.
func (e *Endpoint) Methods() []string { return slices.Clone(e.methods) }

// acceptsAll reports whether the endpoint matches any method.
func (e *Endpoint) acceptsAll() bool { return e.methods == nil }

func (e *Endpoint) acceptsMethod(method string) bool {
	return e.methods == nil || slices.Contains(e.methods, method)
}

// pathEntry groups the endpoints sharing one pattern. Their method sets are
// disjoint; Build rejects overlaps.
type pathEntry struct {
	pattern   *uri.Pattern
	endpoints []*Endpoint
}

// lookup returns the entry's endpoint accepting the given method.
func (pe *pathEntry) lookup(method string) (*Endpoint, bool) {
	for _, e := range pe.endpoints {
		if e.acceptsMethod(method) {
			return e, true
		}
	}
	return nil, false
}

// allowedMethods returns the union of the entry's explicit method sets,
// sorted. With HEAD fallback enabled, GET implies HEAD (RFC 9110, section
// 9.3.2: HEAD is GET without a response body).
func (pe *pathEntry) allowedMethods(fallbackHead bool) []string {
	var allowed []string
	for _, e := range pe.endpoints {
		for _, m := range e.methods {
			if !slices.Contains(allowed, m) {
				allowed = append(allowed, m)
			}
		}
	}
	if fallbackHead && slices.Contains(allowed, "GET") && !slices.Contains(allowed, "HEAD") {
		allowed = append(allowed, "HEAD")
	}
	slices.Sort(allowed)
	return allowed
}

// App is an assembled, immutable routing table: the scope tree, the endpoint
// set, and the recognizer built over it. An App is safe for concurrent use.
type App struct {
	rec       *recognizer.Recognizer[*pathEntry]
	scopes    []*scopeData
	endpoints []*Endpoint

	errorHandler    ErrorHandler
	fallbackHead    bool
	implicitOptions bool
}

// Endpoints returns all registered endpoints in registration order.
func (a *App) Endpoints() []*Endpoint {
	return slices.Clone(a.endpoints)
}

// Endpoint returns the endpoint registered under the given route name.
func (a *App) Endpoint(name string) (*Endpoint, bool) {
	if name == "" {
		return nil, false
	}
	for _, e := range a.endpoints {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// ScopePrefix returns the full mount prefix of the given scope.
func (a *App) ScopePrefix(id ScopeID) string {
	return a.scopes[id].prefix.String()
}

// Walk visits every endpoint in registration order. Returning an error from
// fn stops the walk and returns that error.
func (a *App) Walk(fn func(e *Endpoint) error) error {
	for _, e := range a.endpoints {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

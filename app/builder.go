package app

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/kumohq/kumo/recognizer"
	"github.com/kumohq/kumo/uri"
)

// Builder assembles an App: a tree of scopes carrying routes, modifiers,
// type-keyed state, and default handlers. Registration methods record errors
// instead of failing; Build reports all of them at once.
//
// A Builder is not safe for concurrent use and must not be reused after
// Build.
type Builder struct {
	root   *scopeSpec
	scopes []*scopeSpec
	routes []*routeSpec
	errs   []error

	errorHandler    ErrorHandler
	fallbackHead    bool
	implicitOptions bool
}

type scopeSpec struct {
	id        ScopeID
	parent    ScopeID
	prefix    *uri.Pattern
	modifiers []Modifier
	fallback  Handler
	states    map[reflect.Type]any
}

type routeSpec struct {
	scope   ScopeID
	pattern *uri.Pattern // full pattern, nil when registration failed
	name    string
	methods []string
	handler Handler
}

// New returns a Builder with an empty root scope. The HEAD fallback and the
// implicit OPTIONS responder are enabled by default.
func New() *Builder {
	root := &scopeSpec{id: RootScope, parent: -1, prefix: uri.Root()}
	return &Builder{
		root:            root,
		scopes:          []*scopeSpec{root},
		fallbackHead:    true,
		implicitOptions: true,
	}
}

// Root returns the builder for the root scope.
func (b *Builder) Root() *ScopeBuilder {
	return &ScopeBuilder{b: b, spec: b.root}
}

// Handle registers a route on the root scope.
func (b *Builder) Handle(pattern string, h Handler) *RouteBuilder {
	return b.Root().Handle(pattern, h)
}

// HandleFunc registers a handler function on the root scope.
func (b *Builder) HandleFunc(pattern string, h func(*Context) (Output, error)) *RouteBuilder {
	return b.Root().HandleFunc(pattern, h)
}

// Mount creates a child scope of the root under the given prefix.
func (b *Builder) Mount(prefix string) *ScopeBuilder {
	return b.Root().Mount(prefix)
}

// Use appends modifiers to the root scope.
func (b *Builder) Use(mods ...Modifier) *Builder {
	b.Root().Use(mods...)
	return b
}

// State stores a state value on the root scope.
func (b *Builder) State(v any) *Builder {
	b.Root().State(v)
	return b
}

// Default sets the root scope's default handler.
func (b *Builder) Default(h Handler) *Builder {
	b.Root().Default(h)
	return b
}

// SetErrorHandler replaces the application error handler. The default
// renders the error's HTTP status and message as plain text.
func (b *Builder) SetErrorHandler(h ErrorHandler) *Builder {
	b.errorHandler = h
	return b
}

// FallbackHead controls whether a HEAD request without a HEAD endpoint is
// served by the pattern's GET endpoint. Enabled by default.
func (b *Builder) FallbackHead(enabled bool) *Builder {
	b.fallbackHead = enabled
	return b
}

// ImplicitOptions controls whether an OPTIONS request for a known path
// without an OPTIONS endpoint is answered with 204 and the allowed method
// set. Enabled by default.
func (b *Builder) ImplicitOptions(enabled bool) *Builder {
	b.implicitOptions = enabled
	return b
}

// Build assembles the application. It returns every registration and
// assembly error joined together; the App is non-nil only when the whole
// configuration is valid.
func (b *Builder) Build() (*App, error) {
	errs := slices.Clone(b.errs)

	app := &App{
		rec:             recognizer.New[*pathEntry](),
		scopes:          make([]*scopeData, 0, len(b.scopes)),
		errorHandler:    b.errorHandler,
		fallbackHead:    b.fallbackHead,
		implicitOptions: b.implicitOptions,
	}
	if app.errorHandler == nil {
		app.errorHandler = defaultErrorHandler{}
	}

	for _, spec := range b.scopes {
		data := &scopeData{
			id:        spec.id,
			parent:    spec.parent,
			prefix:    spec.prefix,
			modifiers: slices.Clone(spec.modifiers),
			fallback:  spec.fallback,
			states:    maps.Clone(spec.states),
		}
		if spec.parent < 0 {
			data.ancestors = []ScopeID{spec.id}
		} else {
			parent := app.scopes[spec.parent]
			data.ancestors = append(slices.Clone(parent.ancestors), spec.id)
		}
		app.scopes = append(app.scopes, data)
	}

	entries := make(map[string]*pathEntry)
	names := make(map[string]*Endpoint)

routes:
	for _, spec := range b.routes {
		if spec.pattern == nil {
			// Registration already recorded the error.
			continue
		}

		ep := &Endpoint{
			id:      len(app.endpoints),
			name:    spec.name,
			pattern: spec.pattern,
			scope:   spec.scope,
			methods: normalizeMethods(spec.methods),
			handler: spec.handler,
		}

		key := spec.pattern.String()
		entry, ok := entries[key]
		if !ok {
			entry = &pathEntry{pattern: spec.pattern}
			if _, err := app.rec.Add(spec.pattern, entry); err != nil {
				errs = append(errs, fmt.Errorf("%w: pattern %q: %v", ErrDuplicateRoute, key, err))
				continue
			}
			entries[key] = entry
		}

		for _, other := range entry.endpoints {
			if methodsOverlap(other.methods, ep.methods) {
				errs = append(errs, fmt.Errorf("%w: %s %q", ErrDuplicateRoute, methodsLabel(ep.methods), key))
				continue routes
			}
		}
		entry.endpoints = append(entry.endpoints, ep)
		app.endpoints = append(app.endpoints, ep)

		if ep.name != "" {
			if _, dup := names[ep.name]; dup {
				errs = append(errs, fmt.Errorf("app: duplicate route name %q", ep.name))
				continue
			}
			names[ep.name] = ep
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return app, nil
}

// normalizeMethods uppercases, deduplicates, and sorts a method list. An
// empty list normalizes to nil, meaning every method.
func normalizeMethods(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		m = strings.ToUpper(m)
		if !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	slices.Sort(out)
	return out
}

// methodsOverlap reports whether two normalized method sets share a method.
// A nil set accepts every method and overlaps any other set.
func methodsOverlap(a, b []string) bool {
	if a == nil || b == nil {
		return true
	}
	for _, m := range a {
		if slices.Contains(b, m) {
			return true
		}
	}
	return false
}

func methodsLabel(methods []string) string {
	if methods == nil {
		return "ANY"
	}
	return strings.Join(methods, ",")
}

// ScopeBuilder configures one scope: its routes, child scopes, modifiers,
// state, and default handler.
type ScopeBuilder struct {
	b    *Builder
	spec *scopeSpec
}

// ID returns the scope's id. Ids are assigned in creation order, so they are
// stable for a fixed registration sequence.
func (s *ScopeBuilder) ID() ScopeID {
	return s.spec.id
}

// Mount creates a child scope under the given prefix, relative to this
// scope's own prefix. The prefix must not contain a wildcard.
func (s *ScopeBuilder) Mount(prefix string) *ScopeBuilder {
	spec := &scopeSpec{
		id:     ScopeID(len(s.b.scopes)),
		parent: s.spec.id,
		prefix: s.spec.prefix,
	}

	p, err := uri.Parse(prefix)
	if err == nil {
		if _, wild := p.Wildcard(); wild {
			err = uri.ErrWildcardPosition
		}
	}
	if err == nil {
		var joined *uri.Pattern
		joined, err = uri.Join(s.spec.prefix, p)
		if err == nil {
			spec.prefix = joined
		}
	}
	if err != nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("app: mount %q under %q: %w", prefix, s.spec.prefix, err))
	}

	s.b.scopes = append(s.b.scopes, spec)
	return &ScopeBuilder{b: s.b, spec: spec}
}

// Handle registers a route under this scope. The pattern is relative to the
// scope's prefix. Without an explicit Methods call the route accepts every
// method.
func (s *ScopeBuilder) Handle(pattern string, h Handler) *RouteBuilder {
	spec := &routeSpec{scope: s.spec.id, handler: h}

	if h == nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("app: route %q: nil handler", pattern))
	}

	p, err := uri.Parse(pattern)
	if err == nil {
		spec.pattern, err = uri.Join(s.spec.prefix, p)
	}
	if err != nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("app: route %q in scope %q: %w", pattern, s.spec.prefix, err))
	}

	s.b.routes = append(s.b.routes, spec)
	return &RouteBuilder{spec: spec}
}

// HandleFunc registers a handler function under this scope.
func (s *ScopeBuilder) HandleFunc(pattern string, h func(*Context) (Output, error)) *RouteBuilder {
	if h == nil {
		return s.Handle(pattern, nil)
	}
	return s.Handle(pattern, HandlerFunc(h))
}

// Use appends modifiers to this scope. They wrap every route of the scope
// and its descendants, running after the ancestors' modifiers.
func (s *ScopeBuilder) Use(mods ...Modifier) *ScopeBuilder {
	s.spec.modifiers = append(s.spec.modifiers, mods...)
	return s
}

// State stores a value on this scope, keyed by its dynamic type. Routes of
// the scope and its descendants read it through StateOf; a descendant
// storing a value of the same type shadows it.
func (s *ScopeBuilder) State(v any) *ScopeBuilder {
	if v == nil {
		s.b.errs = append(s.b.errs, fmt.Errorf("app: nil state value in scope %q", s.spec.prefix))
		return s
	}
	if s.spec.states == nil {
		s.spec.states = make(map[reflect.Type]any)
	}
	s.spec.states[reflect.TypeOf(v)] = v
	return s
}

// Default sets the handler for requests attributed to this scope that match
// no route. Setting it again replaces the previous handler.
func (s *ScopeBuilder) Default(h Handler) *ScopeBuilder {
	s.spec.fallback = h
	return s
}

// DefaultFunc sets a handler function as the scope's default handler.
func (s *ScopeBuilder) DefaultFunc(h func(*Context) (Output, error)) *ScopeBuilder {
	return s.Default(HandlerFunc(h))
}

// RouteBuilder configures one registered route.
type RouteBuilder struct {
	spec *routeSpec
}

// Methods restricts the route to the given methods, case-insensitively.
// Repeated calls accumulate.
func (r *RouteBuilder) Methods(methods ...string) *RouteBuilder {
	r.spec.methods = append(r.spec.methods, methods...)
	return r
}

// Name assigns a route name for lookup through App.Endpoint and for
// documentation generators. Names must be unique within an App.
func (r *RouteBuilder) Name(name string) *RouteBuilder {
	r.spec.name = name
	return r
}

package app

import (
	"reflect"

	"github.com/kumohq/kumo/uri"
)

// ScopeID identifies a scope within one App. Scopes form a tree rooted at
// RootScope; identifiers are assigned in creation order, so a parent's id is
// always smaller than its children's.
type ScopeID int

// RootScope is the id of the implicit root scope every App has.
const RootScope ScopeID = 0

// scopeData is one arena entry of the scope tree. Parent links are ids, not
// pointers, and the ancestors chain is precomputed root-first including the
// scope itself.
type scopeData struct {
	id        ScopeID
	parent    ScopeID // -1 for the root
	prefix    *uri.Pattern
	ancestors []ScopeID
	modifiers []Modifier
	fallback  Handler
	states    map[reflect.Type]any
}

// stateIn resolves a state value of the given type visible from the given
// scope: the scope's own entry if present, else the nearest ancestor's.
func (a *App) stateIn(id ScopeID, t reflect.Type) (any, bool) {
	for s := a.scopes[id]; ; s = a.scopes[s.parent] {
		if v, ok := s.states[t]; ok {
			return v, true
		}
		if s.parent < 0 {
			return nil, false
		}
	}
}

// modifierChain collects the modifiers applying to a scope, root-first, each
// scope's modifiers in registration order.
func (a *App) modifierChain(id ScopeID) []Modifier {
	s := a.scopes[id]

	n := 0
	for _, anc := range s.ancestors {
		n += len(a.scopes[anc].modifiers)
	}
	if n == 0 {
		return nil
	}

	chain := make([]Modifier, 0, n)
	for _, anc := range s.ancestors {
		chain = append(chain, a.scopes[anc].modifiers...)
	}
	return chain
}

// findFallback walks from the given scope toward the root and returns the
// first default handler found, with the id of the scope owning it.
func (a *App) findFallback(id ScopeID) (Handler, ScopeID, bool) {
	for s := a.scopes[id]; ; s = a.scopes[s.parent] {
		if s.fallback != nil {
			return s.fallback, s.id, true
		}
		if s.parent < 0 {
			return nil, RootScope, false
		}
	}
}

// StateOf returns the state value of type T visible from the scope the
// request resolved to. Values set on a scope shadow equally typed values of
// ancestor scopes.
func StateOf[T any](c *Context) (T, bool) {
	return ScopeState[T](c.app, c.scope)
}

// ScopeState returns the state value of type T visible from the given
// scope.
func ScopeState[T any](a *App, id ScopeID) (T, bool) {
	v, ok := a.stateIn(id, reflect.TypeFor[T]())
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

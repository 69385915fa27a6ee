package openapi

import (
	"maps"
	"strconv"
)

// Group pre-populates operation builders with shared defaults: tags every
// operation of an API area carries, the error responses they all return,
// the security they all require. Groups are a documentation concept only
// and have no effect on routing.
type Group struct {
	spec *Spec

	tags        []string
	security    []SecurityRequirement
	securitySet bool // distinguishes unset (inherit) from empty (public)
	deprecated  bool
	responses   map[string]*responseMeta
}

// Group returns a Group writing into this Spec.
func (s *Spec) Group() *Group {
	return &Group{spec: s}
}

// Tags appends default tags. Operations add their own on top.
func (g *Group) Tags(tags ...string) *Group {
	g.tags = append(g.tags, tags...)
	return g
}

// Security sets the default security requirements. An operation-level
// Security call replaces them. Calling with no arguments marks the group's
// operations public.
func (g *Group) Security(reqs ...SecurityRequirement) *Group {
	if reqs == nil {
		reqs = []SecurityRequirement{}
	}
	g.security = reqs
	g.securitySet = true
	return g
}

// Deprecated marks every operation in the group as deprecated. Individual
// operations cannot undo it.
func (g *Group) Deprecated() *Group {
	g.deprecated = true
	return g
}

// Response adds a shared application/json response for the status code,
// typically an error shape the whole group returns.
func (g *Group) Response(statusCode int, body any) *Group {
	r := g.response(strconv.Itoa(statusCode))
	if body != nil {
		r.content("application/json", body)
	}
	return g
}

// ResponseDescription sets the description of a shared response.
func (g *Group) ResponseDescription(statusCode int, desc string) *Group {
	g.response(strconv.Itoa(statusCode)).description = desc
	return g
}

// DefaultResponse adds a shared catch-all response.
func (g *Group) DefaultResponse(body any) *Group {
	r := g.response("default")
	if body != nil {
		r.content("application/json", body)
	}
	return g
}

func (g *Group) response(key string) *responseMeta {
	if g.responses == nil {
		g.responses = make(map[string]*responseMeta)
	}
	r, ok := g.responses[key]
	if !ok {
		r = &responseMeta{}
		g.responses[key] = r
	}
	return r
}

// Op returns the operation builder for the named route, seeded with the
// group defaults. A builder that already exists for the name is returned
// untouched, so the first registration wins.
func (g *Group) Op(routeName string) *OperationBuilder {
	if b, ok := g.spec.operations[routeName]; ok {
		return b
	}

	b := newOperationBuilder()
	b.tags = append(b.tags, g.tags...)
	if g.securitySet {
		b.security = g.security
	}
	b.deprecated = g.deprecated

	for key, r := range g.responses {
		seeded := &responseMeta{description: r.description}
		if r.contents != nil {
			seeded.contents = maps.Clone(r.contents)
		}
		b.responses[key] = seeded
	}

	g.spec.operations[routeName] = b
	return b
}

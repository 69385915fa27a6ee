package openapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/uri"
)

// Spec accumulates OpenAPI metadata for named routes and assembles the
// document from an application's endpoint table.
//
// Annotate routes by the names given at registration, then call Build with
// the built application, or Mount to serve the document over the
// application itself.
type Spec struct {
	info         Info
	servers      []Server
	tags         []Tag
	security     []SecurityRequirement
	externalDocs *ExternalDocs

	operations map[string]*OperationBuilder // keyed by route name

	securitySchemes map[string]*SecurityScheme
	compResponses   map[string]*Response
	compParameters  map[string]*Parameter
}

// NewSpec returns a Spec carrying the given API metadata.
func NewSpec(info Info) *Spec {
	return &Spec{
		info:       info,
		operations: make(map[string]*OperationBuilder),
	}
}

// AddServer appends a server to the document.
func (s *Spec) AddServer(server Server) *Spec {
	s.servers = append(s.servers, server)
	return s
}

// AddTag registers a tag with a description. Tags used by operations are
// collected automatically; AddTag attaches the descriptive part.
func (s *Spec) AddTag(tag Tag) *Spec {
	s.tags = append(s.tags, tag)
	return s
}

// SetSecurity sets the document-level security requirements. Operations
// override them with their own Security call.
func (s *Spec) SetSecurity(reqs ...SecurityRequirement) *Spec {
	s.security = reqs
	return s
}

// SetExternalDocs sets the document-level external documentation link.
func (s *Spec) SetExternalDocs(url, description string) *Spec {
	s.externalDocs = &ExternalDocs{URL: url, Description: description}
	return s
}

// AddSecurityScheme registers a reusable security scheme under the given
// name, for use in SecurityRequirement values.
func (s *Spec) AddSecurityScheme(name string, scheme *SecurityScheme) *Spec {
	if s.securitySchemes == nil {
		s.securitySchemes = make(map[string]*SecurityScheme)
	}
	s.securitySchemes[name] = scheme
	return s
}

// AddComponentResponse registers a reusable response component.
func (s *Spec) AddComponentResponse(name string, resp *Response) *Spec {
	if s.compResponses == nil {
		s.compResponses = make(map[string]*Response)
	}
	s.compResponses[name] = resp
	return s
}

// AddComponentParameter registers a reusable parameter component.
func (s *Spec) AddComponentParameter(name string, param *Parameter) *Spec {
	if s.compParameters == nil {
		s.compParameters = make(map[string]*Parameter)
	}
	s.compParameters[name] = param
	return s
}

// Op returns the operation builder for the named route, creating it on
// first use. The route name becomes the operation id.
func (s *Spec) Op(routeName string) *OperationBuilder {
	if b, ok := s.operations[routeName]; ok {
		return b
	}
	b := newOperationBuilder()
	s.operations[routeName] = b
	return b
}

// Build assembles the document from the application's endpoint table. Only
// named endpoints with an explicit method set and a matching Op annotation
// are included; everything else is internal routing detail.
func (s *Spec) Build(a *app.App) *Document {
	gen := NewSchemaGenerator()
	doc := &Document{
		OpenAPI:      "3.1.0",
		Info:         s.info,
		Servers:      s.servers,
		Paths:        make(map[string]*PathItem),
		Security:     s.security,
		ExternalDocs: s.externalDocs,
	}

	_ = a.Walk(func(e *app.Endpoint) error {
		builder, ok := s.operations[e.Name()]
		if !ok {
			return nil
		}

		methods := e.Methods()
		if len(methods) == 0 {
			return nil
		}

		path, pathParams := templatePath(e.PathPattern())
		item, ok := doc.Paths[path]
		if !ok {
			item = &PathItem{}
			doc.Paths[path] = item
		}

		op := builder.build(gen, e.Name(), pathParams)
		for _, m := range methods {
			setOperation(item, m, op)
		}
		return nil
	})

	doc.Components = s.buildComponents(gen)
	doc.Tags = s.collectTags(doc.Paths)
	return doc
}

// templatePath renders a route pattern in OpenAPI template form and derives
// its path parameters: ":id" becomes "{id}" and a trailing "*rest" becomes
// "{rest}" covering the remaining path.
func templatePath(p *uri.Pattern) (string, []*Parameter) {
	if p.IsRoot() {
		return "/", nil
	}

	var (
		b      strings.Builder
		params []*Parameter
	)
	for _, c := range p.Components() {
		switch c.Kind {
		case uri.KindStatic:
			b.WriteByte('/')
			b.WriteString(c.Value)

		case uri.KindParam:
			b.WriteString("/{")
			b.WriteString(c.Value)
			b.WriteByte('}')
			params = append(params, &Parameter{
				Name:     c.Value,
				In:       "path",
				Required: true,
				Schema:   &Schema{Type: TypeString("string")},
			})

		case uri.KindWildcard:
			b.WriteString("/{")
			b.WriteString(c.Value)
			b.WriteByte('}')
			params = append(params, &Parameter{
				Name:        c.Value,
				In:          "path",
				Required:    true,
				Description: "Remaining path, slashes included.",
				Schema:      &Schema{Type: TypeString("string")},
			})

		case uri.KindSlash:
			b.WriteByte('/')
		}
	}
	return b.String(), params
}

func setOperation(item *PathItem, method string, op *Operation) {
	switch method {
	case http.MethodGet:
		item.Get = op
	case http.MethodPut:
		item.Put = op
	case http.MethodPost:
		item.Post = op
	case http.MethodDelete:
		item.Delete = op
	case http.MethodOptions:
		item.Options = op
	case http.MethodHead:
		item.Head = op
	case http.MethodPatch:
		item.Patch = op
	case http.MethodTrace:
		item.Trace = op
	}
}

func (s *Spec) buildComponents(gen *SchemaGenerator) *Components {
	schemas := gen.Schemas()
	if len(schemas) == 0 && len(s.securitySchemes) == 0 &&
		len(s.compResponses) == 0 && len(s.compParameters) == 0 {
		return nil
	}

	comp := &Components{}
	if len(schemas) > 0 {
		comp.Schemas = schemas
	}
	if len(s.securitySchemes) > 0 {
		comp.SecuritySchemes = s.securitySchemes
	}
	if len(s.compResponses) > 0 {
		comp.Responses = s.compResponses
	}
	if len(s.compParameters) > 0 {
		comp.Parameters = s.compParameters
	}
	return comp
}

// collectTags gathers the tag names used by operations, attaches the
// descriptions registered via AddTag, appends registered tags that no
// operation uses, and sorts the result by name.
func (s *Spec) collectTags(paths map[string]*PathItem) []Tag {
	registered := make(map[string]Tag, len(s.tags))
	for _, tag := range s.tags {
		registered[tag.Name] = tag
	}

	seen := make(map[string]bool)
	var tags []Tag

	for _, item := range paths {
		for _, op := range []*Operation{
			item.Get, item.Put, item.Post, item.Delete,
			item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			for _, name := range op.Tags {
				if seen[name] {
					continue
				}
				seen[name] = true
				if tag, ok := registered[name]; ok {
					tags = append(tags, tag)
				} else {
					tags = append(tags, Tag{Name: name})
				}
			}
		}
	}

	for _, tag := range s.tags {
		if !seen[tag.Name] {
			seen[tag.Name] = true
			tags = append(tags, tag)
		}
	}

	slices.SortFunc(tags, func(a, b Tag) int {
		return strings.Compare(a.Name, b.Name)
	})
	return tags
}

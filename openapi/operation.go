package openapi

import (
	"net/http"
	"strconv"
)

// responseMeta collects everything registered for one response key, which is
// a status code in decimal or the literal "default".
type responseMeta struct {
	description string
	contents    map[string]any // media type -> body value or *Schema
	headers     map[string]*Header
}

func (r *responseMeta) content(mediaType string, body any) {
	if r.contents == nil {
		r.contents = make(map[string]any)
	}
	r.contents[mediaType] = body
}

// OperationBuilder accumulates the metadata for one operation through a
// fluent API. Builders are bound to route names via Spec.Op and turned into
// Operation objects by Spec.Build.
//
// See: https://spec.openapis.org/oas/v3.1.0#operation-object
type OperationBuilder struct {
	operationID  string
	summary      string
	description  string
	tags         []string
	deprecated   bool
	parameters   []*Parameter
	security     []SecurityRequirement
	externalDocs *ExternalDocs

	requests  map[string]any // media type -> body value or *Schema
	responses map[string]*responseMeta
}

func newOperationBuilder() *OperationBuilder {
	return &OperationBuilder{
		requests:  make(map[string]any),
		responses: make(map[string]*responseMeta),
	}
}

func (b *OperationBuilder) response(key string) *responseMeta {
	r, ok := b.responses[key]
	if !ok {
		r = &responseMeta{}
		b.responses[key] = r
	}
	return r
}

// OperationID overrides the operation id, which otherwise defaults to the
// route name.
func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.operationID = id
	return b
}

// Summary sets the one-line operation summary.
func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.summary = s
	return b
}

// Description sets the operation description. Markdown is allowed.
func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.description = d
	return b
}

// Tags appends tags to the operation.
func (b *OperationBuilder) Tags(tags ...string) *OperationBuilder {
	b.tags = append(b.tags, tags...)
	return b
}

// Deprecated marks the operation as deprecated.
func (b *OperationBuilder) Deprecated() *OperationBuilder {
	b.deprecated = true
	return b
}

// Request declares an application/json request body. The body is a Go value
// reflected into a schema, or a *Schema used verbatim.
func (b *OperationBuilder) Request(body any) *OperationBuilder {
	return b.RequestContent("application/json", body)
}

// RequestContent declares a request body under the given media type.
func (b *OperationBuilder) RequestContent(mediaType string, body any) *OperationBuilder {
	b.requests[mediaType] = body
	return b
}

// Response declares an application/json response for the status code. A nil
// body declares a response without content, as for 204.
func (b *OperationBuilder) Response(statusCode int, body any) *OperationBuilder {
	r := b.response(strconv.Itoa(statusCode))
	if body != nil {
		r.content("application/json", body)
	}
	return b
}

// ResponseContent declares a response body under the given media type.
func (b *OperationBuilder) ResponseContent(statusCode int, mediaType string, body any) *OperationBuilder {
	b.response(strconv.Itoa(statusCode)).content(mediaType, body)
	return b
}

// DefaultResponse declares the catch-all response for status codes not
// listed explicitly. A nil body declares it without content.
func (b *OperationBuilder) DefaultResponse(body any) *OperationBuilder {
	r := b.response("default")
	if body != nil {
		r.content("application/json", body)
	}
	return b
}

// ResponseDescription replaces the description derived from the HTTP status
// text.
func (b *OperationBuilder) ResponseDescription(statusCode int, desc string) *OperationBuilder {
	b.response(strconv.Itoa(statusCode)).description = desc
	return b
}

// ResponseHeader documents a header on the response for the status code.
func (b *OperationBuilder) ResponseHeader(statusCode int, name string, h *Header) *OperationBuilder {
	r := b.response(strconv.Itoa(statusCode))
	if r.headers == nil {
		r.headers = make(map[string]*Header)
	}
	r.headers[name] = h
	return b
}

// Parameter adds a parameter to the operation. A parameter sharing name and
// location with a generated path parameter replaces it.
func (b *OperationBuilder) Parameter(p *Parameter) *OperationBuilder {
	b.parameters = append(b.parameters, p)
	return b
}

// Security sets the operation's security requirements, replacing the
// document-level ones. Calling it with no arguments marks the operation
// public.
func (b *OperationBuilder) Security(reqs ...SecurityRequirement) *OperationBuilder {
	if reqs == nil {
		reqs = []SecurityRequirement{}
	}
	b.security = reqs
	return b
}

// ExternalDocs points the operation at external documentation.
func (b *OperationBuilder) ExternalDocs(url, description string) *OperationBuilder {
	b.externalDocs = &ExternalDocs{URL: url, Description: description}
	return b
}

// build assembles the Operation from the collected metadata.
func (b *OperationBuilder) build(gen *SchemaGenerator, operationID string, pathParams []*Parameter) *Operation {
	if b.operationID != "" {
		operationID = b.operationID
	}

	op := &Operation{
		OperationID:  operationID,
		Summary:      b.summary,
		Description:  b.description,
		Tags:         b.tags,
		Deprecated:   b.deprecated,
		Security:     b.security,
		ExternalDocs: b.externalDocs,
		Parameters:   mergeParameters(pathParams, b.parameters),
	}

	if len(b.requests) > 0 {
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  mediaTypes(gen, b.requests),
		}
	}

	if len(b.responses) > 0 {
		op.Responses = make(map[string]*Response, len(b.responses))
		for key, meta := range b.responses {
			resp := &Response{Description: meta.description}
			if resp.Description == "" {
				resp.Description = statusDescription(key)
			}
			if len(meta.contents) > 0 {
				resp.Content = mediaTypes(gen, meta.contents)
			}
			if len(meta.headers) > 0 {
				resp.Headers = meta.headers
			}
			op.Responses[key] = resp
		}
	}

	return op
}

func mediaTypes(gen *SchemaGenerator, contents map[string]any) map[string]*MediaType {
	out := make(map[string]*MediaType, len(contents))
	for mediaType, body := range contents {
		mt := &MediaType{}
		if s := resolveSchema(gen, body); s != nil {
			mt.Schema = s
		}
		out[mediaType] = mt
	}
	return out
}

// resolveSchema passes an explicit *Schema through and reflects anything
// else.
func resolveSchema(gen *SchemaGenerator, body any) *Schema {
	if body == nil {
		return nil
	}
	if s, ok := body.(*Schema); ok {
		return s
	}
	return gen.Generate(body)
}

// mergeParameters overlays custom parameters on the generated path
// parameters. Identity is name plus location, per the specification.
func mergeParameters(auto, custom []*Parameter) []*Parameter {
	if len(auto) == 0 && len(custom) == 0 {
		return nil
	}

	overridden := make(map[[2]string]bool, len(custom))
	for _, p := range custom {
		overridden[[2]string{p.Name, p.In}] = true
	}

	var merged []*Parameter
	for _, p := range auto {
		if !overridden[[2]string{p.Name, p.In}] {
			merged = append(merged, p)
		}
	}
	return append(merged, custom...)
}

// statusDescription derives a response description from the status text, so
// every response carries the description the specification requires.
func statusDescription(key string) string {
	if key == "default" {
		return "Default response"
	}
	if code, err := strconv.Atoi(key); err == nil {
		if text := http.StatusText(code); text != "" {
			return text
		}
	}
	return key
}

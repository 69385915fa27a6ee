package openapi

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Exampler lets a type supply a complete example value for its component
// schema. The value lands in the schema's "example" field.
//
//	func (User) OpenAPIExample() any {
//	    return User{ID: "a1b2", Name: "Alice"}
//	}
type Exampler interface {
	OpenAPIExample() any
}

var timeType = reflect.TypeOf(time.Time{})

// SchemaGenerator reflects Go types into JSON Schema. Named struct types are
// collected once into a component schema map and referenced via $ref from
// every use site.
type SchemaGenerator struct {
	schemas map[string]*Schema
	names   map[reflect.Type]string // type -> component name
	claimed map[string]reflect.Type // component name -> owning type
}

// NewSchemaGenerator returns an empty generator.
func NewSchemaGenerator() *SchemaGenerator {
	return &SchemaGenerator{
		schemas: make(map[string]*Schema),
		names:   make(map[reflect.Type]string),
		claimed: make(map[string]reflect.Type),
	}
}

// Schemas returns the component schemas collected so far.
func (g *SchemaGenerator) Schemas() map[string]*Schema {
	return g.schemas
}

// Generate returns the schema for the given value's type. A *Schema passed
// through route annotations bypasses the generator, so this always receives
// plain Go values.
func (g *SchemaGenerator) Generate(v any) *Schema {
	if v == nil {
		return nil
	}
	return g.schemaFor(reflect.TypeOf(v))
}

func (g *SchemaGenerator) schemaFor(t reflect.Type) *Schema {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	// Named structs become components; time.Time stays a string scalar.
	if t.Kind() == reflect.Struct && t != timeType {
		if name := g.componentName(t); name != "" {
			if _, done := g.schemas[name]; !done {
				// Claim the slot before descending, so self-referential
				// types terminate.
				g.schemas[name] = nil
				s := g.structSchema(t)
				if ex, ok := reflect.New(t).Interface().(Exampler); ok {
					s.Example = ex.OpenAPIExample()
				}
				g.schemas[name] = s
			}

			ref := &Schema{Ref: "#/components/schemas/" + name}
			if nullable {
				return &Schema{AnyOf: []*Schema{ref, {Type: TypeString("null")}}}
			}
			return ref
		}
	}

	s := g.inlineSchema(t)
	if nullable && s != nil && s.Ref == "" {
		if types := s.Type.Values(); len(types) > 0 {
			s.Type = TypeArray(append(types, "null")...)
		}
	}
	return s
}

// inlineSchema maps non-component types to their JSON Schema form.
//
// See: https://spec.openapis.org/oas/v3.1.0#data-types
func (g *SchemaGenerator) inlineSchema(t reflect.Type) *Schema {
	if t == timeType {
		return &Schema{Type: TypeString("string"), Format: "date-time"}
	}

	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: TypeString("boolean")}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeString("integer")}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeString("number")}

	case reflect.String:
		return &Schema{Type: TypeString("string")}

	case reflect.Slice:
		// encoding/json emits []byte as base64.
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString("string"), Format: "byte"}
		}
		return &Schema{Type: TypeString("array"), Items: g.schemaFor(t.Elem())}

	case reflect.Array:
		return &Schema{Type: TypeString("array"), Items: g.schemaFor(t.Elem())}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return &Schema{Type: TypeString("object")}
		}
		return &Schema{
			Type:                 TypeString("object"),
			AdditionalProperties: g.schemaFor(t.Elem()),
		}

	case reflect.Struct:
		return g.structSchema(t)

	case reflect.Interface:
		return &Schema{}
	}

	return nil
}

func (g *SchemaGenerator) structSchema(t reflect.Type) *Schema {
	s := &Schema{
		Type:       TypeString("object"),
		Properties: make(map[string]*Schema),
	}

	g.addFields(t, s, false)

	if len(s.Properties) == 0 {
		s.Properties = nil
	}
	return s
}

// addFields walks the exported fields of t into s. allOptional suppresses
// the required list, used under pointer-embedded structs whose fields vanish
// from the JSON output when the pointer is nil.
func (g *SchemaGenerator) addFields(t reflect.Type, s *Schema, allOptional bool) {
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		// An anonymous field without a json name is inlined, matching
		// encoding/json; with an explicit name it is a regular field.
		if field.Anonymous {
			if name, _ := splitJSONTag(field.Tag.Get("json")); name == "" {
				ft := field.Type
				isPtr := ft.Kind() == reflect.Pointer
				if isPtr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					g.addFields(ft, s, allOptional || isPtr)
					continue
				}
			}
		}

		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}

		name, optional := splitJSONTag(tag)
		if name == "" {
			name = field.Name
		}

		fs := g.schemaFor(field.Type)
		if fs == nil {
			continue
		}

		applyFieldTag(fs, field.Tag.Get("openapi"))
		s.Properties[name] = fs

		if !optional && !allOptional {
			s.Required = append(s.Required, name)
		}
	}
}

// splitJSONTag returns the field's json name and whether the field may be
// absent from the encoded output.
func splitJSONTag(tag string) (name string, optional bool) {
	if tag == "" {
		return "", false
	}
	name, rest, _ := strings.Cut(tag, ",")
	return name, strings.Contains(rest, "omitempty") || strings.Contains(rest, "omitzero")
}

// applyFieldTag applies the `openapi` struct tag to a field schema. Keys
// mirror JSON Schema keywords; enum values are pipe-separated.
func applyFieldTag(s *Schema, tag string) {
	if tag == "" {
		return
	}

	for part := range strings.SplitSeq(tag, ",") {
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			s.Title = value
		case "description":
			s.Description = value
		case "format":
			s.Format = value
		case "example":
			s.Example = typedValue(s, value)
		case "pattern":
			s.Pattern = value
		case "minimum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				s.Minimum = &v
			}
		case "maximum":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				s.Maximum = &v
			}
		case "minLength":
			if v, err := strconv.Atoi(value); err == nil {
				s.MinLength = &v
			}
		case "maxLength":
			if v, err := strconv.Atoi(value); err == nil {
				s.MaxLength = &v
			}
		case "minItems":
			if v, err := strconv.Atoi(value); err == nil {
				s.MinItems = &v
			}
		case "maxItems":
			if v, err := strconv.Atoi(value); err == nil {
				s.MaxItems = &v
			}
		case "uniqueItems":
			s.UniqueItems = true
		case "enum":
			values := strings.Split(value, "|")
			s.Enum = make([]any, len(values))
			for i, v := range values {
				s.Enum[i] = v
			}
		case "deprecated":
			s.Deprecated = true
		case "readOnly":
			s.ReadOnly = true
		case "writeOnly":
			s.WriteOnly = true
		}
	}
}

// typedValue converts a tag string to the schema's scalar type, so numeric
// examples stay numbers in the output.
func typedValue(s *Schema, value string) any {
	types := s.Type.Values()
	if len(types) == 0 {
		return value
	}

	switch types[0] {
	case "integer":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	case "boolean":
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return value
}

// componentName picks a stable component key for t. Types from different
// packages sharing a simple name get a package-prefixed key, and a numeric
// suffix settles anything still colliding after that.
func (g *SchemaGenerator) componentName(t reflect.Type) string {
	simple := flattenTypeName(t.Name())
	if simple == "" || t.PkgPath() == "" {
		return ""
	}

	if name, ok := g.names[t]; ok {
		return name
	}

	name := simple
	if owner, ok := g.claimed[name]; ok && owner != t {
		name = pkgPrefix(t.PkgPath()) + simple
		if owner, ok := g.claimed[name]; ok && owner != t {
			base := name
			for i := 2; ; i++ {
				name = base + strconv.Itoa(i)
				if _, taken := g.claimed[name]; !taken {
					break
				}
			}
		}
	}

	g.names[t] = name
	g.claimed[name] = t
	return name
}

// pkgPrefix turns the last segment of a package path into a name prefix:
// "net/http" becomes "Http".
func pkgPrefix(pkgPath string) string {
	if idx := strings.LastIndexByte(pkgPath, '/'); idx >= 0 {
		pkgPath = pkgPath[idx+1:]
	}
	if pkgPath == "" {
		return ""
	}
	pkgPath = strings.ReplaceAll(pkgPath, "-", "_")
	pkgPath = strings.ReplaceAll(pkgPath, ".", "_")
	return strings.ToUpper(pkgPath[:1]) + pkgPath[1:]
}

// flattenTypeName makes generic instantiations usable as component keys:
// "Page[User]" becomes "PageUser" and "Page[[]User]" becomes "PageUserList".
func flattenTypeName(name string) string {
	idx := strings.IndexByte(name, '[')
	if idx < 0 {
		return name
	}

	base := name[:idx]
	inner := name[idx+1 : len(name)-1]

	isList := strings.HasPrefix(inner, "[]")
	inner = strings.TrimPrefix(inner, "[]")

	if dot := strings.LastIndexByte(inner, '.'); dot >= 0 {
		inner = inner[dot+1:]
	}

	if isList {
		return base + inner + "List"
	}
	return base + inner
}

// Package openapi generates OpenAPI v3.1.0 documents from an application's
// endpoint table, using Go reflection and struct tags for the schemas.
//
// The package targets OpenAPI v3.1.0 with JSON Schema Draft 2020-12 and
// needs no external schema files: routes are annotated by name, and the
// document is assembled by walking the built application.
//
// See: https://spec.openapis.org/oas/v3.1.0
// See: https://json-schema.org/draft/2020-12/json-schema-core
//
// # Annotating Routes
//
// Name the routes at registration, then attach metadata through Op:
//
//	b := app.New()
//	b.HandleFunc("/users", listUsers).Methods(http.MethodGet).Name("listUsers")
//	b.HandleFunc("/users", createUser).Methods(http.MethodPost).Name("createUser")
//
//	spec := openapi.NewSpec(openapi.Info{Title: "My API", Version: "1.0.0"})
//
//	spec.Op("listUsers").
//	    Summary("List all users").
//	    Tags("users").
//	    Response(http.StatusOK, []User{})
//
//	spec.Op("createUser").
//	    Summary("Create a user").
//	    Tags("users").
//	    Request(CreateUserInput{}).
//	    Response(http.StatusCreated, User{})
//
// The route name becomes the operation id; OperationID overrides it. Routes
// without a name or without an annotation stay out of the document, as do
// routes registered without an explicit method set.
//
// # Path Parameters
//
// Pattern captures turn into typed path parameters automatically: the
// pattern /users/:id is documented as /users/{id} with a required string
// parameter, and a trailing wildcard /files/*path as /files/{path}. A
// Parameter call with the same name and location replaces the generated
// one, for example to attach a format:
//
//	spec.Op("getUser").Parameter(&openapi.Parameter{
//	    Name: "id", In: "path", Required: true,
//	    Schema: &openapi.Schema{Type: openapi.TypeString("string"), Format: "uuid"},
//	})
//
// # Groups
//
// A Group seeds every operation it creates with shared defaults: the tags
// of an API area, the error responses all its operations return, common
// security. Groups are a documentation concept only and do not affect
// routing; the scope tree handles that.
//
//	users := spec.Group().
//	    Tags("users").
//	    Security(openapi.SecurityRequirement{"bearerAuth": {}}).
//	    Response(http.StatusNotFound, ErrorResponse{})
//
//	users.Op("getUser").Summary("Fetch a user").Response(http.StatusOK, User{})
//	users.Op("deleteUser").Summary("Delete a user").Response(http.StatusNoContent, nil)
//
// # Security
//
// Register schemes in components and reference them at document or
// operation level. An operation-level Security call with no arguments marks
// the operation public:
//
//	spec.AddSecurityScheme("bearerAuth", &openapi.SecurityScheme{
//	    Type: "http", Scheme: "bearer", BearerFormat: "JWT",
//	})
//	spec.SetSecurity(openapi.SecurityRequirement{"bearerAuth": {}})
//	spec.Op("healthz").Security()
//
// # Media Types
//
// Request and Response are application/json shortcuts; RequestContent and
// ResponseContent take any media type. Bodies are Go values reflected into
// schemas, or a *Schema used verbatim:
//
//	spec.Op("upload").RequestContent("application/octet-stream", &openapi.Schema{
//	    Type: openapi.TypeString("string"), Format: "binary",
//	})
//
// # Schema Generation
//
// Go types map to JSON Schema the way encoding/json encodes them: bools,
// integers, floats and strings to the matching scalar types, []byte to a
// base64 string, time.Time to a date-time string, slices to arrays, string
// maps to objects with additionalProperties, and pointers to the nullable
// form of their element. Named struct types are collected under
// #/components/schemas once and referenced by $ref; generic instantiations
// get flattened names, so Page[User] appears as "PageUser".
//
// Fields follow their json tags, with omitempty and omitzero dropping the
// field from the required list. The openapi tag adds constraints:
//
//	type CreateUserInput struct {
//	    Name  string `json:"name" openapi:"description=User name,minLength=1"`
//	    Email string `json:"email" openapi:"format=email"`
//	    Role  string `json:"role" openapi:"enum=admin|user|guest"`
//	    Age   int    `json:"age,omitempty" openapi:"minimum=0,maximum=150"`
//	}
//
// Implement Exampler to attach a complete example to a component schema.
//
// # Serving the Document
//
// Mount registers the document routes on the builder the application is
// assembled from:
//
//	spec.Mount(b, "/docs", nil)
//	a, err := b.Build()
//
// This serves the interactive docs page at /docs and /docs/, the JSON
// document at /docs/schema.json, and the YAML document at
// /docs/schema.yaml. The document is built on first request and cached.
// MountConfig moves or disables the individual routes and selects the docs
// page flavor: Swagger UI by default, RapiDoc, or Redoc.
//
// Build assembles the *Document directly when the routes are not wanted:
//
//	doc := spec.Build(a)
//	data, _ := json.MarshalIndent(doc, "", "  ")
package openapi

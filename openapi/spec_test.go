package openapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/uri"
)

func noContent(*app.Context) (app.Output, error) {
	return app.NoContent(), nil
}

func TestTemplatePath(t *testing.T) {
	t.Run("root", func(t *testing.T) {
		p, err := uri.Parse("/")
		require.NoError(t, err)

		path, params := templatePath(p)
		assert.Equal(t, "/", path)
		assert.Empty(t, params)
	})

	t.Run("static", func(t *testing.T) {
		p, err := uri.Parse("/users/active")
		require.NoError(t, err)

		path, params := templatePath(p)
		assert.Equal(t, "/users/active", path)
		assert.Empty(t, params)
	})

	t.Run("captures", func(t *testing.T) {
		p, err := uri.Parse("/users/:id/posts/:pid")
		require.NoError(t, err)

		path, params := templatePath(p)
		assert.Equal(t, "/users/{id}/posts/{pid}", path)
		require.Len(t, params, 2)
		assert.Equal(t, "id", params[0].Name)
		assert.Equal(t, "path", params[0].In)
		assert.True(t, params[0].Required)
		assert.Equal(t, TypeString("string"), params[0].Schema.Type)
		assert.Equal(t, "pid", params[1].Name)
	})

	t.Run("wildcard", func(t *testing.T) {
		p, err := uri.Parse("/files/*rest")
		require.NoError(t, err)

		path, params := templatePath(p)
		assert.Equal(t, "/files/{rest}", path)
		require.Len(t, params, 1)
		assert.Equal(t, "rest", params[0].Name)
		assert.NotEmpty(t, params[0].Description)
	})

	t.Run("trailing slash", func(t *testing.T) {
		p, err := uri.Parse("/users/")
		require.NoError(t, err)

		path, params := templatePath(p)
		assert.Equal(t, "/users/", path)
		assert.Empty(t, params)
	})
}

func TestSpecBuild(t *testing.T) {
	b := app.New()
	b.HandleFunc("/users", noContent).Methods(http.MethodGet).Name("listUsers")
	b.HandleFunc("/users/:id", noContent).
		Methods(http.MethodGet, http.MethodDelete).
		Name("getUser")
	b.HandleFunc("/health", noContent).Methods(http.MethodGet)
	b.HandleFunc("/legacy", noContent).Methods(http.MethodGet).Name("legacy")
	b.HandleFunc("/anything", noContent).Name("anything")

	a, err := b.Build()
	require.NoError(t, err)

	spec := NewSpec(Info{Title: "Test API", Version: "1.0.0"})
	spec.Op("listUsers").
		Summary("List users").
		Tags("users").
		Response(http.StatusOK, []user{})
	spec.Op("getUser").
		Tags("users").
		Response(http.StatusOK, user{}).
		Response(http.StatusNotFound, nil)
	spec.Op("anything").Summary("Accepts every method")

	doc := spec.Build(a)

	t.Run("document skeleton", func(t *testing.T) {
		assert.Equal(t, "3.1.0", doc.OpenAPI)
		assert.Equal(t, "Test API", doc.Info.Title)
		assert.Equal(t, "1.0.0", doc.Info.Version)
	})

	t.Run("only annotated routes with methods appear", func(t *testing.T) {
		assert.Len(t, doc.Paths, 2)
		assert.Contains(t, doc.Paths, "/users")
		assert.Contains(t, doc.Paths, "/users/{id}")
		// Unnamed, unannotated, and method-less routes stay out.
		assert.NotContains(t, doc.Paths, "/health")
		assert.NotContains(t, doc.Paths, "/legacy")
		assert.NotContains(t, doc.Paths, "/anything")
	})

	t.Run("operation id defaults to the route name", func(t *testing.T) {
		op := doc.Paths["/users"].Get
		require.NotNil(t, op)
		assert.Equal(t, "listUsers", op.OperationID)
		assert.Equal(t, "List users", op.Summary)
	})

	t.Run("every method shares the operation", func(t *testing.T) {
		item := doc.Paths["/users/{id}"]
		require.NotNil(t, item.Get)
		assert.Same(t, item.Get, item.Delete)
		assert.Nil(t, item.Post)
	})

	t.Run("path parameters are generated", func(t *testing.T) {
		op := doc.Paths["/users/{id}"].Get
		require.Len(t, op.Parameters, 1)
		assert.Equal(t, "id", op.Parameters[0].Name)
		assert.Equal(t, "path", op.Parameters[0].In)
	})

	t.Run("responses reference component schemas", func(t *testing.T) {
		op := doc.Paths["/users/{id}"].Get
		ok := op.Responses["200"]
		require.NotNil(t, ok)
		assert.Equal(t, "OK", ok.Description)
		require.Contains(t, ok.Content, "application/json")
		assert.Equal(t, "#/components/schemas/user", ok.Content["application/json"].Schema.Ref)

		notFound := op.Responses["404"]
		require.NotNil(t, notFound)
		assert.Equal(t, "Not Found", notFound.Description)
		assert.Empty(t, notFound.Content)
	})

	t.Run("components hold the reflected schemas", func(t *testing.T) {
		require.NotNil(t, doc.Components)
		assert.Contains(t, doc.Components.Schemas, "user")
	})

	t.Run("tags are collected from operations", func(t *testing.T) {
		require.Len(t, doc.Tags, 1)
		assert.Equal(t, "users", doc.Tags[0].Name)
	})
}

func TestSpecBuildMetadata(t *testing.T) {
	b := app.New()
	b.HandleFunc("/users", noContent).Methods(http.MethodGet).Name("listUsers")
	b.HandleFunc("/status", noContent).Methods(http.MethodGet).Name("status")

	a, err := b.Build()
	require.NoError(t, err)

	bearer := SecurityRequirement{"bearerAuth": {}}

	spec := NewSpec(Info{Title: "Test API", Version: "1.0.0"}).
		AddServer(Server{URL: "https://api.example.com", Description: "production"}).
		AddTag(Tag{Name: "users", Description: "User accounts"}).
		AddTag(Tag{Name: "billing", Description: "Nothing uses this yet"}).
		SetSecurity(bearer).
		SetExternalDocs("https://example.com/docs", "Handbook").
		AddSecurityScheme("bearerAuth", &SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		})

	spec.Op("listUsers").Tags("users")
	spec.Op("status").Security() // public

	doc := spec.Build(a)

	t.Run("servers and external docs", func(t *testing.T) {
		require.Len(t, doc.Servers, 1)
		assert.Equal(t, "https://api.example.com", doc.Servers[0].URL)
		require.NotNil(t, doc.ExternalDocs)
		assert.Equal(t, "https://example.com/docs", doc.ExternalDocs.URL)
	})

	t.Run("document level security", func(t *testing.T) {
		require.Len(t, doc.Security, 1)
		assert.Contains(t, doc.Security[0], "bearerAuth")
	})

	t.Run("public operation overrides with an empty list", func(t *testing.T) {
		op := doc.Paths["/status"].Get
		require.NotNil(t, op.Security)
		assert.Empty(t, op.Security)
	})

	t.Run("inheriting operation carries no security of its own", func(t *testing.T) {
		assert.Nil(t, doc.Paths["/users"].Get.Security)
	})

	t.Run("security schemes land in components", func(t *testing.T) {
		require.NotNil(t, doc.Components)
		require.Contains(t, doc.Components.SecuritySchemes, "bearerAuth")
		assert.Equal(t, "JWT", doc.Components.SecuritySchemes["bearerAuth"].BearerFormat)
	})

	t.Run("registered tags keep descriptions and sort order", func(t *testing.T) {
		require.Len(t, doc.Tags, 2)
		assert.Equal(t, "billing", doc.Tags[0].Name)
		assert.Equal(t, "Nothing uses this yet", doc.Tags[0].Description)
		assert.Equal(t, "users", doc.Tags[1].Name)
		assert.Equal(t, "User accounts", doc.Tags[1].Description)
	})
}

func TestSpecBuildComponents(t *testing.T) {
	b := app.New()
	b.HandleFunc("/ping", noContent).Methods(http.MethodGet).Name("ping")

	a, err := b.Build()
	require.NoError(t, err)

	t.Run("empty document has no components", func(t *testing.T) {
		spec := NewSpec(Info{Title: "t", Version: "1"})
		spec.Op("ping").Response(http.StatusNoContent, nil)

		doc := spec.Build(a)
		assert.Nil(t, doc.Components)
	})

	t.Run("registered component responses and parameters", func(t *testing.T) {
		spec := NewSpec(Info{Title: "t", Version: "1"}).
			AddComponentResponse("NotFound", &Response{Description: "Resource missing"}).
			AddComponentParameter("pageSize", &Parameter{
				Name:   "page_size",
				In:     "query",
				Schema: &Schema{Type: TypeString("integer")},
			})
		spec.Op("ping").Response(http.StatusNoContent, nil)

		doc := spec.Build(a)
		require.NotNil(t, doc.Components)
		assert.Contains(t, doc.Components.Responses, "NotFound")
		assert.Contains(t, doc.Components.Parameters, "pageSize")
	})
}

func TestSetOperation(t *testing.T) {
	op := &Operation{OperationID: "x"}

	methods := map[string]func(*PathItem) *Operation{
		http.MethodGet:     func(i *PathItem) *Operation { return i.Get },
		http.MethodPut:     func(i *PathItem) *Operation { return i.Put },
		http.MethodPost:    func(i *PathItem) *Operation { return i.Post },
		http.MethodDelete:  func(i *PathItem) *Operation { return i.Delete },
		http.MethodOptions: func(i *PathItem) *Operation { return i.Options },
		http.MethodHead:    func(i *PathItem) *Operation { return i.Head },
		http.MethodPatch:   func(i *PathItem) *Operation { return i.Patch },
		http.MethodTrace:   func(i *PathItem) *Operation { return i.Trace },
	}

	for method, get := range methods {
		t.Run(method, func(t *testing.T) {
			var item PathItem
			setOperation(&item, method, op)
			assert.Same(t, op, get(&item))
		})
	}

	t.Run("unknown method is ignored", func(t *testing.T) {
		var item PathItem
		setOperation(&item, "BREW", op)
		assert.Equal(t, PathItem{}, item)
	})
}

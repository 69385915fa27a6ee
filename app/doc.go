// Package app implements a scope-based HTTP application framework: routes
// are registered in a tree of scopes, requests are matched against compiled
// path patterns, and each request runs through an explicit lifecycle with
// before/after hooks and a single error handler.
//
// The package implements routing and dispatch semantics based on:
//   - RFC 9110 (HTTP Semantics)
//   - RFC 3986 (URIs)
//   - RFC 6265 (HTTP State Management, for the cookie facilities)
//
// # Building an Application
//
// An App is assembled by a Builder and immutable afterwards:
//
//	b := app.New()
//	b.HandleFunc("/users/:id", ShowUser).Methods(http.MethodGet)
//
//	api := b.Mount("/api")
//	api.Use(RequireAuth)
//	api.HandleFunc("/posts", ListPosts).Methods(http.MethodGet)
//	api.HandleFunc("/posts", CreatePost).Methods(http.MethodPost)
//
//	a, err := b.Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":8080", a)
//
// Build validates the whole registration at once and reports every error,
// joined, instead of stopping at the first.
//
// # Patterns
//
// Route patterns are compiled by the uri package. Segments beginning with
// ":" capture one path segment, a final segment beginning with "*" captures
// the rest of the path, and a trailing slash is significant:
//
//	b.HandleFunc("/users/:id", handler)       // /users/42
//	b.HandleFunc("/files/*path", handler)     // /files/css/site.css
//	b.HandleFunc("/posts/", handler)          // /posts/ but not /posts
//
// Captured values are read from the Context:
//
//	id, _ := c.Param("id")
//	rest, _ := c.Wildcard()
//
// # Scopes
//
// Scopes group routes under a mount prefix and give them shared behavior.
// A scope carries modifiers, type-keyed state, and an optional default
// handler; all three are inherited by descendant scopes:
//
//	admin := b.Mount("/admin")
//	admin.Use(RequireAdmin)
//	admin.State(&AdminConfig{...})
//	admin.DefaultFunc(adminNotFound)
//
// Modifiers wrap the handler like an onion: Before hooks run root-first in
// registration order, After hooks in the exact reverse. State is looked up
// by type from the innermost scope outwards, so a child scope shadows a
// parent's value of the same type:
//
//	cfg, ok := app.StateOf[*AdminConfig](c)
//
// A request that matches no route is attributed to a scope by comparing the
// request path against the mount prefixes shared by the nearest candidate
// routes, and the closest default handler on that scope's ancestor chain
// serves it. This keeps 404 responses consistent with the part of the tree
// the request was aimed at.
//
// # Method Dispatch
//
// A route without an explicit Methods call accepts every method. When a
// path matches but the method does not, the application answers 405 with an
// Allow header listing the registered methods (RFC 9110 Section 15.5.6).
// Two conveniences are enabled by default and can be switched off on the
// Builder:
//
//   - A HEAD request without a HEAD endpoint is served by the pattern's GET
//     endpoint; the transport adapter suppresses the body.
//   - An OPTIONS request for a known path without an OPTIONS endpoint is
//     answered with 204 and the allowed method set.
//
// # Error Handling
//
// Handlers and hooks return (Output, error). The first error wins: a
// failing Before hook skips the handler, and any error skips every After
// hook. The error then reaches the application's ErrorHandler exactly once,
// and the Output it produces does not re-enter any hook. The default error
// handler renders errors from the httperror package as their status and
// message, and anything else as a bare 500.
//
// A panic in a handler or hook is recovered into a *PanicError and handled
// like any other error. A failing or panicking error handler escalates to a
// *CriticalError, on which the HTTP adapter aborts the connection.
//
// # Request Lifecycle
//
// Each request is driven by a Task, moving from initialization through
// in-flight to done. ServeHTTP constructs and runs one per request; tests
// can do the same without a transport:
//
//	task := a.NewTask(httptest.NewRequest(http.MethodGet, "/users/42", nil))
//	out, err := task.Run()
//
// A Task is single-shot: running it again reports a critical error rather
// than replaying hooks whose side effects cannot be undone.
//
// After the handler chain finishes, on the success and the error path
// alike, response post-processing applies the Context's staged cookie
// changes as Set-Cookie headers, overlays headers set through
// Context.Header onto the handler's Output, and fills in Content-Length
// when the body length is known.
package app

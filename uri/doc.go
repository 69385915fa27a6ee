// Package uri implements the path pattern model for the kumo routing engine.
//
// A pattern describes the path portion of a request target (RFC 3986,
// section 3.3) as an ordered list of components:
//
//   - static components match one path segment literally
//   - capture components (":name") match exactly one non-empty segment and
//     record its value under the capture name
//   - a wildcard component ("*name") matches the entire remaining path,
//     including empty, and must be the final component
//   - a trailing slash is a component in its own right, so "/users" and
//     "/users/" are distinct patterns
//
// Patterns are parsed once at assembly time and compared by their normalized
// textual form, so "/users/:id" registered twice is the same pattern
// regardless of capture positions elsewhere.
//
//	p, err := uri.Parse("/users/:id/files/*path")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.Params()   // ["id"]
//	p.Wildcard() // "path", true
//
// Join concatenates a mount prefix with a route pattern, validating that the
// prefix leaves the suffix reachable and that capture names stay unique.
package uri

package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/kumohq/kumo/app"
)

// ErrWildcardCredentials is returned when AllowedOrigins contains "*" and
// AllowCredentials is true. Use AllowOriginFunc for dynamic origin checks
// with credentials.
var ErrWildcardCredentials = errors.New("wildcard origin \"*\" cannot be used with AllowCredentials; use AllowOriginFunc instead")

// CORSConfig configures the CORS modifier behaviour.
//
// Spec references:
//   - CORS protocol: https://fetch.spec.whatwg.org/#http-cors-protocol
//   - Web Origin:    https://www.rfc-editor.org/rfc/rfc6454
//   - HTTP Vary:     https://www.rfc-editor.org/rfc/rfc9110#field.vary
type CORSConfig struct {
	// AllowedOrigins is a list of exact origin strings, "*" for wildcard,
	// or subdomain wildcard patterns like "https://*.example.com".
	AllowedOrigins []string

	// AllowOriginFunc is an optional dynamic callback invoked when the
	// origin does not match any entry in AllowedOrigins. Return true to allow.
	AllowOriginFunc func(origin string) bool

	// AllowedMethods overrides the set of methods advertised in preflight
	// and actual responses. When empty the modifier advertises the methods
	// registered for the matched path.
	AllowedMethods []string

	// AllowedHeaders lists the headers the client may send in the actual
	// request. When empty the modifier reflects the Access-Control-Request-Headers
	// value from the preflight request. Use "*" to reflect all requested headers.
	AllowedHeaders []string

	// ExposeHeaders lists the headers the browser may expose to client code.
	ExposeHeaders []string

	// AllowCredentials sets Access-Control-Allow-Credentials: true.
	// Per the Fetch Standard, "*" cannot be used as Allow-Origin when
	// credentials are enabled; the modifier returns ErrWildcardCredentials.
	AllowCredentials bool

	// MaxAge is the duration in seconds a preflight result may be cached.
	// Positive values are sent as-is, negative values emit "0", zero omits the header.
	MaxAge int
}

// wildcardPattern represents a subdomain wildcard pattern split at the "*".
type wildcardPattern struct {
	prefix string
	suffix string
}

// hasWildcardOrigin reports whether AllowedOrigins contains "*".
func (c *CORSConfig) hasWildcardOrigin() bool {
	return slices.Contains(c.AllowedOrigins, "*")
}

// parseOrigins normalizes AllowedOrigins to lowercase and splits them into
// exact matches and wildcard patterns. Returns an error if a pattern contains
// multiple wildcards.
func parseOrigins(origins []string) ([]string, []wildcardPattern, error) {
	var exact []string
	var patterns []wildcardPattern

	for _, o := range origins {
		if o == "*" {
			exact = append(exact, o)
			continue
		}

		lower := strings.ToLower(o)

		if strings.Contains(lower, "*") {
			parts := strings.SplitN(lower, "*", 2)
			if strings.Contains(parts[1], "*") {
				return nil, nil, errors.New("origin pattern contains multiple wildcards: " + o)
			}

			patterns = append(patterns, wildcardPattern{
				prefix: parts[0],
				suffix: parts[1],
			})
		} else {
			exact = append(exact, lower)
		}
	}

	return exact, patterns, nil
}

// matchOrigin reports whether originLower matches any exact origin or wildcard pattern.
func matchOrigin(originLower string, exactOrigins []string, patterns []wildcardPattern) bool {
	for _, o := range exactOrigins {
		if o == "*" || o == originLower {
			return true
		}
	}

	for _, wp := range patterns {
		if len(originLower) >= len(wp.prefix)+len(wp.suffix) &&
			strings.HasPrefix(originLower, wp.prefix) &&
			strings.HasSuffix(originLower, wp.suffix) {
			return true
		}
	}

	return false
}

// CORS returns a modifier that implements the CORS protocol per the Fetch
// Standard (https://fetch.spec.whatwg.org/#http-cors-protocol). It validates
// the Origin header (RFC 6454) and stages the response headers through the
// header overlay, so they reach error responses as well.
//
// Preflight OPTIONS requests need no extra plumbing: modifiers wrap the
// automatic OPTIONS dispatch, so a preflight for any routed path picks up the
// CORS headers on its way through, and the 204 response body comes from the
// application. Routes that register OPTIONS explicitly are wrapped the same
// way.
//
// It returns an error if the configuration is invalid (e.g. wildcard origin
// combined with AllowCredentials).
func CORS(cfg CORSConfig) (app.Modifier, error) {
	if cfg.hasWildcardOrigin() && cfg.AllowCredentials {
		return nil, ErrWildcardCredentials
	}

	exactOrigins, wildcardPatterns, err := parseOrigins(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	isAllowed := func(originLower, rawOrigin string) bool {
		if matchOrigin(originLower, exactOrigins, wildcardPatterns) {
			return true
		}

		if cfg.AllowOriginFunc != nil {
			return cfg.AllowOriginFunc(rawOrigin)
		}

		return false
	}

	hasSpecificOrigins := !cfg.hasWildcardOrigin() &&
		(len(exactOrigins) > 0 || len(wildcardPatterns) > 0 || cfg.AllowOriginFunc != nil)

	headersWildcard := slices.Contains(cfg.AllowedHeaders, "*")

	return app.BeforeFunc(func(c *app.Context) error {
		h := c.Header()
		rawOrigin := c.Request().Header.Get("Origin")

		if rawOrigin == "" {
			// Responses for allowed origins differ from same-origin
			// ones, so caches must key on Origin even when it is absent.
			if hasSpecificOrigins {
				h.Add("Vary", "Origin")
			}
			return nil
		}

		originLower := strings.ToLower(rawOrigin)

		if !isAllowed(originLower, rawOrigin) {
			return nil
		}

		if cfg.hasWildcardOrigin() && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", rawOrigin)
			h.Add("Vary", "Origin")
		}

		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		methods := cfg.AllowedMethods
		if len(methods) == 0 {
			methods = c.AllowedMethods()
		}
		if len(methods) > 0 {
			h.Set("Access-Control-Allow-Methods", strings.Join(methods, ","))
		}

		if c.Method() == http.MethodOptions && c.Request().Header.Get("Access-Control-Request-Method") != "" {
			stagePreflight(c, &cfg, headersWildcard)
			return nil
		}

		if len(cfg.ExposeHeaders) > 0 {
			h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposeHeaders, ","))
		}

		return nil
	}), nil
}

// stagePreflight stages the preflight-only headers.
func stagePreflight(c *app.Context, cfg *CORSConfig, headersWildcard bool) {
	h := c.Header()

	if headersWildcard {
		if reqHeaders := c.Request().Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
			h.Set("Access-Control-Allow-Headers", reqHeaders)
		}
	} else if len(cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ","))
	} else if reqHeaders := c.Request().Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
		h.Set("Access-Control-Allow-Headers", reqHeaders)
	}

	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	} else if cfg.MaxAge < 0 {
		h.Set("Access-Control-Max-Age", "0")
	}

	h.Add("Vary", "Access-Control-Request-Method")
	h.Add("Vary", "Access-Control-Request-Headers")
}

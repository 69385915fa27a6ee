package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
	"github.com/kumohq/kumo/localmap"
)

// ErrNoAuthSource is returned when BasicAuthConfig has neither ValidateFunc
// nor Credentials configured.
var ErrNoAuthSource = errors.New("middleware: at least one of ValidateFunc or Credentials must be set")

// basicAuthUserKey carries the authenticated username through the request.
var basicAuthUserKey = localmap.NewKey[string]("middleware.basic-auth-user")

// BasicAuthUser returns the username authenticated by the BasicAuth
// modifier, or the empty string when the request did not pass through it.
func BasicAuthUser(c *app.Context) string {
	user, _ := localmap.Get(c.Locals(), basicAuthUserKey)
	return user
}

// BasicAuthConfig configures the BasicAuth modifier behaviour.
//
// Spec reference: https://www.rfc-editor.org/rfc/rfc7617
type BasicAuthConfig struct {
	// Realm is the authentication realm sent in the WWW-Authenticate header.
	// Defaults to "Restricted" when empty.
	Realm string

	// ValidateFunc is called to validate credentials dynamically.
	// Takes priority over Credentials when both are set.
	ValidateFunc func(username, password string) bool

	// Credentials is a static map of username -> password pairs.
	// Compared using SHA-256 hashed constant-time comparison to prevent
	// timing attacks, including length-based leaks.
	Credentials map[string]string
}

// BasicAuth returns a modifier that enforces HTTP Basic Authentication per
// RFC 7617. Requests with missing or invalid credentials fail with 401
// Unauthorized and a WWW-Authenticate challenge; the authenticated username
// is available to downstream hooks and the handler through BasicAuthUser.
//
// It returns ErrNoAuthSource if both ValidateFunc and Credentials are
// nil/empty.
func BasicAuth(cfg BasicAuthConfig) (app.Modifier, error) {
	if cfg.ValidateFunc == nil && len(cfg.Credentials) == 0 {
		return nil, ErrNoAuthSource
	}

	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}

	challenge := fmt.Sprintf("Basic realm=%q", realm)

	validate := cfg.ValidateFunc
	credentials := cfg.Credentials

	return app.BeforeFunc(func(c *app.Context) error {
		username, password, ok := c.Request().BasicAuth()
		if !ok {
			return unauthorized(c, challenge)
		}

		if validate != nil {
			if !validate(username, password) {
				return unauthorized(c, challenge)
			}
		} else {
			expectedPassword, exists := credentials[username]
			// Always perform the password comparison to prevent timing
			// leaks that reveal whether a username exists in the map.
			passwordMatch := constantTimeEqual(password, expectedPassword)
			if !exists || !passwordMatch {
				return unauthorized(c, challenge)
			}
		}

		localmap.Set(c.Locals(), basicAuthUserKey, username)
		return nil
	}), nil
}

// constantTimeEqual compares two strings in constant time by first hashing
// them with SHA-256. This prevents both value leaks and length-based timing
// leaks that raw ConstantTimeCompare would allow on different-length inputs.
func constantTimeEqual(a, b string) bool {
	aHash := sha256.Sum256([]byte(a))
	bHash := sha256.Sum256([]byte(b))

	return subtle.ConstantTimeCompare(aHash[:], bHash[:]) == 1
}

// unauthorized stages the WWW-Authenticate challenge so it survives the
// error rendering, and fails the request with 401.
func unauthorized(c *app.Context, challenge string) error {
	c.Header().Set("WWW-Authenticate", challenge)
	return httperror.Unauthorized("authentication required")
}

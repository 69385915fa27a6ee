package middleware

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// ErrNoAllowedTypes is returned when ContentTypeConfig.AllowedTypes is
// empty.
var ErrNoAllowedTypes = errors.New("middleware: at least one allowed content type is required")

// ContentTypeConfig configures the ContentType modifier behaviour.
type ContentTypeConfig struct {
	// AllowedTypes is the set of acceptable Content-Type values.
	// Matching is case-insensitive and ignores parameters
	// (e.g. "application/json" matches "application/json; charset=utf-8").
	// Required; at least one must be provided.
	AllowedTypes []string

	// Methods is the set of HTTP methods that require Content-Type
	// validation. When nil, defaults to POST, PUT, PATCH.
	Methods []string
}

// defaultCheckedMethods is the set of HTTP methods that require Content-Type
// validation when Methods is nil.
var defaultCheckedMethods = []string{
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
}

// ContentType returns a modifier that validates the Content-Type header on
// requests with matching methods. Requests whose Content-Type is missing or
// outside the allowed set fail with 415 Unsupported Media Type.
//
// It returns ErrNoAllowedTypes if AllowedTypes is empty.
func ContentType(cfg ContentTypeConfig) (app.Modifier, error) {
	if len(cfg.AllowedTypes) == 0 {
		return nil, ErrNoAllowedTypes
	}

	methods := cfg.Methods
	if methods == nil {
		methods = defaultCheckedMethods
	}

	methodSet := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		methodSet[m] = struct{}{}
	}

	allowedSet := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowedSet[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	return app.BeforeFunc(func(c *app.Context) error {
		if _, check := methodSet[c.Method()]; !check {
			return nil
		}

		ct := c.Request().Header.Get("Content-Type")
		if ct == "" {
			return httperror.New(http.StatusUnsupportedMediaType, "")
		}

		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return httperror.New(http.StatusUnsupportedMediaType, "")
		}

		if _, ok := allowedSet[strings.ToLower(mediaType)]; !ok {
			return httperror.New(http.StatusUnsupportedMediaType, "")
		}

		return nil
	}), nil
}

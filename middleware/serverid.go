package middleware

import (
	"os"

	"github.com/kumohq/kumo/app"
)

// ServerIDConfig configures the ServerID modifier behaviour.
type ServerIDConfig struct {
	// Hostname is the value written to the X-Server-Hostname response
	// header. Resolution order: Hostname field, then HostnameEnv
	// environment variable, then os.Hostname.
	Hostname string

	// HostnameEnv is a list of environment variable names checked in
	// order (e.g. ["POD_NAME", "HOSTNAME"]). The first non-empty
	// value is used. Only consulted when Hostname is empty. When all
	// variables are unset or empty, os.Hostname is used as a fallback.
	HostnameEnv []string
}

// ServerID returns a modifier that stages the X-Server-Hostname response
// header on every request, so instances behind a load balancer can be told
// apart. The hostname is resolved once when the modifier is created. It
// returns an error if the hostname cannot be determined.
func ServerID(cfg ServerIDConfig) (app.Modifier, error) {
	hostname := cfg.Hostname

	if hostname == "" {
		for _, env := range cfg.HostnameEnv {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				hostname = v
				break
			}
		}
	}

	if hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, err
		}

		hostname = h
	}

	return app.BeforeFunc(func(c *app.Context) error {
		c.Header().Set("X-Server-Hostname", hostname)
		return nil
	}), nil
}

package middleware

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// ErrInvalidRate is returned when the configured rate is zero or negative.
var ErrInvalidRate = errors.New("middleware: rate must be positive")

// DefaultMaxClients bounds the per-key limiter table before it is reset.
const DefaultMaxClients = 10000

// RateLimitConfig configures the RateLimit modifier behaviour.
type RateLimitConfig struct {
	// Rate is the sustained request rate per key, in requests per second.
	// Required.
	Rate float64

	// Burst is the number of requests a key may send at once. Defaults to
	// the integer part of Rate, and never below 1.
	Burst int

	// KeyFunc derives the limiter key from a request. Defaults to the
	// client host of RemoteAddr.
	KeyFunc func(r *http.Request) string

	// MaxClients caps the limiter table. When the cap is exceeded the
	// table is reset, trading a burst of forgiveness for bounded memory.
	// Defaults to DefaultMaxClients.
	MaxClients int
}

// RateLimit returns a modifier that enforces a token-bucket rate limit per
// client key. Requests over the limit are rejected with 429 Too Many
// Requests and a Retry-After header (RFC 6585, Section 4).
func RateLimit(cfg RateLimitConfig) (app.Modifier, error) {
	if cfg.Rate <= 0 {
		return nil, ErrInvalidRate
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = clientHost
	}

	maxClients := cfg.MaxClients
	if maxClients <= 0 {
		maxClients = DefaultMaxClients
	}

	l := &rateLimit{
		rate:       rate.Limit(cfg.Rate),
		burst:      burst,
		keyFunc:    keyFunc,
		maxClients: maxClients,
		clients:    make(map[string]*rate.Limiter),
	}
	return app.BeforeFunc(l.allow), nil
}

type rateLimit struct {
	rate       rate.Limit
	burst      int
	keyFunc    func(r *http.Request) string
	maxClients int

	mu      sync.RWMutex
	clients map[string]*rate.Limiter
}

func (l *rateLimit) allow(c *app.Context) error {
	if !l.limiterFor(l.keyFunc(c.Request())).Allow() {
		c.Header().Set("Retry-After", "1")
		return httperror.New(http.StatusTooManyRequests, "rate limit exceeded")
	}
	return nil
}

func (l *rateLimit) limiterFor(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.clients[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Another request may have created the limiter between the locks.
	if lim, ok := l.clients[key]; ok {
		return lim
	}
	if len(l.clients) >= l.maxClients {
		l.clients = make(map[string]*rate.Limiter)
	}
	lim = rate.NewLimiter(l.rate, l.burst)
	l.clients[key] = lim
	return lim
}

// clientHost returns the host part of the client address, falling back to
// the whole address when it does not split.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

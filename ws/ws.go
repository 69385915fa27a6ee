package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kumohq/kumo/app"
	"github.com/kumohq/kumo/httperror"
)

// Config specifies handshake parameters. The zero value uses the
// gorilla/websocket defaults: 4096-byte buffers and same-origin requests
// only.
type Config struct {
	// HandshakeTimeout bounds the duration of the opening handshake.
	HandshakeTimeout time.Duration

	// ReadBufferSize and WriteBufferSize specify I/O buffer sizes in bytes.
	ReadBufferSize  int
	WriteBufferSize int

	// Subprotocols lists the server's supported protocols in order of
	// preference (RFC 6455, section 1.9).
	Subprotocols []string

	// CheckOrigin returns whether the request Origin header is acceptable.
	// Nil rejects cross-origin requests.
	CheckOrigin func(r *http.Request) bool

	// EnableCompression negotiates per-message compression (RFC 7692).
	EnableCompression bool
}

// Handler runs on an upgraded connection. The connection is closed when the
// handler returns. The Context is the one the route handler received, so
// route captures and request-scoped state stay available.
type Handler func(c *app.Context, conn *websocket.Conn)

// Upgrader produces connection-handoff Outputs for WebSocket endpoints.
type Upgrader struct {
	u websocket.Upgrader
}

// New returns an Upgrader with the given handshake settings.
func New(cfg Config) *Upgrader {
	return &Upgrader{u: websocket.Upgrader{
		HandshakeTimeout:  cfg.HandshakeTimeout,
		ReadBufferSize:    cfg.ReadBufferSize,
		WriteBufferSize:   cfg.WriteBufferSize,
		Subprotocols:      cfg.Subprotocols,
		CheckOrigin:       cfg.CheckOrigin,
		EnableCompression: cfg.EnableCompression,
	}}
}

var defaultUpgrader = New(Config{})

// Upgrade checks that the request asks for a WebSocket upgrade and returns
// an Output whose connection takeover completes the handshake and runs h.
// A request without the upgrade headers yields a 400 error for the
// application's error handler.
//
// Headers staged on the Context join the handshake response; the overlay is
// read when the takeover runs, after the hook chain has finished, so After
// hooks still contribute. Staged cookies do not: the takeover bypasses
// conventional response writing.
func (u *Upgrader) Upgrade(c *app.Context, h Handler) (app.Output, error) {
	if !websocket.IsWebSocketUpgrade(c.Request()) {
		return app.Output{}, httperror.New(http.StatusBadRequest, "websocket handshake required")
	}

	return app.Output{
		Hijack: func(w http.ResponseWriter, r *http.Request) {
			var hdr http.Header
			if len(c.Header()) > 0 {
				hdr = c.Header().Clone()
			}

			conn, err := u.u.Upgrade(w, r, hdr)
			if err != nil {
				// Upgrade has written the failure response.
				return
			}
			defer conn.Close()
			h(c, conn)
		},
	}, nil
}

// Upgrade completes the handshake with the default settings.
func Upgrade(c *app.Context, h Handler) (app.Output, error) {
	return defaultUpgrader.Upgrade(c, h)
}

// Package ws upgrades requests to WebSocket connections (RFC 6455), using
// github.com/gorilla/websocket for the wire protocol.
//
// A route handler returns the Output produced by Upgrade; the connection
// handoff happens after the modifier chain finishes, so Before hooks
// (authentication, rate limits) guard WebSocket endpoints like any other:
//
//	upgrader := ws.New(ws.Config{Subprotocols: []string{"chat.v1"}})
//
//	b.HandleFunc("/rooms/:room", func(c *app.Context) (app.Output, error) {
//	    return upgrader.Upgrade(c, func(c *app.Context, conn *websocket.Conn) {
//	        for {
//	            mt, msg, err := conn.ReadMessage()
//	            if err != nil {
//	                return
//	            }
//	            if err := conn.WriteMessage(mt, msg); err != nil {
//	                return
//	            }
//	        }
//	    })
//	}).Methods(http.MethodGet)
//
// # Origin Checking
//
// Browsers let any site open a WebSocket to any other site, so the Origin
// header must be validated. With a nil CheckOrigin the handshake rejects
// cross-origin requests; supply a CheckOrigin function to relax that.
//
// # Concurrency
//
// Connections support one concurrent reader and one concurrent writer; see
// the gorilla/websocket documentation for details.
package ws

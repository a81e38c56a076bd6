package broadcast

import (
	"log"
	"net/http"

	"golang.org/x/net/websocket"
)

// SnapshotFunc builds the initial_state payload for a new subscriber.
type SnapshotFunc func() []byte

// ServeWS upgrades dashboard connections and bridges hub deliveries onto
// the socket. The connection is torn down, and the subscription released,
// as soon as either direction fails.
func ServeWS(hub *Hub, snapshot SnapshotFunc) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		sub := hub.Subscribe(snapshot())
		defer hub.Unsubscribe(sub)

		log.Printf("Dashboard client connected from %s (%d total)",
			conn.Request().RemoteAddr, hub.Count())
		defer func() {
			log.Printf("Dashboard client disconnected (%d remaining)", hub.Count()-1)
		}()

		// Drain client messages so a peer close is observed promptly; the
		// dashboard has nothing to say that the server acts on.
		done := make(chan struct{})
		go func() {
			defer close(done)
			var discard string
			for {
				if err := websocket.Message.Receive(conn, &discard); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := websocket.Message.Send(conn, string(msg)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

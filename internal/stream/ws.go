package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsPingPeriod = 30 * time.Second

// WebSocketHandler subscribes the connection to one session's event stream
// and forwards events as JSON messages until the stream ends or the client
// hangs up.
func WebSocketHandler(streamer *Streamer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		if sessionID == "" {
			http.Error(w, `{"error":"session id is required"}`, http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("stream: websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		events, cancel := streamer.Subscribe(sessionID)
		defer cancel()

		// Drain the read side so close frames are processed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(e); err != nil {
					return
				}
				if e.Terminal() {
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-r.Context().Done():
				return
			}
		}
	}
}

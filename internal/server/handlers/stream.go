// internal/server/handlers/stream.go

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
)

// Stream keepalive settings.
const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AnalyticsStreamHandler upgrades the connection to a websocket and
// forwards every computed-analytics event from the bus to the client.
// The stream is read-only: client messages are discarded.
func AnalyticsStreamHandler(natsConn *nats.Conn, topic string, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		events := make(chan *nats.Msg, 64)
		sub, err := natsConn.ChanSubscribe(topic+".>", events)
		if err != nil {
			logger.Warn("event subscription failed", "topic", topic, "error", err)
			conn.Close()
			return
		}

		done := make(chan struct{})

		// Reader exists only to process control frames and notice the
		// client going away.
		go func() {
			defer close(done)
			conn.SetReadDeadline(time.Now().Add(streamPongWait))
			conn.SetPongHandler(func(string) error {
				conn.SetReadDeadline(time.Now().Add(streamPongWait))
				return nil
			})
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			ticker := time.NewTicker(streamPingPeriod)
			defer func() {
				ticker.Stop()
				sub.Unsubscribe()
				conn.Close()
			}()

			for {
				select {
				case <-done:
					return
				case msg := <-events:
					conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
					if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
						return
					}
				case <-ticker.C:
					conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()
	}
}

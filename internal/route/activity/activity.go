package activity

import (
	"log"
	"net/http"
	"time"

	"github.com/dense-analysis/nexus/internal/feed"
	"github.com/dense-analysis/nexus/pkg/lax"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// BlocksView serves GET /api/activity/blocks.
func BlocksView(blocks *feed.Feed) lax.View {
	return lax.View{
		Get: func(request *lax.Request) any {
			return blocks.Recent()
		},
	}
}

// HandleStream upgrades to a websocket and sends every newly mined block as
// a JSON message until the client goes away.
func HandleStream(blocks *feed.Feed) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		conn, err := upgrader.Upgrade(writer, request, nil)

		if err != nil {
			// Upgrade has already written an error response.
			return
		}

		defer conn.Close()

		channel, stop := blocks.Subscribe()
		defer stop()

		closed := make(chan struct{})

		go func() {
			defer close(closed)

			conn.SetReadLimit(512)
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(pongWait))
			})

			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.Printf("feed stream read error: %s\n", err)
					}

					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-closed:
				return
			case <-request.Context().Done():
				return
			case block, ok := <-channel:
				if !ok {
					return
				}

				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

				if err := conn.WriteJSON(block); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

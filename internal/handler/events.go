package handler

import (
	"net/http"

	"ornament-detect/internal/logger"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub is implemented by the websocket HubService.
type EventHub interface {
	Register(client *websocket.Conn)
	Unregister(client *websocket.Conn)
}

// EventsHandler registers the connection with the hub so it receives a
// message after every detection. Incoming messages are read and discarded
// until the client goes away.
func EventsHandler(hub EventHub, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Event client disconnected normally")
				} else {
					logger.Warning("Event client disconnected with error: %v", err)
				}
				return
			}
		}
	}
}

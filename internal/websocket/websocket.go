package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
	"github.com/scythe504/wordsearch-backend/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler is the game side of a connection: every decoded envelope goes to
// Dispatch and Disconnect runs exactly once when the socket goes away.
type Handler interface {
	Dispatch(connID string, msg internal.Message[json.RawMessage])
	Disconnect(connID string)
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

// HandleWebSocket upgrades the request, registers the connection under a fresh
// id and starts its pumps. Rooms are chosen later through join-game.
func (h *Hub) HandleWebSocket(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] upgrade failed")
			return
		}

		client := newClient(h, conn, utils.GenerateID())
		h.register(client)

		log.Info().Str("conn", client.id).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] client connected")

		go client.writePump()
		go client.readPump(handler)
	}
}

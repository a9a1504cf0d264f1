package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// handleDeviceSocket upgrades the connection and hands it to the realtime
// gateway. Authentication is via a token query parameter; the gateway
// rejects bad credentials by closing the upgraded connection so callers
// cannot tell a bad token from a room they don't own.
// GET /ws/devices/{room_id}/?token=...
func (s *Server) handleDeviceSocket(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "room_id"), 10, 64)
	if err != nil {
		writeNotFound(w, "room not found")
		return
	}
	token := r.URL.Query().Get("token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	s.gateway.Serve(r.Context(), conn, roomID, token)
}

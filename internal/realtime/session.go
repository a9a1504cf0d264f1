package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/trandq/home-electronics-core/internal/auth"
	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/infrastructure/config"
	"github.com/trandq/home-electronics-core/internal/infrastructure/logging"
)

// permissionDeniedReply is the wording clients already expect.
const permissionDeniedReply = "Permission denied."

// Gateway turns upgraded WebSocket connections into room-scoped sessions.
// It owns the collaborators every session needs.
type Gateway struct {
	hub      *Hub
	guard    *Guard
	store    *device.StateStore
	verifier *auth.Verifier
	cfg      config.WebSocketConfig
	logger   *logging.Logger
}

// NewGateway creates a session gateway.
func NewGateway(hub *Hub, guard *Guard, store *device.StateStore, verifier *auth.Verifier, cfg config.WebSocketConfig, logger *logging.Logger) *Gateway {
	return &Gateway{
		hub:      hub,
		guard:    guard,
		store:    store,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Serve runs the full session lifecycle on an already-upgraded
// connection and blocks until it closes. An anonymous identity or a
// failed room ownership check closes the transport without sending
// anything; a rejected caller learns nothing beyond the disconnect.
func (g *Gateway) Serve(ctx context.Context, conn *websocket.Conn, roomID int64, token string) {
	identity := g.verifier.Verify(ctx, token)
	if identity.Anonymous {
		g.logger.Debug("websocket rejected: unauthenticated", "room_id", roomID)
		conn.Close()
		return
	}

	owns, err := g.guard.OwnsRoom(ctx, identity.UserID, roomID)
	if err != nil {
		g.logger.Error("room ownership check failed", "room_id", roomID, "error", err)
		conn.Close()
		return
	}
	if !owns {
		g.logger.Debug("websocket rejected: room not owned", "room_id", roomID, "user_id", identity.UserID)
		conn.Close()
		return
	}

	sessionID := uuid.NewString()
	s := &Session{
		id:     sessionID,
		hub:    g.hub,
		guard:  g.guard,
		store:  g.store,
		conn:   conn,
		send:   make(chan []byte, g.cfg.SendBufferSize),
		roomID: roomID,
		userID: identity.UserID,
		logger: g.logger.With("session_id", sessionID, "room_id", roomID, "user_id", identity.UserID),
	}

	g.hub.Join(roomID, s)

	go s.writePump(g.cfg)
	s.readPump(g.cfg)
}

// Session is one live connection joined to one room. Commands are read
// and processed strictly in arrival order; outbound traffic goes through
// a buffered channel drained by the write pump.
type Session struct {
	id     string
	hub    *Hub
	guard  *Guard
	store  *device.StateStore
	conn   *websocket.Conn
	send   chan []byte
	roomID int64
	userID int64
	logger *logging.Logger
}

// readPump reads commands until the connection dies, then leaves the
// room. Leave runs on every exit path, abrupt disconnects included.
func (s *Session) readPump(cfg config.WebSocketConfig) {
	defer func() {
		s.hub.Leave(s.roomID, s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	s.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			} else {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client message resets the read deadline
		//nolint:errcheck // Best-effort deadline reset
		s.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		s.handleCommand(message)
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with protocol pings.
func (s *Session) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-s.send:
			if !ok {
				// Hub closed the channel
				//nolint:errcheck // Best-effort close message
				s.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			s.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			s.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleCommand runs one inbound command through the authorize, merge,
// persist, broadcast pipeline. Malformed and not-found commands vanish
// without a reply; only a permission denial talks back, and nothing here
// closes the connection.
func (s *Session) handleCommand(data []byte) {
	deviceID, attrs, ok := parseCommand(data)
	if !ok {
		s.logger.Debug("dropping malformed command")
		return
	}

	// Detached from the transport: an in-flight merge may finish even if
	// the client disconnects mid-command.
	ctx := context.Background()

	if _, err := s.guard.AuthorizeDevice(ctx, s.userID, s.roomID, deviceID); err != nil {
		switch {
		case errors.Is(err, ErrDenied):
			s.sendError(permissionDeniedReply)
		case errors.Is(err, ErrNotFound):
			s.logger.Debug("dropping command for unknown device", "device_id", deviceID)
		default:
			s.logger.Error("device authorization failed", "device_id", deviceID, "error", err)
		}
		return
	}

	snap, changed, err := s.store.Apply(ctx, deviceID, attrs)
	if err != nil {
		if errors.Is(err, device.ErrMalformedState) || errors.Is(err, device.ErrDeviceNotFound) {
			s.logger.Debug("dropping unappliable command", "device_id", deviceID, "error", err)
		} else {
			s.logger.Error("state apply failed", "device_id", deviceID, "error", err)
		}
		return
	}
	if !changed {
		return
	}

	s.hub.Broadcast(s.roomID, snap)
}

// trySend queues data for the write pump, absorbing closed channels and
// full buffers so one dying session never stalls a broadcast.
func (s *Session) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case s.send <- data:
	default:
		// Buffer full, skip
	}
}

// sendError replies to this session only.
func (s *Session) sendError(message string) {
	data, err := json.Marshal(errorReply{Error: message})
	if err != nil {
		return
	}
	s.trySend(data)
}

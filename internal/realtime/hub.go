package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/infrastructure/logging"
	"github.com/trandq/home-electronics-core/internal/infrastructure/mqtt"
)

// busQoS is the delivery level for room state traffic on the bus.
const busQoS = 1

// Bus is the slice of the MQTT client the hub needs. *mqtt.Client
// satisfies it; tests substitute a fake.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// Hub holds the per-room member sets and fans state broadcasts out to
// them. With a bus attached, broadcasts travel via MQTT so every server
// instance sharing the broker delivers them; locally originated messages
// come back through the same subscription, which keeps delivery single
// and uniform. Without a bus the hub delivers directly in process.
type Hub struct {
	logger *logging.Logger
	bus    Bus // nil when no broker is configured
	topics mqtt.Topics

	// busReady is set once the room-state subscription is established.
	// Until then broadcasts take the local path, otherwise a published
	// message would have no way back to this instance's members.
	busReady atomic.Bool

	rooms map[int64]map[*Session]struct{}
	mu    sync.RWMutex
}

// NewHub creates a hub. bus may be nil to run standalone.
func NewHub(logger *logging.Logger, bus Bus) *Hub {
	return &Hub{
		logger: logger,
		bus:    bus,
		rooms:  make(map[int64]map[*Session]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects every
// member of every room.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// SubscribeBus attaches the hub to the broker's room state topics. Call
// once at startup when a bus is configured. On failure the hub keeps
// delivering locally, so a broken subscription degrades to
// single-instance behaviour instead of silently losing broadcasts.
func (h *Hub) SubscribeBus() error {
	if h.bus == nil {
		return nil
	}
	err := h.bus.Subscribe(h.topics.AllRoomStates(), busQoS, func(topic string, payload []byte) error {
		roomID, parseErr := mqtt.RoomIDFromStateTopic(topic)
		if parseErr != nil {
			h.logger.Warn("unparseable room state topic", "topic", topic, "error", parseErr)
			return nil
		}
		h.deliverLocal(roomID, payload)
		return nil
	})
	if err != nil {
		return err
	}
	h.busReady.Store(true)
	return nil
}

// Join registers a session in a room's member set. Joining twice is a
// no-op; the set semantics guarantee single delivery per member.
func (h *Hub) Join(roomID int64, s *Session) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[*Session]struct{})
		h.rooms[roomID] = members
	}
	members[s] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("session joined room", "room_id", roomID, "members", h.MemberCount(roomID))
}

// Leave removes a session from a room's member set. Safe to call for a
// session that never joined or already left.
// Only the goroutine that actually removes the session closes its send
// channel, preventing double-close panics during shutdown.
func (h *Hub) Leave(roomID int64, s *Session) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	_, existed := members[s]
	if existed {
		delete(members, s)
		if ok && len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	if existed {
		close(s.send)
		h.logger.Debug("session left room", "room_id", roomID, "members", h.MemberCount(roomID))
	}
}

// Broadcast delivers the full post-merge snapshot to every member of the
// room, including the sender. With the bus subscribed the message is
// published and comes back via the wildcard subscription; if the
// subscription never came up or the publish fails, delivery degrades to
// local fan-out so room members on this instance still hear about the
// change.
func (h *Hub) Broadcast(roomID int64, snap device.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("failed to marshal state broadcast", "room_id", roomID, "error", err)
		return
	}

	if h.bus != nil && h.busReady.Load() && h.bus.IsConnected() {
		if err := h.bus.Publish(h.topics.RoomState(roomID), data, busQoS, false); err == nil {
			return
		}
		h.logger.Warn("bus publish failed, delivering locally", "room_id", roomID)
	}
	h.deliverLocal(roomID, data)
}

// deliverLocal fans a payload out to the room's in-process members.
// Delivery is best-effort per member: a slow or closing session never
// blocks the others.
func (h *Hub) deliverLocal(roomID int64, data []byte) {
	h.mu.RLock()
	members := make([]*Session, 0, len(h.rooms[roomID]))
	for s := range h.rooms[roomID] {
		members = append(members, s)
	}
	h.mu.RUnlock()

	for _, s := range members {
		s.trySend(data)
	}
}

// MemberCount returns the number of sessions currently joined to a room.
func (h *Hub) MemberCount(roomID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// closeAll empties every room and closes each member's send channel so
// write pumps exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID, members := range h.rooms {
		for s := range members {
			close(s.send)
			if s.conn != nil {
				s.conn.Close()
			}
		}
		delete(h.rooms, roomID)
	}
}

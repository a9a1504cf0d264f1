package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// Topic prefixes for the Home Electronics Core MQTT namespace.
//
// Room state topics use the scheme: homecore/rooms/{room_id}/state
// Every server instance subscribes to the room-state wildcard so that a
// broadcast published by one instance reaches the websocket clients of all
// instances sharing the broker.
const (
	// TopicPrefix is the base for all Home Electronics Core topics.
	TopicPrefix = "homecore"

	// TopicPrefixRooms is the base for per-room broadcast topics.
	TopicPrefixRooms = "homecore/rooms"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "homecore/system"
)

// Topics provides builders for Home Electronics Core MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.RoomState(7)
//	// Returns: "homecore/rooms/7/state"
type Topics struct{}

// RoomState returns the broadcast topic for device state updates in a room.
//
// Example: homecore/rooms/7/state
func (Topics) RoomState(roomID int64) string {
	return fmt.Sprintf("%s/%d/state", TopicPrefixRooms, roomID)
}

// AllRoomStates returns the wildcard topic matching every room's state topic.
//
// Example: homecore/rooms/+/state
func (Topics) AllRoomStates() string {
	return TopicPrefixRooms + "/+/state"
}

// SystemStatus returns the topic for server online/offline status.
//
// Example: homecore/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// RoomIDFromStateTopic extracts the room ID from a room state topic.
// Returns an error if the topic does not match homecore/rooms/{id}/state.
func RoomIDFromStateTopic(topic string) (int64, error) {
	rest, ok := strings.CutPrefix(topic, TopicPrefixRooms+"/")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	idStr, ok := strings.CutSuffix(rest, "/state")
	if !ok || strings.Contains(idStr, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	return id, nil
}

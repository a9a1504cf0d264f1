package room

import "errors"

var (
	// ErrRoomNotFound is returned when a room lookup matches no row.
	ErrRoomNotFound = errors.New("room not found")
)

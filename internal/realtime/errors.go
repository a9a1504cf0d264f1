package realtime

import "errors"

var (
	// ErrDenied means the caller is not allowed to touch the device: either
	// the device's room belongs to someone else, or the device sits outside
	// the room this connection joined.
	ErrDenied = errors.New("permission denied")

	// ErrNotFound means no device with the given id exists.
	ErrNotFound = errors.New("device not found")
)

package device

import "errors"

var (
	// ErrDeviceNotFound is returned when a device lookup matches no row.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrInvalidDeviceType is returned for an unrecognised device type.
	ErrInvalidDeviceType = errors.New("invalid device type")

	// ErrMalformedState is returned when an incoming state document cannot
	// be applied, such as a non-boolean power flag.
	ErrMalformedState = errors.New("malformed device state")
)

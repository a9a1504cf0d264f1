package realtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/room"
)

// Guard answers the two authorization questions the realtime layer asks:
// may this user join this room, and may this connection command this
// device. It never mutates anything.
type Guard struct {
	rooms   room.Repository
	devices device.Repository
}

// NewGuard creates an authorization guard over the given repositories.
func NewGuard(rooms room.Repository, devices device.Repository) *Guard {
	return &Guard{rooms: rooms, devices: devices}
}

// OwnsRoom reports whether the room exists and belongs to the user. Used
// once, at connect time.
func (g *Guard) OwnsRoom(ctx context.Context, userID, roomID int64) (bool, error) {
	return g.rooms.OwnsRoom(ctx, userID, roomID)
}

// AuthorizeDevice fetches the device and applies the double ownership
// check: the device's room must belong to the user, and the device must
// sit inside the room the connection is scoped to. Owning a device in
// some other room is not enough; broadcasts are scoped per room, so a
// command must only ever mutate state inside the room it will be
// announced to.
//
// Returns ErrNotFound when no such device exists and ErrDenied on either
// ownership failure.
func (g *Guard) AuthorizeDevice(ctx context.Context, userID, roomID, deviceID int64) (*device.Device, error) {
	dev, ownerID, err := g.devices.GetWithOwner(ctx, deviceID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("authorizing device: %w", err)
	}

	if ownerID != userID {
		return nil, ErrDenied
	}
	if dev.RoomID != roomID {
		return nil, ErrDenied
	}
	return dev, nil
}

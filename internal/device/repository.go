package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository defines storage operations for devices.
type Repository interface {
	Create(ctx context.Context, dev *Device) error
	GetByID(ctx context.Context, id int64) (*Device, error)
	ListByRoom(ctx context.Context, roomID int64) ([]*Device, error)
	ListByOwner(ctx context.Context, userID int64) ([]*Device, error)
	Update(ctx context.Context, dev *Device) error
	Delete(ctx context.Context, id int64) error

	// GetWithOwner fetches a device together with the ID of the user who
	// owns its room, in one joined read.
	GetWithOwner(ctx context.Context, id int64) (*Device, int64, error)

	// SaveState persists the mutable state of a device.
	SaveState(ctx context.Context, id int64, isOn bool, attributes map[string]any) error
}

const deviceColumns = `id, room_id, name, subtitle, icon_asset, device_type, is_on, attributes`

// SQLiteDeviceRepository implements Repository backed by SQLite.
type SQLiteDeviceRepository struct {
	db *sql.DB
}

// NewRepository creates a device repository.
func NewRepository(db *sql.DB) *SQLiteDeviceRepository {
	return &SQLiteDeviceRepository{db: db}
}

// Create inserts a device and writes the assigned ID back onto it.
func (r *SQLiteDeviceRepository) Create(ctx context.Context, dev *Device) error {
	if !IsValidType(dev.DeviceType) {
		return ErrInvalidDeviceType
	}

	attrs, err := encodeAttributes(dev.Attributes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO devices (room_id, name, subtitle, icon_asset, device_type, is_on, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dev.RoomID, dev.Name, dev.Subtitle, dev.IconAsset, dev.DeviceType, boolToInt(dev.IsOn), attrs,
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading device id: %w", err)
	}
	dev.ID = id
	return nil
}

// GetByID fetches a single device.
func (r *SQLiteDeviceRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	return scanDevice(row)
}

// GetWithOwner joins through to the room so the caller gets the device and
// its owner in a single round trip.
func (r *SQLiteDeviceRepository) GetWithOwner(ctx context.Context, id int64) (*Device, int64, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT d.id, d.room_id, d.name, d.subtitle, d.icon_asset, d.device_type, d.is_on, d.attributes, r.user_id
		 FROM devices d
		 JOIN rooms r ON r.id = d.room_id
		 WHERE d.id = ?`, id)

	var (
		dev     Device
		isOn    int
		attrs   string
		ownerID int64
	)
	err := row.Scan(&dev.ID, &dev.RoomID, &dev.Name, &dev.Subtitle, &dev.IconAsset,
		&dev.DeviceType, &isOn, &attrs, &ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrDeviceNotFound
		}
		return nil, 0, fmt.Errorf("fetching device with owner: %w", err)
	}

	dev.IsOn = isOn != 0
	if dev.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, 0, err
	}
	return &dev, ownerID, nil
}

// ListByRoom returns all devices in a room, oldest first.
func (r *SQLiteDeviceRepository) ListByRoom(ctx context.Context, roomID int64) ([]*Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE room_id = ? ORDER BY id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return collectDevices(rows)
}

// ListByOwner returns every device across all of a user's rooms.
func (r *SQLiteDeviceRepository) ListByOwner(ctx context.Context, userID int64) ([]*Device, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT d.id, d.room_id, d.name, d.subtitle, d.icon_asset, d.device_type, d.is_on, d.attributes
		 FROM devices d
		 JOIN rooms r ON r.id = d.room_id
		 WHERE r.user_id = ?
		 ORDER BY d.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing devices by owner: %w", err)
	}
	return collectDevices(rows)
}

// Update rewrites the descriptive fields and state of a device. The room
// and device type never change after creation.
func (r *SQLiteDeviceRepository) Update(ctx context.Context, dev *Device) error {
	attrs, err := encodeAttributes(dev.Attributes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET name = ?, subtitle = ?, icon_asset = ?, is_on = ?, attributes = ? WHERE id = ?`,
		dev.Name, dev.Subtitle, dev.IconAsset, boolToInt(dev.IsOn), attrs, dev.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// SaveState persists just the mutable state columns.
func (r *SQLiteDeviceRepository) SaveState(ctx context.Context, id int64, isOn bool, attributes map[string]any) error {
	attrs, err := encodeAttributes(attributes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET is_on = ?, attributes = ? WHERE id = ?`,
		boolToInt(isOn), attrs, id,
	)
	if err != nil {
		return fmt.Errorf("saving device state: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device.
func (r *SQLiteDeviceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func scanDevice(row *sql.Row) (*Device, error) {
	var (
		dev   Device
		isOn  int
		attrs string
	)
	err := row.Scan(&dev.ID, &dev.RoomID, &dev.Name, &dev.Subtitle, &dev.IconAsset,
		&dev.DeviceType, &isOn, &attrs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("fetching device: %w", err)
	}

	dev.IsOn = isOn != 0
	if dev.Attributes, err = decodeAttributes(attrs); err != nil {
		return nil, err
	}
	return &dev, nil
}

func collectDevices(rows *sql.Rows) ([]*Device, error) {
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		var (
			dev   Device
			isOn  int
			attrs string
		)
		err := rows.Scan(&dev.ID, &dev.RoomID, &dev.Name, &dev.Subtitle, &dev.IconAsset,
			&dev.DeviceType, &isOn, &attrs)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		dev.IsOn = isOn != 0
		if dev.Attributes, err = decodeAttributes(attrs); err != nil {
			return nil, err
		}
		devices = append(devices, &dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

func encodeAttributes(attrs map[string]any) (string, error) {
	if attrs == nil {
		return "{}", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encoding attributes: %w", err)
	}
	return string(data), nil
}

func decodeAttributes(raw string) (map[string]any, error) {
	attrs := map[string]any{}
	if raw == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return attrs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

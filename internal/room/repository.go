package room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines storage operations for rooms.
type Repository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id int64) (*Room, error)
	ListByOwner(ctx context.Context, userID int64) ([]*Room, error)
	Update(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id int64) error

	// OwnsRoom reports whether the room exists and belongs to the user.
	// A missing room and a room owned by someone else are indistinguishable
	// to the caller.
	OwnsRoom(ctx context.Context, userID, roomID int64) (bool, error)
}

// SQLiteRoomRepository implements Repository backed by SQLite.
type SQLiteRoomRepository struct {
	db *sql.DB
}

// NewRepository creates a room repository.
func NewRepository(db *sql.DB) *SQLiteRoomRepository {
	return &SQLiteRoomRepository{db: db}
}

// Create inserts a room and writes the assigned ID back onto it.
func (r *SQLiteRoomRepository) Create(ctx context.Context, room *Room) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (user_id, name) VALUES (?, ?)`,
		room.UserID, room.Name,
	)
	if err != nil {
		return fmt.Errorf("creating room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading room id: %w", err)
	}
	room.ID = id
	return nil
}

// GetByID fetches a single room.
func (r *SQLiteRoomRepository) GetByID(ctx context.Context, id int64) (*Room, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name FROM rooms WHERE id = ?`, id)

	var room Room
	if err := row.Scan(&room.ID, &room.UserID, &room.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("fetching room: %w", err)
	}
	return &room, nil
}

// ListByOwner returns all rooms belonging to a user, oldest first.
func (r *SQLiteRoomRepository) ListByOwner(ctx context.Context, userID int64) ([]*Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name FROM rooms WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]*Room, 0)
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.UserID, &room.Name); err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, &room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}
	return rooms, nil
}

// Update renames a room. Ownership never changes after creation.
func (r *SQLiteRoomRepository) Update(ctx context.Context, room *Room) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ? WHERE id = ?`,
		room.Name, room.ID,
	)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room and, via foreign keys, all devices inside it.
func (r *SQLiteRoomRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// OwnsRoom runs a single existence query scoped to both IDs.
func (r *SQLiteRoomRepository) OwnsRoom(ctx context.Context, userID, roomID int64) (bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE id = ? AND user_id = ?)`,
		roomID, userID,
	)

	var exists int
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking room ownership: %w", err)
	}
	return exists == 1, nil
}

package device

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "device-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE TABLE rooms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL
		) STRICT;

		CREATE TABLE devices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			room_id INTEGER NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			subtitle TEXT NOT NULL DEFAULT '',
			icon_asset TEXT NOT NULL DEFAULT '',
			device_type TEXT NOT NULL CHECK (device_type IN ('binarySwitch', 'dimmableLight')),
			is_on INTEGER NOT NULL DEFAULT 0,
			attributes TEXT NOT NULL DEFAULT '{}'
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// seedTestRoom inserts a user and a room, returning the room ID and owner ID.
func seedTestRoom(t *testing.T, db *sql.DB, email string) (roomID, ownerID int64) {
	t.Helper()
	ctx := context.Background()

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
		email, "$argon2id$fake",
	)
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	ownerID, err = result.LastInsertId()
	if err != nil {
		t.Fatalf("reading user id: %v", err)
	}

	result, err = db.ExecContext(ctx,
		`INSERT INTO rooms (user_id, name) VALUES (?, ?)`,
		ownerID, "Test Room",
	)
	if err != nil {
		t.Fatalf("seeding room: %v", err)
	}
	roomID, err = result.LastInsertId()
	if err != nil {
		t.Fatalf("reading room id: %v", err)
	}
	return roomID, ownerID
}

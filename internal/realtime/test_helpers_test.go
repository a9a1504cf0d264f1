package realtime

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"

	"github.com/trandq/home-electronics-core/internal/auth"
	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/infrastructure/config"
	"github.com/trandq/home-electronics-core/internal/infrastructure/logging"
	"github.com/trandq/home-electronics-core/internal/room"
)

const testSecret = "test-secret-key-at-least-32-chars!!!"

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "realtime-test-*.db")
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

// testFixture wires a full realtime stack over a temp database.
type testFixture struct {
	db       *sql.DB
	users    *auth.SQLiteUserRepository
	rooms    *room.SQLiteRoomRepository
	devices  *device.SQLiteDeviceRepository
	guard    *Guard
	store    *device.StateStore
	hub      *Hub
	gateway  *Gateway
	verifier *auth.Verifier
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	db := testDB(t)
	users := auth.NewUserRepository(db)
	rooms := room.NewRepository(db)
	devices := device.NewRepository(db)

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"}, "test")
	verifier := auth.NewVerifier(users, testSecret)
	guard := NewGuard(rooms, devices)
	store := device.NewStateStore(devices)
	hub := NewHub(logger, nil)

	wsCfg := config.WebSocketConfig{
		MaxMessageSize: 4096,
		PingInterval:   30,
		PongTimeout:    10,
		SendBufferSize: 16,
	}

	return &testFixture{
		db:       db,
		users:    users,
		rooms:    rooms,
		devices:  devices,
		guard:    guard,
		store:    store,
		hub:      hub,
		gateway:  NewGateway(hub, guard, store, verifier, wsCfg, logger),
		verifier: verifier,
	}
}

func (f *testFixture) seedUser(t *testing.T, email string) int64 {
	t.Helper()

	u := &auth.User{Email: email, PasswordHash: "$argon2id$fake", IsActive: true}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u.ID
}

func (f *testFixture) seedRoom(t *testing.T, userID int64, name string) int64 {
	t.Helper()

	r := &room.Room{UserID: userID, Name: name}
	if err := f.rooms.Create(context.Background(), r); err != nil {
		t.Fatalf("seeding room: %v", err)
	}
	return r.ID
}

func (f *testFixture) seedDevice(t *testing.T, roomID int64, name string) int64 {
	t.Helper()

	d := &device.Device{RoomID: roomID, Name: name, DeviceType: device.TypeBinarySwitch}
	if err := f.devices.Create(context.Background(), d); err != nil {
		t.Fatalf("seeding device: %v", err)
	}
	return d.ID
}

func (f *testFixture) accessToken(t *testing.T, userID int64) string {
	t.Helper()

	token, err := auth.GenerateAccessToken(userID, testSecret, 30)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// startWSServer exposes the gateway at /ws/devices/{room_id}/ the same
// way the API server does, minus the router.
func (f *testFixture) startWSServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/ws/devices/"), "/")
		roomID, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			http.Error(w, "bad room id", http.StatusBadRequest)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		f.gateway.Serve(r.Context(), conn, roomID, r.URL.Query().Get("token"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// dialWS opens a client connection to the test server for a room.
func dialWS(t *testing.T, srv *httptest.Server, roomID int64, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") +
		"/ws/devices/" + strconv.FormatInt(roomID, 10) + "/?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

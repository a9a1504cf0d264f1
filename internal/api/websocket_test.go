package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialRoom opens a WebSocket to the room endpoint of a running test server.
func dialRoom(t *testing.T, serverURL string, roomID int64, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") +
		"/ws/devices/" + strconv.FormatInt(roomID, 10) + "/?token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// createRoomAndDevice provisions a room with a single switch through the
// REST API and returns both ids.
func createRoomAndDevice(t *testing.T, router http.Handler, token string) (roomID, deviceID int64) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/rooms/", token, map[string]any{
		"name": "Living Room",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating room returned %d: %s", rec.Code, rec.Body.String())
	}
	roomID = int64(decodeBody(t, rec)["id"].(float64))

	rec = doJSON(t, router, http.MethodPost, "/api/devices/", token, map[string]any{
		"room": roomID,
		"name": "Ceiling Light",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("creating device returned %d: %s", rec.Code, rec.Body.String())
	}
	deviceID = int64(decodeBody(t, rec)["id"].(float64))
	return roomID, deviceID
}

func TestWebSocketEndToEnd(t *testing.T) {
	srv, router := testServer(t)

	ts := httptest.NewServer(router)
	defer ts.Close()

	token := registerAndLogin(t, router, "ws-e2e@example.com")
	roomID, deviceID := createRoomAndDevice(t, router, token)

	// Two clients watching the same room
	sender := dialRoom(t, ts.URL, roomID, token)
	watcher := dialRoom(t, ts.URL, roomID, token)

	// Wait for both sessions to join before commanding
	deadline := time.Now().Add(3 * time.Second)
	for srv.hub.MemberCount(roomID) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("room has %d members, want 2", srv.hub.MemberCount(roomID))
		}
		time.Sleep(10 * time.Millisecond)
	}

	cmd, err := json.Marshal(map[string]any{
		"device_id":  deviceID,
		"attributes": map[string]any{"is_on": true},
	})
	if err != nil {
		t.Fatalf("marshaling command: %v", err)
	}
	if err := sender.WriteMessage(websocket.TextMessage, cmd); err != nil {
		t.Fatalf("sending command: %v", err)
	}

	// Both clients receive the broadcast state
	for _, conn := range []*websocket.Conn{sender, watcher} {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, data, readErr := conn.ReadMessage()
		if readErr != nil {
			t.Fatalf("reading broadcast: %v", readErr)
		}

		var snap struct {
			DeviceID int64 `json:"device_id"`
			IsOn     bool  `json:"is_on"`
		}
		if unmarshalErr := json.Unmarshal(data, &snap); unmarshalErr != nil {
			t.Fatalf("decoding broadcast %q: %v", data, unmarshalErr)
		}
		if snap.DeviceID != deviceID || !snap.IsOn {
			t.Errorf("broadcast = %s, want device %d on", data, deviceID)
		}
	}

	// The change is persisted and visible over REST
	rec := doJSON(t, router, http.MethodGet,
		"/api/devices/"+strconv.FormatInt(deviceID, 10)+"/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetching device returned %d", rec.Code)
	}
	if isOn, _ := decodeBody(t, rec)["is_on"].(bool); !isOn {
		t.Error("expected the device to be persisted as on")
	}
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	_, router := testServer(t)

	ts := httptest.NewServer(router)
	defer ts.Close()

	token := registerAndLogin(t, router, "ws-reject@example.com")
	roomID, _ := createRoomAndDevice(t, router, token)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/ws/devices/" + strconv.FormatInt(roomID, 10) + "/?token=not-a-token"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		// Either a refused upgrade or an immediate close is acceptable
		return
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The upgrade succeeded; the server must close without delivering anything
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, readErr := conn.ReadMessage(); readErr == nil {
		t.Fatal("expected the connection to be closed")
	}
}

func TestWebSocketRejectsForeignRoom(t *testing.T) {
	_, router := testServer(t)

	ts := httptest.NewServer(router)
	defer ts.Close()

	ownerToken := registerAndLogin(t, router, "ws-owner@example.com")
	roomID, _ := createRoomAndDevice(t, router, ownerToken)

	intruderToken := registerAndLogin(t, router, "ws-intruder@example.com")

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") +
		"/ws/devices/" + strconv.FormatInt(roomID, 10) + "/?token=" + intruderToken

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, readErr := conn.ReadMessage(); readErr == nil {
		t.Fatal("expected the connection to be closed")
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/room"
)

// roomView is a room with its devices embedded, which is what the room
// screens render from directly.
type roomView struct {
	ID      int64            `json:"id"`
	Name    string           `json:"name"`
	UserID  int64            `json:"user"`
	Devices []*device.Device `json:"devices"`
}

func (s *Server) roomViewOf(r *http.Request, rm *room.Room) (roomView, error) {
	devices, err := s.devices.ListByRoom(r.Context(), rm.ID)
	if err != nil {
		return roomView{}, err
	}
	return roomView{ID: rm.ID, Name: rm.Name, UserID: rm.UserID, Devices: devices}, nil
}

// handleListRooms lists the caller's rooms with their devices.
// GET /api/rooms/
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.ListByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.logger.Error("room list failed", "error", err)
		writeInternalError(w, "failed to list rooms")
		return
	}

	views := make([]roomView, 0, len(rooms))
	for _, rm := range rooms {
		view, err := s.roomViewOf(r, rm)
		if err != nil {
			s.logger.Error("room device lookup failed", "room_id", rm.ID, "error", err)
			writeInternalError(w, "failed to list rooms")
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, views)
}

type roomRequest struct {
	Name *string `json:"name"`
}

// handleCreateRoom creates a room owned by the caller.
// POST /api/rooms/
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeValidationError(w, "name is required")
		return
	}

	rm := &room.Room{UserID: userIDFrom(r), Name: *req.Name}
	if err := s.rooms.Create(r.Context(), rm); err != nil {
		s.logger.Error("room creation failed", "error", err)
		writeInternalError(w, "failed to create room")
		return
	}

	s.logger.Info("room created", "room_id", rm.ID, "user_id", rm.UserID)
	writeJSON(w, http.StatusCreated, roomView{ID: rm.ID, Name: rm.Name, UserID: rm.UserID, Devices: []*device.Device{}})
}

// ownedRoom loads a room scoped to the caller. Rooms outside the caller's
// account read as missing.
func (s *Server) ownedRoom(w http.ResponseWriter, r *http.Request) (*room.Room, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeNotFound(w, "room not found")
		return nil, false
	}

	rm, err := s.rooms.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeNotFound(w, "room not found")
			return nil, false
		}
		s.logger.Error("room lookup failed", "room_id", id, "error", err)
		writeInternalError(w, "failed to load room")
		return nil, false
	}
	if rm.UserID != userIDFrom(r) {
		writeNotFound(w, "room not found")
		return nil, false
	}
	return rm, true
}

// handleGetRoom returns one room with its devices.
// GET /api/rooms/{id}/
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.ownedRoom(w, r)
	if !ok {
		return
	}

	view, err := s.roomViewOf(r, rm)
	if err != nil {
		s.logger.Error("room device lookup failed", "room_id", rm.ID, "error", err)
		writeInternalError(w, "failed to load room")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleUpdateRoom renames a room. PUT is treated as a partial update so
// clients only send the fields they change.
// PUT /api/rooms/{id}/
func (s *Server) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.ownedRoom(w, r)
	if !ok {
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			writeValidationError(w, "name cannot be empty")
			return
		}
		rm.Name = *req.Name
	}

	if err := s.rooms.Update(r.Context(), rm); err != nil {
		s.logger.Error("room update failed", "room_id", rm.ID, "error", err)
		writeInternalError(w, "failed to update room")
		return
	}

	view, err := s.roomViewOf(r, rm)
	if err != nil {
		s.logger.Error("room device lookup failed", "room_id", rm.ID, "error", err)
		writeInternalError(w, "failed to load room")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteRoom removes a room and everything in it.
// DELETE /api/rooms/{id}/
func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	rm, ok := s.ownedRoom(w, r)
	if !ok {
		return
	}

	if err := s.rooms.Delete(r.Context(), rm.ID); err != nil {
		s.logger.Error("room deletion failed", "room_id", rm.ID, "error", err)
		writeInternalError(w, "failed to delete room")
		return
	}

	s.logger.Info("room deleted", "room_id", rm.ID, "user_id", rm.UserID)
	w.WriteHeader(http.StatusNoContent)
}

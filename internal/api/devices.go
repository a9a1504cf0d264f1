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

// handleListDevices lists every device across the caller's rooms.
// GET /api/devices/
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.ListByOwner(r.Context(), userIDFrom(r))
	if err != nil {
		s.logger.Error("device list failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

type createDeviceRequest struct {
	RoomID     *int64         `json:"room"`
	Name       string         `json:"name"`
	Subtitle   string         `json:"subtitle"`
	IconAsset  string         `json:"icon_asset"`
	DeviceType string         `json:"device_type"`
	IsOn       bool           `json:"is_on"`
	Attributes map[string]any `json:"attributes"`
}

// handleCreateDevice adds a device to one of the caller's rooms.
// POST /api/devices/
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.RoomID == nil {
		writeValidationError(w, "room is required")
		return
	}
	if req.Name == "" {
		writeValidationError(w, "name is required")
		return
	}

	rm, err := s.rooms.GetByID(r.Context(), *req.RoomID)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			writeValidationError(w, "room not found")
			return
		}
		s.logger.Error("room lookup failed", "room_id", *req.RoomID, "error", err)
		writeInternalError(w, "failed to create device")
		return
	}
	if rm.UserID != userIDFrom(r) {
		writeError(w, http.StatusForbidden, ErrCodeForbidden,
			"you do not have permission to add a device to this room")
		return
	}

	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = device.TypeBinarySwitch
	}
	if !device.IsValidType(deviceType) {
		writeValidationError(w, "invalid device type")
		return
	}

	attrs := req.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	// Dimmable lights start at full brightness unless told otherwise
	if deviceType == device.TypeDimmableLight {
		if _, ok := attrs["brightness"]; !ok {
			attrs["brightness"] = 100
		}
	}

	dev := &device.Device{
		RoomID:     rm.ID,
		Name:       req.Name,
		Subtitle:   req.Subtitle,
		IconAsset:  req.IconAsset,
		DeviceType: deviceType,
		IsOn:       req.IsOn,
		Attributes: attrs,
	}
	if err := s.devices.Create(r.Context(), dev); err != nil {
		s.logger.Error("device creation failed", "error", err)
		writeInternalError(w, "failed to create device")
		return
	}

	s.logger.Info("device created", "device_id", dev.ID, "room_id", rm.ID)
	writeJSON(w, http.StatusCreated, dev)
}

// ownedDevice loads a device scoped to the caller via its room's owner.
// Devices outside the caller's rooms read as missing.
func (s *Server) ownedDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeNotFound(w, "device not found")
		return nil, false
	}

	dev, ownerID, err := s.devices.GetWithOwner(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return nil, false
		}
		s.logger.Error("device lookup failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to load device")
		return nil, false
	}
	if ownerID != userIDFrom(r) {
		writeNotFound(w, "device not found")
		return nil, false
	}
	return dev, true
}

// handleGetDevice returns one device.
// GET /api/devices/{id}/
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.ownedDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

type updateDeviceRequest struct {
	Name       *string        `json:"name"`
	Subtitle   *string        `json:"subtitle"`
	IconAsset  *string        `json:"icon_asset"`
	IsOn       *bool          `json:"is_on"`
	Attributes map[string]any `json:"attributes"`
}

// handleUpdateDevice partially updates a device. PUT is treated as a
// partial update so clients only send the fields they change; room and
// device type never change after creation.
// PUT /api/devices/{id}/
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.ownedDevice(w, r)
	if !ok {
		return
	}

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeValidationError(w, "name cannot be empty")
			return
		}
		dev.Name = *req.Name
	}
	if req.Subtitle != nil {
		dev.Subtitle = *req.Subtitle
	}
	if req.IconAsset != nil {
		dev.IconAsset = *req.IconAsset
	}
	if req.IsOn != nil {
		dev.IsOn = *req.IsOn
	}
	if req.Attributes != nil {
		dev.Attributes = req.Attributes
	}

	if err := s.devices.Update(r.Context(), dev); err != nil {
		s.logger.Error("device update failed", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to update device")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleDeleteDevice removes a device.
// DELETE /api/devices/{id}/
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.ownedDevice(w, r)
	if !ok {
		return
	}

	if err := s.devices.Delete(r.Context(), dev.ID); err != nil {
		s.logger.Error("device deletion failed", "device_id", dev.ID, "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}

	s.logger.Info("device deleted", "device_id", dev.ID, "room_id", dev.RoomID)
	w.WriteHeader(http.StatusNoContent)
}

package device

// Device type identifiers, matching the values the clients send on
// creation and render icons for.
const (
	TypeBinarySwitch  = "binarySwitch"
	TypeDimmableLight = "dimmableLight"
)

// IsValidType reports whether t is a known device type.
func IsValidType(t string) bool {
	return t == TypeBinarySwitch || t == TypeDimmableLight
}

// Device is a controllable appliance inside a room. The JSON field names
// match the shapes the mobile clients already consume.
type Device struct {
	ID         int64          `json:"id"`
	RoomID     int64          `json:"room"`
	Name       string         `json:"name"`
	Subtitle   string         `json:"subtitle"`
	IconAsset  string         `json:"icon_asset"`
	DeviceType string         `json:"device_type"`
	IsOn       bool           `json:"is_on"`
	Attributes map[string]any `json:"attributes"`
}

// Snapshot is the authoritative mutable state of a device: the power flag
// plus the free-form attribute document. It is what merge operates on and
// what room broadcasts carry.
type Snapshot struct {
	DeviceID   int64          `json:"device_id"`
	IsOn       bool           `json:"is_on"`
	Attributes map[string]any `json:"attributes"`
}

// State extracts the mutable state from a device record. The returned
// attributes map is never nil.
func (d *Device) State() Snapshot {
	attrs := d.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	return Snapshot{DeviceID: d.ID, IsOn: d.IsOn, Attributes: attrs}
}

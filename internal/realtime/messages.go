package realtime

import "encoding/json"

// command is the inbound message shape. A command is well formed only if
// device_id is an integer and attributes is a JSON object; anything else
// is dropped without a reply.
type command struct {
	DeviceID   *int64          `json:"device_id"`
	Attributes json.RawMessage `json:"attributes"`
}

// errorReply is the only error shape clients ever see, and only for
// permission denials.
type errorReply struct {
	Error string `json:"error"`
}

// parseCommand decodes an inbound frame and validates its shape. The
// returned attributes map includes is_on when present; type checking of
// individual values happens at merge time.
func parseCommand(data []byte) (deviceID int64, attrs map[string]any, ok bool) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return 0, nil, false
	}
	if cmd.DeviceID == nil || cmd.Attributes == nil || string(cmd.Attributes) == "null" {
		return 0, nil, false
	}

	attrs = map[string]any{}
	if err := json.Unmarshal(cmd.Attributes, &attrs); err != nil {
		// attributes present but not an object
		return 0, nil, false
	}
	return *cmd.DeviceID, attrs, true
}

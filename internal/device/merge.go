package device

import "reflect"

// powerKey is the one state key with its own storage column and type rule.
const powerKey = "is_on"

// Merge applies a partial state document to the current device state and
// returns the resulting state plus whether anything changed.
//
// The incoming document only needs to carry the keys it wants to change;
// everything else is preserved. An is_on entry must be a JSON boolean, and
// a document that violates that is rejected whole with ErrMalformedState
// rather than partially applied. Attribute values are compared by deep
// equality, so re-sending the current state is a no-op and reports no
// change. The returned snapshot owns a fresh attributes map, leaving the
// caller's inputs untouched.
func Merge(current Snapshot, incoming map[string]any) (Snapshot, bool, error) {
	// Validate before touching anything so a bad document has no effect
	if raw, ok := incoming[powerKey]; ok {
		if _, isBool := raw.(bool); !isBool {
			return Snapshot{}, false, ErrMalformedState
		}
	}

	next := Snapshot{
		DeviceID:   current.DeviceID,
		IsOn:       current.IsOn,
		Attributes: make(map[string]any, len(current.Attributes)),
	}
	for k, v := range current.Attributes {
		next.Attributes[k] = v
	}

	changed := false
	for k, v := range incoming {
		if k == powerKey {
			isOn := v.(bool)
			if isOn != next.IsOn {
				next.IsOn = isOn
				changed = true
			}
			continue
		}
		prev, exists := next.Attributes[k]
		if !exists || !reflect.DeepEqual(prev, v) {
			next.Attributes[k] = v
			changed = true
		}
	}

	return next, changed, nil
}

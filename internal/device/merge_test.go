package device

import (
	"errors"
	"reflect"
	"testing"
)

func TestMergePowerFlag(t *testing.T) {
	current := Snapshot{DeviceID: 1, IsOn: false, Attributes: map[string]any{}}

	next, changed, err := Merge(current, map[string]any{"is_on": true})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !changed {
		t.Error("flipping the power flag should report a change")
	}
	if !next.IsOn {
		t.Error("expected is_on to become true")
	}
}

func TestMergeIdempotent(t *testing.T) {
	current := Snapshot{
		DeviceID:   1,
		IsOn:       true,
		Attributes: map[string]any{"brightness": float64(80)},
	}

	// Re-sending the exact current state must not report a change
	next, changed, err := Merge(current, map[string]any{
		"is_on":      true,
		"brightness": float64(80),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if changed {
		t.Error("identical state should not report a change")
	}
	if next.IsOn != current.IsOn {
		t.Error("is_on altered by no-op merge")
	}
	if !reflect.DeepEqual(next.Attributes, current.Attributes) {
		t.Errorf("attributes altered by no-op merge: %v", next.Attributes)
	}
}

func TestMergeEmptyDocument(t *testing.T) {
	current := Snapshot{
		DeviceID:   1,
		IsOn:       true,
		Attributes: map[string]any{"brightness": float64(50)},
	}

	next, changed, err := Merge(current, map[string]any{})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if changed {
		t.Error("empty document should be a no-op")
	}
	if !reflect.DeepEqual(next.Attributes, current.Attributes) {
		t.Errorf("attributes = %v, want %v", next.Attributes, current.Attributes)
	}
}

func TestMergePartialPreservesOtherKeys(t *testing.T) {
	current := Snapshot{
		DeviceID: 1,
		IsOn:     true,
		Attributes: map[string]any{
			"brightness": float64(50),
			"color":      "warm",
		},
	}

	next, changed, err := Merge(current, map[string]any{"brightness": float64(90)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !changed {
		t.Error("changing brightness should report a change")
	}
	if next.Attributes["brightness"] != float64(90) {
		t.Errorf("brightness = %v, want 90", next.Attributes["brightness"])
	}
	if next.Attributes["color"] != "warm" {
		t.Errorf("color = %v, want warm (untouched keys must survive)", next.Attributes["color"])
	}
	if !next.IsOn {
		t.Error("is_on must survive a merge that does not mention it")
	}
}

func TestMergeAddsNewKey(t *testing.T) {
	current := Snapshot{DeviceID: 1, IsOn: false, Attributes: map[string]any{}}

	next, changed, err := Merge(current, map[string]any{"brightness": float64(100)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !changed {
		t.Error("introducing a new key should report a change")
	}
	if next.Attributes["brightness"] != float64(100) {
		t.Errorf("brightness = %v, want 100", next.Attributes["brightness"])
	}
}

func TestMergeNonBooleanPowerFlag(t *testing.T) {
	current := Snapshot{
		DeviceID:   1,
		IsOn:       false,
		Attributes: map[string]any{"brightness": float64(10)},
	}

	// The whole document is rejected, including otherwise-valid keys
	cases := []any{"on", float64(1), nil, []any{true}}
	for _, bad := range cases {
		_, _, err := Merge(current, map[string]any{
			"is_on":      bad,
			"brightness": float64(99),
		})
		if !errors.Is(err, ErrMalformedState) {
			t.Errorf("is_on=%v: expected ErrMalformedState, got %v", bad, err)
		}
	}
}

func TestMergeDoesNotMutateCurrent(t *testing.T) {
	current := Snapshot{
		DeviceID:   1,
		IsOn:       false,
		Attributes: map[string]any{"brightness": float64(20)},
	}

	_, _, err := Merge(current, map[string]any{"is_on": true, "brightness": float64(70)})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if current.IsOn {
		t.Error("merge mutated the caller's is_on")
	}
	if current.Attributes["brightness"] != float64(20) {
		t.Errorf("merge mutated the caller's attributes: %v", current.Attributes)
	}
}

func TestMergeDeepEqualityOnNestedValues(t *testing.T) {
	current := Snapshot{
		DeviceID:   1,
		IsOn:       true,
		Attributes: map[string]any{"color": map[string]any{"r": float64(255), "g": float64(200), "b": float64(120)}},
	}

	// Structurally identical nested value is not a change
	_, changed, err := Merge(current, map[string]any{
		"color": map[string]any{"r": float64(255), "g": float64(200), "b": float64(120)},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if changed {
		t.Error("structurally equal nested value should not report a change")
	}

	_, changed, err = Merge(current, map[string]any{
		"color": map[string]any{"r": float64(0), "g": float64(200), "b": float64(120)},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !changed {
		t.Error("differing nested value should report a change")
	}
}

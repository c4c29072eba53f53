package handlearena

import "testing"

func TestCreateAndLookupRoundTrip(t *testing.T) {
	a := New()
	id := a.Create()

	if _, err := a.Buffer(id); err != nil {
		t.Fatalf("Buffer(%d) error: %v", id, err)
	}
	if _, err := a.Waits(id); err != nil {
		t.Fatalf("Waits(%d) error: %v", id, err)
	}
	if _, err := a.Mode(id); err != nil {
		t.Fatalf("Mode(%d) error: %v", id, err)
	}
	if _, err := a.Handle(id); err != nil {
		t.Fatalf("Handle(%d) error: %v", id, err)
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}
}

func TestUnknownIDReturnsError(t *testing.T) {
	a := New()
	if _, err := a.Buffer(999); err == nil {
		t.Fatalf("expected error for unknown id")
	}
}

func TestRemoveDropsEntry(t *testing.T) {
	a := New()
	id := a.Create()
	a.Remove(id)
	if a.Len() != 0 {
		t.Fatalf("Len() = %d after Remove, want 0", a.Len())
	}
	if _, err := a.Buffer(id); err == nil {
		t.Fatalf("expected error after Remove")
	}
}

func TestSetCarryAndClearCarryInvariant(t *testing.T) {
	h := &HandleState{}
	h.SetCarry([]rune("echo b\n"), true)
	if !h.InputPending || h.CarryBuffer == nil {
		t.Fatalf("SetCarry did not establish InputPending/CarryBuffer invariant")
	}
	if h.CarryRemaining != len("echo b\n") {
		t.Fatalf("CarryRemaining = %d, want %d", h.CarryRemaining, len("echo b\n"))
	}

	h.ClearCarry()
	if h.InputPending || h.CarryBuffer != nil {
		t.Fatalf("ClearCarry left InputPending/CarryBuffer set")
	}
}

func TestSetCarryEmptyLeavesInputPendingFalse(t *testing.T) {
	h := &HandleState{}
	h.SetCarry(nil, false)
	if h.InputPending {
		t.Fatalf("InputPending should be false for empty carry content")
	}
}

package mapfn

import (
	"testing"

	"serialcore-go/errcode"
	"serialcore-go/types"
)

func TestMapThroughDispatch(t *testing.T) {
	h := NewHandle(Range{InMin: 0, InMax: 100, OutMin: 0, OutMax: 1000})
	if h.Kind() != string(types.KindMapFn) {
		t.Fatalf("kind = %q", h.Kind())
	}

	got, err := h.Invoke(OpMap, uint16(50))
	if err != nil || got.(uint16) != 500 {
		t.Fatalf("map(50) = %v,%v, want 500", got, err)
	}

	// Plain ints are accepted for console-style callers.
	got, err = h.Invoke(OpMap, 25)
	if err != nil || got.(uint16) != 250 {
		t.Fatalf("map(25) = %v,%v, want 250", got, err)
	}
}

func TestClampAndLerp(t *testing.T) {
	h := NewHandle(Range{InMin: 10, InMax: 20, OutMin: 100, OutMax: 200})

	got, err := h.Invoke(OpClamp, uint16(5))
	if err != nil || got.(uint16) != 10 {
		t.Fatalf("clamp(5) = %v,%v, want 10", got, err)
	}
	got, err = h.Invoke(OpLerp, uint16(0x8000))
	if err != nil || got.(uint16) != 150 {
		t.Fatalf("lerp(mid) = %v,%v, want 150", got, err)
	}
}

func TestUnwiredAndInvalidArguments(t *testing.T) {
	h := NewHandle(Range{})
	if _, err := h.Invoke(OpScale, uint16(1)); err != errcode.Unsupported {
		t.Fatalf("scale err = %v, want unsupported", err)
	}
	if _, err := h.Invoke(OpMap); err != errcode.InvalidPayload {
		t.Fatalf("missing arg err = %v, want invalid_payload", err)
	}
	if _, err := h.Invoke(OpMap, "mid"); err != errcode.InvalidPayload {
		t.Fatalf("string arg err = %v, want invalid_payload", err)
	}
}

package source

import (
	"testing"
)

func TestInternerSameIDForSameText(t *testing.T) {
	in := NewInterner()

	a := in.Intern("printf")
	b := in.Intern("printf")
	if a != b {
		t.Errorf("expected same ID for same text, got %d and %d", a, b)
	}
	if a == NoStringID {
		t.Errorf("expected non-zero ID for %q", "printf")
	}
}

func TestInternerDistinctIDs(t *testing.T) {
	in := NewInterner()

	a := in.Intern("foo")
	b := in.Intern("bar")
	if a == b {
		t.Errorf("expected distinct IDs, got %d for both", a)
	}
}

func TestInternerLookup(t *testing.T) {
	in := NewInterner()

	id := in.Intern("while")
	got, ok := in.Lookup(id)
	if !ok {
		t.Fatalf("Lookup(%d) reported unknown ID", id)
	}
	if got != "while" {
		t.Errorf("Lookup(%d) = %q, want %q", id, got, "while")
	}

	if _, ok := in.Lookup(StringID(9999)); ok {
		t.Error("expected Lookup of unknown ID to fail")
	}
}

func TestInternerBytesAndStringAgree(t *testing.T) {
	in := NewInterner()

	a := in.InternBytes([]byte("EMPTY"))
	b := in.Intern("EMPTY")
	if a != b {
		t.Errorf("InternBytes and Intern disagree: %d vs %d", a, b)
	}
}

func TestInternerEmptyStringIsNoStringID(t *testing.T) {
	in := NewInterner()
	if got := in.Intern(""); got != NoStringID {
		t.Errorf("Intern(\"\") = %d, want NoStringID", got)
	}
	if in.Len() != 1 {
		t.Errorf("fresh interner Len() = %d, want 1", in.Len())
	}
}

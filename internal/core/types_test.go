package core

import "testing"

func TestVersionSetWithoutRemovesByRepresentative(t *testing.T) {
	vs := NewVersionSet([]FileGroup{
		NewFileGroup("h1", []string{"a"}, false, true),
		NewFileGroup("h2", []string{"b"}, false, true),
	})

	got := vs.Without("a")
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", got.Len())
	}
	if got.Groups[0].Representative() != "b" {
		t.Errorf("remaining group = %q, want b", got.Groups[0].Representative())
	}
}

// TestVersionSetWithoutPreservesHashCollisionSibling guards against the
// data-loss bug where two distinct FileGroups produced by a verified hash
// collision (grouper's byte-compare fallback) share one FileHash: removing
// by hash would drop both groups when only one was actually consumed.
func TestVersionSetWithoutPreservesHashCollisionSibling(t *testing.T) {
	vs := NewVersionSet([]FileGroup{
		NewFileGroup("h1", []string{"a"}, false, true),  // collision split 1
		NewFileGroup("h1", []string{"b"}, false, true),  // collision split 2, same hash
		NewFileGroup("h2", []string{"c"}, false, true),
	})

	got := vs.Without("a", "c")
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (collision sibling must survive)", got.Len())
	}
	if got.Groups[0].Representative() != "b" {
		t.Errorf("remaining group = %q, want b", got.Groups[0].Representative())
	}
}

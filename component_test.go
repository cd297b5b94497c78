package conveyor

import "testing"

func TestComponentTypeIDFromName_Deterministic(t *testing.T) {
	a := ComponentTypeIDFromName("Position")
	b := ComponentTypeIDFromName("Position")
	if a != b {
		t.Fatalf("expected deterministic hash, got %d and %d", a, b)
	}
}

func TestComponentTypeIDFromName_DistinctNames(t *testing.T) {
	a := ComponentTypeIDFromName("Position")
	b := ComponentTypeIDFromName("Velocity")
	if a == b {
		t.Fatalf("expected distinct hashes for distinct names, got %d for both", a)
	}
}

func TestComponentTypeIDFromName_EmptyString(t *testing.T) {
	id := ComponentTypeIDFromName("")
	if uint64(id) != fnvOffsetBasis {
		t.Fatalf("expected empty string to hash to the offset basis, got %d", id)
	}
}

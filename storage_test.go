package conveyor

import "testing"

func TestWorld_SpawnEmpty(t *testing.T) {
	w := NewWorld()
	e, err := w.SpawnEmpty()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.IsValid() {
		t.Fatalf("expected a valid entity")
	}
	if w.EntityCount() != 1 {
		t.Fatalf("expected entity count 1, got %d", w.EntityCount())
	}
}

func TestWorld_SpawnWithData(t *testing.T) {
	w := NewWorld()
	pos := ComponentTypeIDFromName("Position")
	vel := ComponentTypeIDFromName("Velocity")

	e, err := w.SpawnWithData(
		[]ComponentTypeId{pos, vel},
		[][]byte{[]byte("pos-bytes"), []byte("vel-bytes")},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table, row := w.EntityRow(e)
	if row < 0 {
		t.Fatalf("expected entity to be found in its archetype")
	}
	col := table.Column(pos)
	if string(col.get(row)) != "pos-bytes" {
		t.Fatalf("expected position data to survive spawn, got %q", col.get(row))
	}
}

func TestWorld_SpawnWithData_MismatchedSlices(t *testing.T) {
	w := NewWorld()
	pos := ComponentTypeIDFromName("Position")
	_, err := w.SpawnWithData([]ComponentTypeId{pos}, [][]byte{})
	if err == nil {
		t.Fatalf("expected an error for mismatched slice lengths")
	}
}

func TestWorld_Despawn(t *testing.T) {
	w := NewWorld()
	pos := ComponentTypeIDFromName("Position")
	e, _ := w.SpawnWithData([]ComponentTypeId{pos}, [][]byte{[]byte("p")})

	if !w.Despawn(e) {
		t.Fatalf("expected despawn to succeed")
	}
	if w.Despawn(e) {
		t.Fatalf("expected second despawn of the same entity to be a no-op")
	}
	if _, ok := w.ArchetypeOf(e); ok {
		t.Fatalf("expected despawned entity to have no archetype")
	}
}

func TestWorld_MatchingArchetypes(t *testing.T) {
	w := NewWorld()
	pos := ComponentTypeIDFromName("Position")
	vel := ComponentTypeIDFromName("Velocity")
	tag := ComponentTypeIDFromName("Tag")

	w.Spawn([]ComponentTypeId{pos})
	w.Spawn([]ComponentTypeId{pos, vel})
	w.Spawn([]ComponentTypeId{pos, vel, tag})

	matches := w.MatchingArchetypes([]ComponentTypeId{pos, vel})
	if len(matches) != 2 {
		t.Fatalf("expected 2 archetypes matching {pos,vel}, got %d", len(matches))
	}
}

func TestWorld_EntityAllocator_Monotonic(t *testing.T) {
	w := NewWorld()
	first, _ := w.SpawnEmpty()
	second, _ := w.SpawnEmpty()
	if second <= first {
		t.Fatalf("expected monotonically increasing entity ids, got %d then %d", first, second)
	}
	w.Despawn(second)
	third, _ := w.SpawnEmpty()
	if third == second {
		t.Fatalf("expected ids to never be reused after despawn")
	}
}

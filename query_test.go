package conveyor

import "testing"

func TestQueryDescriptor_ConflictsWith_BothRead(t *testing.T) {
	pos := ComponentTypeIDFromName("Position")
	a := NewQueryDescriptor().Read(pos)
	b := NewQueryDescriptor().Read(pos)
	if a.ConflictsWith(b) {
		t.Fatalf("two readers of the same type should not conflict")
	}
}

func TestQueryDescriptor_ConflictsWith_ReadVsWrite(t *testing.T) {
	pos := ComponentTypeIDFromName("Position")
	a := NewQueryDescriptor().Read(pos)
	b := NewQueryDescriptor().Write(pos)
	if !a.ConflictsWith(b) {
		t.Fatalf("a reader and a writer of the same type should conflict")
	}
	if !b.ConflictsWith(a) {
		t.Fatalf("conflict relation should be symmetric")
	}
}

func TestQueryDescriptor_ConflictsWith_WriteVsWrite(t *testing.T) {
	pos := ComponentTypeIDFromName("Position")
	a := NewQueryDescriptor().Write(pos)
	b := NewQueryDescriptor().Write(pos)
	if !a.ConflictsWith(b) {
		t.Fatalf("two writers of the same type should conflict")
	}
}

func TestQueryDescriptor_ConflictsWith_DifferentTypes(t *testing.T) {
	pos := ComponentTypeIDFromName("Position")
	vel := ComponentTypeIDFromName("Velocity")
	a := NewQueryDescriptor().Write(pos)
	b := NewQueryDescriptor().Write(vel)
	if a.ConflictsWith(b) {
		t.Fatalf("writers of different types should not conflict")
	}
}

func TestQueryDescriptor_RequiredTypes_ExcludesOptionals(t *testing.T) {
	pos := ComponentTypeIDFromName("Position")
	vel := ComponentTypeIDFromName("Velocity")
	tag := ComponentTypeIDFromName("Tag")
	q := NewQueryDescriptor().Read(pos).Write(vel).Optional(tag)

	required := q.RequiredTypes()
	for _, id := range required {
		if id == tag {
			t.Fatalf("optional type should not appear in RequiredTypes")
		}
	}
	if len(required) != 2 {
		t.Fatalf("expected 2 required types, got %d", len(required))
	}
}

func TestComputeStages_ArchitectureExample(t *testing.T) {
	// Matches the canonical three-system scenario: physics(r=Position,
	// w=Velocity), ai(r=Position, w=AIState), movement(r=Velocity,
	// w=Position). physics and ai share a stage; movement is forced into
	// its own stage because it conflicts with both.
	position := ComponentTypeIDFromName("Position")
	velocity := ComponentTypeIDFromName("Velocity")
	aiState := ComponentTypeIDFromName("AIState")

	systems := []RegisteredSystem{
		{Name: "physics", Query: NewQueryDescriptor().Read(position).Write(velocity)},
		{Name: "ai", Query: NewQueryDescriptor().Read(position).Write(aiState)},
		{Name: "movement", Query: NewQueryDescriptor().Read(velocity).Write(position)},
	}

	stages := ComputeStages(systems)
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if len(stages[0].SystemIndices) != 2 {
		t.Fatalf("expected physics and ai to share the first stage, got %v", stages[0].SystemIndices)
	}
	if len(stages[1].SystemIndices) != 1 || stages[1].SystemIndices[0] != 2 {
		t.Fatalf("expected movement alone in the second stage, got %v", stages[1].SystemIndices)
	}
}

func TestComputeStages_Empty(t *testing.T) {
	stages := ComputeStages(nil)
	if len(stages) != 0 {
		t.Fatalf("expected no stages for no systems, got %d", len(stages))
	}
}

func TestComputeStages_NonConflictingShareStage(t *testing.T) {
	position := ComponentTypeIDFromName("Position")
	velocity := ComponentTypeIDFromName("Velocity")
	systems := []RegisteredSystem{
		{Name: "a", Query: NewQueryDescriptor().Read(position)},
		{Name: "b", Query: NewQueryDescriptor().Read(velocity)},
	}
	stages := ComputeStages(systems)
	if len(stages) != 1 {
		t.Fatalf("expected systems with no conflict to share one stage, got %d", len(stages))
	}
}

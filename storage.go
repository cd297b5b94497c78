package conveyor

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
)

// World is the coordinator's canonical archetype-based store: the single
// source of truth for every entity's components during a tick. It is not
// safe for concurrent use; the coordinator's tick pipeline owns it
// exclusively for the duration of a tick (see the concurrency notes in
// SPEC_FULL.md §5).
type World struct {
	allocator *EntityAllocator
	types     *typeIndex

	archetypes      map[ArchetypeId]*ArchetypeTable
	entityArchetype map[Entity]ArchetypeId
	typeSetToID     map[string]ArchetypeId
}

// NewWorld returns an empty World with its own entity allocator.
func NewWorld() *World {
	return &World{
		allocator:       newEntityAllocator(),
		types:           newTypeIndex(),
		archetypes:      make(map[ArchetypeId]*ArchetypeTable),
		entityArchetype: make(map[Entity]ArchetypeId),
		typeSetToID:     make(map[string]ArchetypeId),
	}
}

// typeSetKey builds a stable map key for a sorted type set, used to avoid
// recomputing the archetype hash on every lookup.
func typeSetKey(sorted []ComponentTypeId) string {
	b := make([]byte, 0, len(sorted)*8)
	for _, id := range sorted {
		v := uint64(id)
		b = append(b, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32), byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return string(b)
}

// getOrCreateArchetype returns the table for exactly this set of component
// types, creating it (and registering its bit mask) if it doesn't exist
// yet. Archetype tables are never removed once created.
func (w *World) getOrCreateArchetype(componentTypes []ComponentTypeId) (*ArchetypeTable, error) {
	sorted := sortedTypeSet(componentTypes)
	key := typeSetKey(sorted)
	if id, ok := w.typeSetToID[key]; ok {
		return w.archetypes[id], nil
	}
	m, err := w.types.maskFor(sorted)
	if err != nil {
		return nil, fmt.Errorf("conveyor: failed to build archetype mask: %w", err)
	}
	id := archetypeIDFromTypes(sorted)
	table, exists := w.archetypes[id]
	if !exists {
		table = newArchetypeTable(id, sorted, m)
		w.archetypes[id] = table
	}
	w.typeSetToID[key] = id
	return table, nil
}

// SpawnEmpty allocates a new entity with no components, placed in the
// zero-type-set archetype.
func (w *World) SpawnEmpty() (Entity, error) {
	return w.SpawnWithData(nil, nil)
}

// Spawn allocates a new entity carrying the given component types, each
// initialized to a zero-length blob. Useful when a caller wants to
// reserve a shape before the first shard merge fills it in.
func (w *World) Spawn(componentTypes []ComponentTypeId) (Entity, error) {
	blobs := make([][]byte, len(componentTypes))
	return w.SpawnWithData(componentTypes, blobs)
}

// SpawnWithData allocates a new entity carrying componentData, one blob
// per entry in componentTypes, in matching order. Returns an error if the
// slice lengths disagree — the caller supplied a malformed spawn request.
func (w *World) SpawnWithData(componentTypes []ComponentTypeId, componentData [][]byte) (Entity, error) {
	if len(componentTypes) != len(componentData) {
		return InvalidEntity, SpawnMismatchError{TypeCount: len(componentTypes), DataCount: len(componentData)}
	}
	table, err := w.getOrCreateArchetype(componentTypes)
	if err != nil {
		return InvalidEntity, err
	}
	// Re-order the incoming blobs into the archetype's canonical column
	// order, since the caller's componentTypes slice need not be sorted.
	ordered := make([][]byte, len(table.TypeSet))
	for i, t := range componentTypes {
		col, ok := table.ColumnIndex(t)
		if !ok {
			panic(bark.AddTrace(fmt.Errorf("conveyor: component type %d missing from its own archetype", t)))
		}
		ordered[col] = componentData[i]
	}

	e := w.allocator.Allocate()
	table.push(e, ordered)
	w.entityArchetype[e] = table.ID
	return e, nil
}

// Despawn removes entity from its archetype. Reports whether the entity
// was found; despawning an unknown or already-despawned entity is a no-op.
func (w *World) Despawn(e Entity) bool {
	id, ok := w.entityArchetype[e]
	if !ok {
		return false
	}
	table := w.archetypes[id]
	removed := table.swapRemove(e)
	if removed {
		delete(w.entityArchetype, e)
	}
	return removed
}

// ArchetypeOf returns the ArchetypeId entity e currently belongs to.
func (w *World) ArchetypeOf(e Entity) (ArchetypeId, bool) {
	id, ok := w.entityArchetype[e]
	return id, ok
}

// Archetype returns the table for id, or nil if it has never been created.
func (w *World) Archetype(id ArchetypeId) *ArchetypeTable {
	return w.archetypes[id]
}

// Archetypes returns every archetype table the world has ever created, in
// no particular order.
func (w *World) Archetypes() []*ArchetypeTable {
	out := make([]*ArchetypeTable, 0, len(w.archetypes))
	for _, t := range w.archetypes {
		out = append(out, t)
	}
	return out
}

// MatchingArchetypes returns every archetype table whose type set is a
// superset of required.
func (w *World) MatchingArchetypes(required []ComponentTypeId) []*ArchetypeTable {
	requiredMask, err := w.types.maskFor(required)
	if err != nil {
		return nil
	}
	out := make([]*ArchetypeTable, 0)
	for _, t := range w.archetypes {
		if t.Mask().ContainsAll(requiredMask) {
			out = append(out, t)
		}
	}
	return out
}

// EntityCount returns the number of entities the allocator has ever handed
// out (including despawned ones, since ids are never reused).
func (w *World) EntityCount() uint64 {
	return w.allocator.Count()
}

// ArchetypeCount returns the number of distinct archetype tables created.
func (w *World) ArchetypeCount() int {
	return len(w.archetypes)
}

// EntityRow locates entity e's row within its current archetype table.
// Returns -1 if e isn't known to the world.
func (w *World) EntityRow(e Entity) (*ArchetypeTable, int) {
	id, ok := w.entityArchetype[e]
	if !ok {
		return nil, -1
	}
	table := w.archetypes[id]
	return table, table.EntityRow(e)
}

// ColumnIndex resolves the column position of component type id within
// entity e's current archetype.
func (w *World) ColumnIndex(e Entity, id ComponentTypeId) (int, bool) {
	table, row := w.EntityRow(e)
	if row < 0 {
		return 0, false
	}
	return table.ColumnIndex(id)
}

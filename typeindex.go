package conveyor

import (
	"github.com/TheBitDrifter/mask"
)

// archetypeMask is the bitset used to test archetype type-set membership,
// backed by mask.Mask256's fixed 256 bits. Query conflict tests do not use
// it; QueryDescriptor.ConflictsWith compares the type slices directly.
type archetypeMask = mask.Mask256

// maxTrackedComponentTypes bounds how many distinct ComponentTypeId values
// a single running coordinator can distinguish, fixed by mask.Mask256's
// width.
const maxTrackedComponentTypes = 256

// typeIndex assigns each ComponentTypeId a small sequential bit position
// the first time it is observed, mirroring the teacher's
// table.Schema.RowIndexFor pattern but keyed by hash instead of Go type.
type typeIndex struct {
	bitOf map[ComponentTypeId]uint32
	next  uint32
}

func newTypeIndex() *typeIndex {
	return &typeIndex{bitOf: make(map[ComponentTypeId]uint32)}
}

// bitFor returns the bit position for id, registering it if unseen.
func (t *typeIndex) bitFor(id ComponentTypeId) (uint32, error) {
	if bit, ok := t.bitOf[id]; ok {
		return bit, nil
	}
	if t.next >= maxTrackedComponentTypes {
		return 0, ComponentLimitError{Limit: maxTrackedComponentTypes}
	}
	bit := t.next
	t.bitOf[id] = bit
	t.next++
	return bit, nil
}

// maskFor builds the Mask256 for a set of component types, registering any
// unseen types along the way.
func (t *typeIndex) maskFor(ids []ComponentTypeId) (mask.Mask256, error) {
	var m mask.Mask256
	for _, id := range ids {
		bit, err := t.bitFor(id)
		if err != nil {
			return mask.Mask256{}, err
		}
		m.Mark(bit)
	}
	return m, nil
}

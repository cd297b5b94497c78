package conveyor

import "fmt"

// SpawnMismatchError reports that a spawn request's component type and
// data slices disagreed in length, per SPEC_FULL.md §4.6's supplemental
// three-way parity check.
type SpawnMismatchError struct {
	TypeCount int
	DataCount int
}

func (e SpawnMismatchError) Error() string {
	return fmt.Sprintf("spawn request has %d component types but %d data blobs", e.TypeCount, e.DataCount)
}

// ComponentLimitError reports that a world has already tracked the
// maximum number of distinct component types a Mask256-backed archetype
// mask can represent.
type ComponentLimitError struct {
	Limit int
}

func (e ComponentLimitError) Error() string {
	return fmt.Sprintf("cannot track more than %d distinct component types", e.Limit)
}

// UnknownSystemError reports an unregister naming a system, or an
// instance of a known system, that the registry has no record of.
type UnknownSystemError struct {
	Name       string
	InstanceID string
}

func (e UnknownSystemError) Error() string {
	return fmt.Sprintf("unknown system %q (instance %s)", e.Name, e.InstanceID)
}

package conveyor

// QueryFilterKind distinguishes the flavor of an additional QueryFilter
// attached to a QueryDescriptor.
type QueryFilterKind int

const (
	// FilterWith requires the archetype to carry a component type without
	// granting read or write access to it.
	FilterWith QueryFilterKind = iota
	// FilterWithout excludes any archetype carrying a component type.
	FilterWithout
	// FilterChanged restricts matches to entities whose component changed
	// this tick. conveyor's coordinator does not currently evaluate this
	// filter itself — it is carried through for systems that want to
	// express the intent to a future change-detection layer.
	FilterChanged
)

// QueryFilter is one extra constraint on top of a QueryDescriptor's
// reads/writes/optionals.
type QueryFilter struct {
	Kind QueryFilterKind
	Type ComponentTypeId
}

// QueryDescriptor declares a system's data access requirements: which
// component types it reads, which it writes, which it optionally reads if
// present, and any extra filters. The coordinator uses Reads/Writes to
// detect scheduling conflicts between systems (§4.2) and RequiredTypes to
// select matching archetypes.
type QueryDescriptor struct {
	Reads     []ComponentTypeId
	Writes    []ComponentTypeId
	Optionals []ComponentTypeId
	Filters   []QueryFilter
}

// NewQueryDescriptor returns an empty descriptor ready for chaining.
func NewQueryDescriptor() QueryDescriptor {
	return QueryDescriptor{}
}

// Read declares read-only access to a component type.
func (q QueryDescriptor) Read(id ComponentTypeId) QueryDescriptor {
	q.Reads = append(append([]ComponentTypeId{}, q.Reads...), id)
	return q
}

// Write declares read-write access to a component type.
func (q QueryDescriptor) Write(id ComponentTypeId) QueryDescriptor {
	q.Writes = append(append([]ComponentTypeId{}, q.Writes...), id)
	return q
}

// Optional declares access to a component type that need not be present.
func (q QueryDescriptor) Optional(id ComponentTypeId) QueryDescriptor {
	q.Optionals = append(append([]ComponentTypeId{}, q.Optionals...), id)
	return q
}

// Filter attaches an extra filter to the descriptor.
func (q QueryDescriptor) Filter(f QueryFilter) QueryDescriptor {
	q.Filters = append(append([]QueryFilter{}, q.Filters...), f)
	return q
}

// AllAccessedTypes returns every component type this query touches in any
// way: reads, writes, and optionals combined.
func (q QueryDescriptor) AllAccessedTypes() []ComponentTypeId {
	out := make([]ComponentTypeId, 0, len(q.Reads)+len(q.Writes)+len(q.Optionals))
	out = append(out, q.Reads...)
	out = append(out, q.Writes...)
	out = append(out, q.Optionals...)
	return out
}

// RequiredTypes returns the component types an archetype must carry to
// match this query — reads and writes, but not optionals.
func (q QueryDescriptor) RequiredTypes() []ComponentTypeId {
	out := make([]ComponentTypeId, 0, len(q.Reads)+len(q.Writes))
	out = append(out, q.Reads...)
	out = append(out, q.Writes...)
	return out
}

// ConflictsWith reports whether q and other cannot run in the same stage:
// true if either one's writes intersect the other's reads or writes. The
// relation is symmetric.
func (q QueryDescriptor) ConflictsWith(other QueryDescriptor) bool {
	return intersects(q.Writes, other.Reads) ||
		intersects(q.Writes, other.Writes) ||
		intersects(other.Writes, q.Reads)
}

// intersects reports whether a and b share any element.
func intersects(a, b []ComponentTypeId) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	seen := make(map[ComponentTypeId]struct{}, len(a))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := seen[id]; ok {
			return true
		}
	}
	return false
}

package conveyor

import "sort"

// SystemInfo tracks one distinct system name the coordinator knows about:
// the query that was declared on first registration, and the instance ids
// of every worker process currently backing it.
type SystemInfo struct {
	Name      string
	Query     QueryDescriptor
	Instances []string
}

// SystemRegistry tracks every known system and the worker instances
// backing it. Registration and unregistration are never applied directly
// by callers mid-tick — they go through the pending-change queue (see
// EnqueueRegister/EnqueueUnregister and DrainPending) so the registry's
// membership stays frozen for the duration of a tick.
type SystemRegistry struct {
	systems map[string]*SystemInfo
	pending []registryChange
}

// registryChange is one queued mutation, applied in FIFO order by
// DrainPending.
type registryChange struct {
	kind       registryChangeKind
	name       string
	query      QueryDescriptor
	instanceID string
}

type registryChangeKind int

const (
	changeRegister registryChangeKind = iota
	changeUnregister
)

// NewSystemRegistry returns an empty registry.
func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{systems: make(map[string]*SystemInfo)}
}

// EnqueueRegister queues a registration to be applied on the next
// DrainPending call.
func (r *SystemRegistry) EnqueueRegister(name string, query QueryDescriptor, instanceID string) {
	r.pending = append(r.pending, registryChange{
		kind: changeRegister, name: name, query: query, instanceID: instanceID,
	})
}

// EnqueueUnregister queues an unregistration to be applied on the next
// DrainPending call.
func (r *SystemRegistry) EnqueueUnregister(name, instanceID string) {
	r.pending = append(r.pending, registryChange{
		kind: changeUnregister, name: name, instanceID: instanceID,
	})
}

// DrainPending applies every queued change in FIFO order and clears the
// queue. membershipChanged reports whether the set of distinct system
// names changed — a new name appeared or a name's last instance was
// unregistered — as opposed to an instance count changing for a name
// that was already known, which doesn't affect stage computation.
// unknownUnregisters lists the (name, instanceID) pairs for any
// unregister that named a system or instance the registry had no record
// of — callers should log these as warnings, not treat them as failures.
func (r *SystemRegistry) DrainPending() (membershipChanged bool, unknownUnregisters [][2]string) {
	for _, change := range r.pending {
		switch change.kind {
		case changeRegister:
			if r.register(change.name, change.query, change.instanceID) {
				membershipChanged = true
			}
		case changeUnregister:
			found, removed := r.unregisterInstance(change.name, change.instanceID)
			if !found {
				unknownUnregisters = append(unknownUnregisters, [2]string{change.name, change.instanceID})
			} else if removed {
				membershipChanged = true
			}
		}
	}
	r.pending = nil
	return membershipChanged, unknownUnregisters
}

// register records instanceID against name, creating the SystemInfo entry
// with query if this is the first registration for that name. Subsequent
// registrations of the same name keep the original query — first
// registration wins. Reports whether a new system name was created.
func (r *SystemRegistry) register(name string, query QueryDescriptor, instanceID string) bool {
	info, ok := r.systems[name]
	added := false
	if !ok {
		info = &SystemInfo{Name: name, Query: query}
		r.systems[name] = info
		added = true
	}
	for _, existing := range info.Instances {
		if existing == instanceID {
			return added
		}
	}
	info.Instances = append(info.Instances, instanceID)
	return added
}

// unregisterInstance removes instanceID from name's instance list,
// dropping the system entirely once its instance list is empty. found
// reports whether the (name, instanceID) pair was known; removed reports
// whether the system name itself was dropped as a result.
func (r *SystemRegistry) unregisterInstance(name, instanceID string) (found, removed bool) {
	info, ok := r.systems[name]
	if !ok {
		return false, false
	}
	idx := -1
	for i, existing := range info.Instances {
		if existing == instanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, false
	}
	info.Instances = append(info.Instances[:idx], info.Instances[idx+1:]...)
	if len(info.Instances) == 0 {
		delete(r.systems, name)
		return true, true
	}
	return true, false
}

// Get returns the SystemInfo for name, if known.
func (r *SystemRegistry) Get(name string) (*SystemInfo, bool) {
	info, ok := r.systems[name]
	return info, ok
}

// Iter returns every known SystemInfo in no particular order.
func (r *SystemRegistry) Iter() []*SystemInfo {
	out := make([]*SystemInfo, 0, len(r.systems))
	for _, info := range r.systems {
		out = append(out, info)
	}
	return out
}

// SystemCount returns the number of distinct system names currently known.
func (r *SystemRegistry) SystemCount() int {
	return len(r.systems)
}

// TotalInstances returns the sum of instance counts across every known
// system.
func (r *SystemRegistry) TotalInstances() int {
	total := 0
	for _, info := range r.systems {
		total += len(info.Instances)
	}
	return total
}

// RegisteredSystems converts the registry's current membership into the
// slice shape ComputeStages expects, in a stable name-sorted order so
// stage assignment is deterministic across ticks with the same
// membership.
func (r *SystemRegistry) RegisteredSystems() []RegisteredSystem {
	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]RegisteredSystem, 0, len(names))
	for _, name := range names {
		info := r.systems[name]
		out = append(out, RegisteredSystem{Name: info.Name, Query: info.Query})
	}
	return out
}

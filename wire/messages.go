// Package wire defines the messages, subjects, and binary encoding that
// flow between the coordinator and system-worker processes over a
// broker. Every message type here is a plain, exported-field Go struct so
// it round-trips through msgpack's named-map encoding (see codec.go).
package wire

import "github.com/TheBitDrifter/conveyor"

// TickStart announces the beginning of a tick and the delta time since
// the previous one. Published on the coord.tick subject.
type TickStart struct {
	TickID uint64
	DT     float64
}

// TickAck is a worker instance's acknowledgement that it has finished
// processing a tick, published on coord.tick.done.
type TickAck struct {
	TickID     uint64
	InstanceID string
}

// EntityCreated broadcasts that the coordinator allocated a new entity,
// published on entity.create.
type EntityCreated struct {
	Entity    conveyor.Entity
	Archetype []conveyor.ComponentTypeId
}

// EntityDestroyed broadcasts that the coordinator removed an entity,
// published on entity.destroy.
type EntityDestroyed struct {
	Entity conveyor.Entity
}

// EntitySpawnRequest is a worker's request for the coordinator to create
// a new entity, published on entity.spawn_request. ComponentSizes is
// carried alongside ComponentTypes/ComponentData as a supplemental
// parity check: ComponentTypes and ComponentData must agree in length,
// and so must ComponentSizes when it is non-nil, or the coordinator
// drops the request. A nil ComponentSizes skips that part of the check.
type EntitySpawnRequest struct {
	ComponentTypes []conveyor.ComponentTypeId
	ComponentData  [][]byte
	ComponentSizes []int
}

// ComponentShard carries one component type's data for a set of
// entities, in matching order, published on component.set.<name> (by the
// coordinator, as input) and component.changed.<name> (by a worker, as
// output).
type ComponentShard struct {
	ComponentType conveyor.ComponentTypeId
	Entities      []conveyor.Entity
	Data          [][]byte
}

// ChangesDone is the per-instance sentinel marking the end of a worker's
// output for a stage, published on component.changed.<name> with the
// msg-type header set to ChangesDoneMsgType.
type ChangesDone struct {
	TickID     uint64
	InstanceID string
}

// DataDone is the coordinator's sentinel marking the end of a stage's
// input shards, published on component.set.<name> with the msg-type
// header set to DataDoneMsgType.
type DataDone struct {
	TickID uint64
}

// SystemDescriptor is a worker's registration announcement, published on
// system.register when it starts up.
type SystemDescriptor struct {
	Name       string
	Query      conveyor.QueryDescriptor
	InstanceID string
}

// SystemUnregister is a worker's departure announcement, published on
// system.unregister when it shuts down.
type SystemUnregister struct {
	Name       string
	InstanceID string
}

// SystemSchedule tells a worker instance it has been assigned to the
// current stage, published on system.schedule.<name>. ShardRange
// optionally restricts the instance to a sub-range of the archetype rows
// (for load-balancing several instances of the same system); a nil
// range means the instance should process everything.
type SystemSchedule struct {
	TickID     uint64
	ShardRange *ShardRange
}

// ShardRange is a half-open [Start, End) row range within a stage's
// shards.
type ShardRange struct {
	Start int
	End   int
}

// Heartbeat is an optional liveness/load signal a worker may publish on
// system.heartbeat between ticks.
type Heartbeat struct {
	InstanceID string
	System     string
	Load       float64
}

// QueryRequest is the message-level contract for an external
// administration gateway to ask the coordinator which entities match an
// ad-hoc query; see SPEC_FULL.md §4.7. No coordinator code in this module
// consumes it.
type QueryRequest struct {
	Query conveyor.QueryDescriptor
}

// QueryResponse answers a QueryRequest with the matching entities and
// their shards.
type QueryResponse struct {
	Entities []conveyor.Entity
	Shards   []ComponentShard
}

/*
Package conveyor provides the canonical world state and tick pipeline for a
distributed Entity-Component-System simulation.

Unlike an in-process ECS, conveyor's storage holds components as opaque
byte blobs rather than generic Go values: the coordinator that owns this
package never needs to know the concrete shape of a component, only its
name and the raw bytes workers exchange over the wire. The actual encoding
and interpretation of those bytes is left to the systems that declare
read/write access to them.

Core Concepts:

  - Entity: a monotonically increasing identifier for a simulated object.
  - ComponentTypeId: a deterministic FNV-1a hash of a component's name,
    used so independently-built worker processes agree on identity
    without sharing Go types.
  - ArchetypeTable: struct-of-arrays storage grouped by the exact set of
    component types an entity carries.
  - QueryDescriptor: a system's declared read/write/optional access,
    used both to select matching archetypes and to detect scheduling
    conflicts between systems.
  - SystemRegistry: tracks which systems are known to the coordinator and
    how many worker instances back each one.

Basic Usage:

	world := conveyor.Factory.NewWorld()

	position := conveyor.ComponentTypeIDFromName("Position")
	velocity := conveyor.ComponentTypeIDFromName("Velocity")

	entity, _ := world.SpawnWithData(
		[]conveyor.ComponentTypeId{position, velocity},
		[][]byte{posBytes, velBytes},
	)

	archetypes := world.MatchingArchetypes([]conveyor.ComponentTypeId{position})

conveyor is the storage and scheduling core beneath the coordinator/system
packages in this module; it does not itself talk to a broker.
*/
package conveyor

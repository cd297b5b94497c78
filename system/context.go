package system

import (
	"sort"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/wire"
)

// Context is handed to a system's callback once per tick it is scheduled
// for. It exposes the stage's input shards, collects the callback's
// output shards and spawn requests, and must not be retained past the
// callback's return — the runner builds a fresh one every tick and
// discards it afterwards.
type Context struct {
	TickID uint64

	inputShards   []wire.ComponentShard
	outputShards  []wire.ComponentShard
	spawnRequests []wire.EntitySpawnRequest
}

// newContext builds a Context for one tick from the shards a stage's
// drain loop collected.
func newContext(tickID uint64, inputShards []wire.ComponentShard) *Context {
	return &Context{TickID: tickID, inputShards: inputShards}
}

// Entities returns every entity referenced by any input shard, deduped
// and sorted.
func (c *Context) Entities() []conveyor.Entity {
	seen := make(map[conveyor.Entity]struct{})
	for _, shard := range c.inputShards {
		for _, e := range shard.Entities {
			seen[e] = struct{}{}
		}
	}
	out := make([]conveyor.Entity, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RawComponent returns the raw shard for componentType, if this tick's
// input included one.
func (c *Context) RawComponent(componentType conveyor.ComponentTypeId) (wire.ComponentShard, bool) {
	for _, shard := range c.inputShards {
		if shard.ComponentType == componentType {
			return shard, true
		}
	}
	return wire.ComponentShard{}, false
}

// ReadComponent decodes every row of componentType's input shard via
// decode, skipping any row whose payload fails to decode — malformed
// individual rows are dropped, not fatal to the whole read.
func ReadComponent[T any](c *Context, componentType conveyor.ComponentTypeId, decode func([]byte) (T, error)) map[conveyor.Entity]T {
	out := make(map[conveyor.Entity]T)
	shard, ok := c.RawComponent(componentType)
	if !ok {
		return out
	}
	for i, blob := range shard.Data {
		if i >= len(shard.Entities) {
			break
		}
		value, err := decode(blob)
		if err != nil {
			continue
		}
		out[shard.Entities[i]] = value
	}
	return out
}

// WriteComponent appends an output shard for componentType. Called once
// per component type a callback wants to publish changes for; calling it
// with an empty values map is a no-op, matching the original's "skip
// empty shards" behavior.
func WriteComponent[T any](c *Context, componentType conveyor.ComponentTypeId, values map[conveyor.Entity]T, encode func(T) ([]byte, error)) error {
	if len(values) == 0 {
		return nil
	}
	entities := make([]conveyor.Entity, 0, len(values))
	for e := range values {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	data := make([][]byte, len(entities))
	for i, e := range entities {
		blob, err := encode(values[e])
		if err != nil {
			return err
		}
		data[i] = blob
	}
	c.outputShards = append(c.outputShards, wire.ComponentShard{
		ComponentType: componentType,
		Entities:      entities,
		Data:          data,
	})
	return nil
}

// PublishRawShard appends an already-encoded output shard directly,
// bypassing ReadComponent/WriteComponent's typed helpers.
func (c *Context) PublishRawShard(shard wire.ComponentShard) {
	if len(shard.Entities) == 0 {
		return
	}
	c.outputShards = append(c.outputShards, shard)
}

// RequestSpawn queues an entity spawn request to be published once the
// callback returns.
func (c *Context) RequestSpawn(req wire.EntitySpawnRequest) {
	c.spawnRequests = append(c.spawnRequests, req)
}

// OutputShards returns the shards a callback has published so far this
// tick.
func (c *Context) OutputShards() []wire.ComponentShard {
	return c.outputShards
}

// SpawnRequests returns the spawn requests a callback has queued so far
// this tick.
func (c *Context) SpawnRequests() []wire.EntitySpawnRequest {
	return c.spawnRequests
}

package coordinator

import (
	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/wire"
)

// mergeShard applies one worker-published ComponentShard into world:
// for each (entity, blob) pair, resolve entity -> archetype -> column ->
// row and overwrite that row's blob. Any entity the world doesn't know
// about, or whose current archetype doesn't carry this component type,
// is silently skipped — merge never fails a tick and is idempotent by
// construction (re-applying the same shard twice yields the same state).
func mergeShard(world *conveyor.World, shard wire.ComponentShard) {
	for i, e := range shard.Entities {
		if i >= len(shard.Data) {
			break
		}
		table, row := world.EntityRow(e)
		if row < 0 {
			continue
		}
		col := table.Column(shard.ComponentType)
		if col == nil {
			continue
		}
		col.Set(row, shard.Data[i])
	}
}

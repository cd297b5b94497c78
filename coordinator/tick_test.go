package coordinator_test

import (
	"context"
	"testing"
	"time"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker/inproc"
	"github.com/TheBitDrifter/conveyor/coordinator"
	"github.com/TheBitDrifter/conveyor/system"
	"github.com/TheBitDrifter/conveyor/wire"
	"github.com/stretchr/testify/require"
)

// TestTickLoop_EndToEnd_SingleSystem exercises the full registration ->
// schedule -> data -> merge round trip: a worker doubles a counter
// component and the coordinator's world reflects the new value after one
// tick.
func TestTickLoop_EndToEnd_SingleSystem(t *testing.T) {
	brk := inproc.New()
	world := conveyor.NewWorld()
	counter := conveyor.ComponentTypeIDFromName("Counter")

	entity, err := world.SpawnWithData([]conveyor.ComponentTypeId{counter}, [][]byte{{1}})
	require.NoError(t, err)

	reg := conveyor.NewSystemRegistry()
	cfg := coordinator.DefaultConfig()
	cfg.TickRate = 1000
	cfg.MaxTicks = 1
	cfg.StageDeadline = 2 * time.Second

	loop, err := coordinator.New(cfg, world, reg, brk, nil)
	require.NoError(t, err)

	sysCfg := system.NewConfig("doubler", conveyor.NewQueryDescriptor().Write(counter))
	runner := system.NewRunner(sysCfg, brk, nil)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go runner.Run(workerCtx, func(c *system.Context) error {
		shard, ok := c.RawComponent(counter)
		if !ok {
			return nil
		}
		out := make([][]byte, len(shard.Data))
		for i, blob := range shard.Data {
			out[i] = []byte{blob[0] * 2}
		}
		c.PublishRawShard(wire.ComponentShard{ComponentType: counter, Entities: shard.Entities, Data: out})
		return nil
	})

	// Give the worker time to register before the tick loop starts.
	time.Sleep(50 * time.Millisecond)
	loop.Tick(context.Background())

	table, row := world.EntityRow(entity)
	require.GreaterOrEqual(t, row, 0)
	require.Equal(t, byte(2), table.Column(counter).Row(row)[0])
}

// Command example-system is a bundled demonstration worker: it declares
// write access to a single "Position" component and, each tick, nudges
// every entity's position forward by a fixed step. It creates its own
// in-process broker, so it exchanges no messages with a separately
// started cmd/coordinator binary, which creates another one — a real
// deployment runs each system as its own process connected to a shared
// external broker.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker/inproc"
	"github.com/TheBitDrifter/conveyor/system"
	"github.com/TheBitDrifter/conveyor/wire"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CONVEYOR")
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "example-system",
		Short: "Run the bundled example position-stepping system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSystem(v)
		},
	}

	flags := cmd.Flags()
	flags.Float64("step", 1.0, "distance to advance each entity's position per tick")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	v.BindPFlags(flags)

	return cmd
}

func runSystem(v *viper.Viper) error {
	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	log := logrus.NewEntry(logger)

	step := v.GetFloat64("step")
	position := conveyor.ComponentTypeIDFromName("Position")

	cfg := system.NewConfig("movement", conveyor.NewQueryDescriptor().Write(position))
	runner := system.NewRunner(cfg, inproc.New(), log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runner.Run(ctx, func(c *system.Context) error {
		shard, ok := c.RawComponent(position)
		if !ok {
			return nil
		}
		out := make([][]byte, len(shard.Data))
		for i, blob := range shard.Data {
			x := decodeFloat64(blob)
			out[i] = encodeFloat64(x + step)
		}
		c.PublishRawShard(wire.ComponentShard{ComponentType: position, Entities: shard.Entities, Data: out})
		return nil
	})
}

func decodeFloat64(b []byte) float64 {
	if len(b) < 8 {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

func encodeFloat64(f float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(f))
	return b
}

// Command coordinator runs the authoritative tick loop against the
// bundled in-process broker. It exists as a runnable demonstration of
// wiring a conveyor.World and conveyor.SystemRegistry together — a
// production deployment would swap broker/inproc for a real broker
// client and likely drive multiple coordinator processes' worth of
// configuration from the same flags.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker/inproc"
	"github.com/TheBitDrifter/conveyor/coordinator"
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
		Use:   "coordinator",
		Short: "Run the conveyor coordinator tick loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoordinator(v)
		},
	}

	flags := cmd.Flags()
	flags.Float64("tick-rate", 60.0, "ticks per second")
	flags.Uint64("max-ticks", 0, "stop after this many ticks (0 = unlimited)")
	flags.Duration("stage-deadline", 5*time.Second, "per-stage wall-clock deadline")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	v.BindPFlags(flags)

	return cmd
}

func runCoordinator(v *viper.Viper) error {
	level, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := logrus.New()
	logger.SetLevel(level)
	log := logrus.NewEntry(logger)

	cfg := coordinator.Config{
		TickRate:      v.GetFloat64("tick-rate"),
		MaxTicks:      v.GetUint64("max-ticks"),
		StageDeadline: v.GetDuration("stage-deadline"),
	}

	world := conveyor.NewWorld()
	registry := conveyor.NewSystemRegistry()
	brk := inproc.New()

	loop, err := coordinator.New(cfg, world, registry, brk, log)
	if err != nil {
		return fmt.Errorf("failed to start coordinator: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithField("tick_rate", cfg.TickRate).Info("starting tick loop")
	return loop.Run(ctx)
}

// Package coordinator drives the authoritative tick loop: it owns the
// canonical conveyor.World, recomputes conflict-free stages as the
// system registry changes, and runs the per-stage data-out/schedule/
// changes-in/ack barrier against a broker.
package coordinator

import "time"

// Config holds operational knobs for one coordinator process.
type Config struct {
	// TickRate is ticks per second; the tick loop sleeps the remainder of
	// 1/TickRate after each tick, or logs an overrun warning and proceeds
	// immediately if the tick itself ran long.
	TickRate float64
	// MaxTicks bounds how many ticks Run executes before returning; zero
	// means unlimited.
	MaxTicks uint64
	// StageDeadline bounds how long the coordinator waits for a stage's
	// ChangesDone/ack collection before proceeding anyway.
	StageDeadline time.Duration
}

// DefaultConfig returns the conventional tick rate (60Hz), unlimited
// ticks, and the spec's 5-second stage deadline.
func DefaultConfig() Config {
	return Config{
		TickRate:      60.0,
		MaxTicks:      0,
		StageDeadline: 5 * time.Second,
	}
}

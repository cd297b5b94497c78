// Package system is the worker-side runtime: it turns a plain callback
// function into a full system-worker process lifecycle, connecting to a
// broker, registering with the coordinator, and processing tick by tick.
package system

import "github.com/TheBitDrifter/conveyor"

// Config describes one system process: its name, its data access
// requirements, and where to find the broker.
type Config struct {
	// Name is the human-readable system name (e.g. "physics"), used to
	// build the system.schedule.<name>/component.set.<name>/
	// component.changed.<name> subjects.
	Name string
	// Query declares this system's read/write/optional access.
	Query conveyor.QueryDescriptor
	// BrokerURL is an optional override for where to find the broker;
	// concrete broker implementations interpret this string themselves.
	BrokerURL string
}

// NewConfig returns a Config for name and query with no broker override.
func NewConfig(name string, query conveyor.QueryDescriptor) Config {
	return Config{Name: name, Query: query}
}

// WithBrokerURL returns a copy of c with BrokerURL set.
func (c Config) WithBrokerURL(url string) Config {
	c.BrokerURL = url
	return c
}

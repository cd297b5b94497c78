package conveyor

import "time"

// Config is a package-level settings value, separate from coordinator-
// or system-process level config (see coordinator.Config and
// system.Config). Nothing in this module reads it: the coordinator takes
// its stage deadline from coordinator.Config.StageDeadline.
var Config config = config{
	StageDeadline: 5 * time.Second,
}

type config struct {
	// StageDeadline holds a per-stage wall-clock deadline, 5 seconds by
	// default. The coordinator package does not consult this field.
	StageDeadline time.Duration
}

// SetStageDeadline overrides the stored StageDeadline value.
func (c *config) SetStageDeadline(d time.Duration) {
	c.StageDeadline = d
}

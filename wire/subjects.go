package wire

import "fmt"

// Prefix is the fixed root of every subject this module publishes or
// subscribes to.
const Prefix = "engine"

// Fixed, non-parameterized subjects.
const (
	CoordTick       = Prefix + ".coord.tick"
	CoordTickDone   = Prefix + ".coord.tick.done"
	EntityCreate    = Prefix + ".entity.create"
	EntityDestroy   = Prefix + ".entity.destroy"
	EntitySpawnReq  = Prefix + ".entity.spawn_request"
	SystemRegister  = Prefix + ".system.register"
	SystemUnregist  = Prefix + ".system.unregister"
	SystemHeartbeat = Prefix + ".system.heartbeat"
	QueryRequestSub = Prefix + ".query.request"
	QueryResponseS  = Prefix + ".query.response"
)

// SystemScheduleSubject returns the per-system schedule subject, e.g.
// "engine.system.schedule.physics".
func SystemScheduleSubject(name string) string {
	return fmt.Sprintf("%s.system.schedule.%s", Prefix, name)
}

// ComponentSet returns the subject the coordinator publishes a system's
// input shards on, keyed by system name, e.g.
// "engine.component.set.physics".
func ComponentSet(name string) string {
	return fmt.Sprintf("%s.component.set.%s", Prefix, name)
}

// ComponentChanged returns the subject a system's workers publish their
// output shards on, keyed by system name, e.g.
// "engine.component.changed.physics".
func ComponentChanged(name string) string {
	return fmt.Sprintf("%s.component.changed.%s", Prefix, name)
}

// QueueGroup returns the NATS-style queue-group name for load-balancing
// multiple instances of the same system, e.g. "q.physics". Supplemental:
// present in the original prototype's subject builders but not required
// by any coordinator/worker code in this module; a broker implementation
// may use it to distribute SystemSchedule delivery across instances of
// the same system.
func QueueGroup(name string) string {
	return fmt.Sprintf("q.%s", name)
}

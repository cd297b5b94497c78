package system

import (
	"context"
	"fmt"
	"time"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/conveyor/broker"
	"github.com/TheBitDrifter/conveyor/wire"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// drainDeadline bounds how long a worker waits for a stage's DataDone
// sentinel before giving up and running the callback on whatever input
// shards arrived.
const drainDeadline = 5 * time.Second

// Callback is the system's own logic, invoked synchronously once per
// tick it is scheduled for. It must not retain ctx past the call.
type Callback func(ctx *Context) error

// Runner drives one system process through its full lifecycle: connect,
// register, loop on schedule, execute, publish, and on shutdown,
// unregister.
type Runner struct {
	config     Config
	instanceID string
	broker     broker.Broker
	log        *logrus.Entry
}

// NewRunner returns a Runner for config, generating a fresh instance id.
// If log is nil, a standard logrus.Entry is used.
func NewRunner(config Config, b broker.Broker, log *logrus.Entry) *Runner {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Runner{
		config:     config,
		instanceID: uuid.NewString(),
		broker:     b,
		log:        log.WithField("system", config.Name),
	}
}

// InstanceID returns this runner's generated worker instance id.
func (r *Runner) InstanceID() string {
	return r.instanceID
}

// Descriptor returns the SystemDescriptor this runner announces on
// registration.
func (r *Runner) Descriptor() wire.SystemDescriptor {
	return wire.SystemDescriptor{
		Name:       r.config.Name,
		Query:      r.config.Query,
		InstanceID: r.instanceID,
	}
}

// Run executes the full worker lifecycle until ctx is cancelled or a
// tick fails with a transport error, which Run returns: publish
// a SystemDescriptor, pre-subscribe to this system's data and schedule
// subjects, then loop receiving schedules, draining input shards,
// invoking fn, and publishing results. On exit it publishes a
// SystemUnregister best-effort.
func (r *Runner) Run(ctx context.Context, fn Callback) (err error) {
	descriptor := r.Descriptor()
	payload, err := wire.Encode(descriptor)
	if err != nil {
		return fmt.Errorf("system: failed to encode descriptor: %w", err)
	}
	if err := r.broker.Publish(wire.SystemRegister, payload); err != nil {
		return fmt.Errorf("system: failed to publish registration: %w", err)
	}
	r.log.WithField("instance_id", r.instanceID).Info("registered with coordinator")

	dataSub, err := r.broker.Subscribe(wire.ComponentSet(r.config.Name))
	if err != nil {
		return fmt.Errorf("system: failed to subscribe to data subject: %w", err)
	}
	defer dataSub.Unsubscribe()

	scheduleSub, err := r.broker.Subscribe(wire.SystemScheduleSubject(r.config.Name))
	if err != nil {
		return fmt.Errorf("system: failed to subscribe to schedule subject: %w", err)
	}
	defer scheduleSub.Unsubscribe()

	defer r.unregister()

	for {
		scheduleMsg, err := scheduleSub.Next(ctx)
		if err != nil {
			r.log.WithError(err).Info("schedule subscription ended, shutting down")
			return nil
		}

		var schedule wire.SystemSchedule
		if err := wire.Decode(scheduleMsg.Data, &schedule); err != nil {
			r.log.WithError(err).Warn("dropping malformed schedule message")
			continue
		}

		if err := r.processTick(ctx, dataSub, schedule, fn); err != nil {
			r.log.WithError(err).Error("error processing tick")
			return err
		}
	}
}

// processTick drains one stage's input shards, invokes fn, and publishes
// its results. Publish and sentinel-encode errors are returned and end
// Run; decode and callback errors are logged here and do not.
func (r *Runner) processTick(ctx context.Context, dataSub broker.Subscription, schedule wire.SystemSchedule, fn Callback) (err error) {
	shards, err := r.drainInputShards(ctx, dataSub)
	if err != nil {
		return err
	}

	sysCtx := newContext(schedule.TickID, shards)

	defer func() {
		if rec := recover(); rec != nil {
			recoveredErr := fmt.Errorf("panic in system callback: %v", rec)
			r.log.WithError(bark.AddTrace(recoveredErr)).Error("callback panicked, worker terminating")
			err = recoveredErr
			panic(rec)
		}
	}()

	if callErr := fn(sysCtx); callErr != nil {
		r.log.WithError(callErr).Warn("callback returned an error")
	}

	for _, shard := range sysCtx.OutputShards() {
		payload, encErr := wire.Encode(shard)
		if encErr != nil {
			r.log.WithError(encErr).Warn("failed to encode output shard, dropping")
			continue
		}
		subject := wire.ComponentChanged(r.componentName(shard))
		if pubErr := r.broker.Publish(subject, payload); pubErr != nil {
			return fmt.Errorf("system: failed to publish output shard: %w", pubErr)
		}
	}

	changesDone := wire.ChangesDone{TickID: schedule.TickID, InstanceID: r.instanceID}
	changesPayload, err := wire.Encode(changesDone)
	if err != nil {
		return fmt.Errorf("system: failed to encode changes-done: %w", err)
	}
	headers := map[string]string{wire.HeaderMsgType: wire.ChangesDoneMsgType}
	if err := r.broker.PublishWithHeaders(wire.ComponentChanged(r.config.Name), headers, changesPayload); err != nil {
		return fmt.Errorf("system: failed to publish changes-done: %w", err)
	}

	for _, spawn := range sysCtx.SpawnRequests() {
		spawnPayload, encErr := wire.Encode(spawn)
		if encErr != nil {
			r.log.WithError(encErr).Warn("failed to encode spawn request, dropping")
			continue
		}
		if pubErr := r.broker.Publish(wire.EntitySpawnReq, spawnPayload); pubErr != nil {
			return fmt.Errorf("system: failed to publish spawn request: %w", pubErr)
		}
	}

	ack := wire.TickAck{TickID: schedule.TickID, InstanceID: r.instanceID}
	ackPayload, err := wire.Encode(ack)
	if err != nil {
		return fmt.Errorf("system: failed to encode tick ack: %w", err)
	}
	if err := r.broker.Publish(wire.CoordTickDone, ackPayload); err != nil {
		return fmt.Errorf("system: failed to publish tick ack: %w", err)
	}
	return nil
}

// drainInputShards reads from dataSub until the DataDone sentinel
// arrives or drainDeadline elapses, decoding each non-sentinel message
// as a ComponentShard. Malformed shards are silently dropped.
func (r *Runner) drainInputShards(ctx context.Context, dataSub broker.Subscription) ([]wire.ComponentShard, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, drainDeadline)
	defer cancel()

	var shards []wire.ComponentShard
	for {
		msg, err := dataSub.Next(deadlineCtx)
		if err != nil {
			r.log.Warn("stage data drain deadline exceeded, proceeding with partial input")
			return shards, nil
		}
		if msg.Headers[wire.HeaderMsgType] == wire.DataDoneMsgType {
			return shards, nil
		}
		var shard wire.ComponentShard
		if err := wire.Decode(msg.Data, &shard); err != nil {
			r.log.WithError(err).Warn("dropping malformed input shard")
			continue
		}
		shards = append(shards, shard)
	}
}

// componentName resolves the name used for this shard's
// component.changed.<name> subject. It is always this runner's system
// name, whatever the shard's component type, matching the
// single-system-per-process lifecycle in SPEC_FULL.md §4.5.
func (r *Runner) componentName(_ wire.ComponentShard) string {
	return r.config.Name
}

// unregister publishes a best-effort SystemUnregister on shutdown.
func (r *Runner) unregister() {
	msg := wire.SystemUnregister{Name: r.config.Name, InstanceID: r.instanceID}
	payload, err := wire.Encode(msg)
	if err != nil {
		r.log.WithError(err).Warn("failed to encode unregister message")
		return
	}
	if err := r.broker.Publish(wire.SystemUnregist, payload); err != nil {
		r.log.WithError(err).Warn("failed to publish unregister message")
	}
}

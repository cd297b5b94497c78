package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker"
	"github.com/TheBitDrifter/conveyor/wire"
)

// pollInterval bounds how long nextFromAny waits on any single
// subscription before moving on to the next one.
const pollInterval = 10 * time.Millisecond

// runStage executes the four-step barrier for one stage: pre-subscribe
// to every stage system's changes subject, publish that system's input
// shards followed by DataDone, publish SystemSchedule, then drain
// ChangesDone and TickAck up to config.StageDeadline before moving on.
// Any per-instance timeout here is logged as a warning — the pipeline
// never fails or rolls back a tick because of it.
func (l *TickLoop) runStage(ctx context.Context, stageIdx int, stage conveyor.Stage, systems []conveyor.RegisteredSystem) error {
	stageCtx, cancel := context.WithTimeout(ctx, l.config.StageDeadline)
	defer cancel()

	changesSubs := make(map[string]broker.Subscription, len(stage.SystemIndices))
	expectedInstances := 0
	for _, idx := range stage.SystemIndices {
		name := systems[idx].Name
		info, ok := l.reg.Get(name)
		if !ok {
			continue
		}
		sub, err := l.brk.Subscribe(wire.ComponentChanged(name))
		if err != nil {
			return fmt.Errorf("coordinator: failed to subscribe to %s's changes subject: %w", name, err)
		}
		changesSubs[name] = sub
		expectedInstances += len(info.Instances)
	}
	defer func() {
		for _, sub := range changesSubs {
			sub.Unsubscribe()
		}
	}()

	for _, idx := range stage.SystemIndices {
		name := systems[idx].Name
		l.publishInputShards(name, systems[idx].Query)
		l.publishSystemSchedule(name)
	}

	l.collectChanges(stageCtx, changesSubs, expectedInstances, stageIdx)
	l.collectAcks(stageCtx, expectedInstances, stageIdx)
	return nil
}

// publishInputShards publishes one shard per archetype, per accessed
// component type, to name's data subject, followed by DataDone.
func (l *TickLoop) publishInputShards(name string, query conveyor.QueryDescriptor) {
	required := query.RequiredTypes()
	archetypes := l.world.MatchingArchetypes(required)
	subject := wire.ComponentSet(name)

	for _, archetype := range archetypes {
		for _, componentType := range query.AllAccessedTypes() {
			col := archetype.Column(componentType)
			if col == nil {
				continue
			}
			entities := archetype.Entities()
			data := make([][]byte, len(entities))
			for i := range entities {
				data[i] = col.Row(i)
			}
			shard := wire.ComponentShard{ComponentType: componentType, Entities: entities, Data: data}
			payload, err := wire.Encode(shard)
			if err != nil {
				l.log.WithError(err).Warn("failed to encode input shard, skipping")
				continue
			}
			if err := l.brk.Publish(subject, payload); err != nil {
				l.log.WithError(err).Warn("failed to publish input shard")
			}
		}
	}

	done := wire.DataDone{TickID: l.tickID}
	payload, err := wire.Encode(done)
	if err != nil {
		l.log.WithError(err).Warn("failed to encode data-done sentinel")
		return
	}
	headers := map[string]string{wire.HeaderMsgType: wire.DataDoneMsgType}
	if err := l.brk.PublishWithHeaders(subject, headers, payload); err != nil {
		l.log.WithError(err).Warn("failed to publish data-done sentinel")
	}
}

// publishSystemSchedule tells name's instances they've been scheduled for
// the current tick.
func (l *TickLoop) publishSystemSchedule(name string) {
	schedule := wire.SystemSchedule{TickID: l.tickID}
	payload, err := wire.Encode(schedule)
	if err != nil {
		l.log.WithError(err).Warn("failed to encode schedule message")
		return
	}
	if err := l.brk.Publish(wire.SystemScheduleSubject(name), payload); err != nil {
		l.log.WithError(err).Warn("failed to publish schedule message")
	}
}

// collectChanges reads from every stage system's changes subscription,
// merging each ComponentShard into the world as it arrives and counting
// ChangesDone sentinels, until every expected instance has reported or
// stageCtx's deadline elapses.
func (l *TickLoop) collectChanges(stageCtx context.Context, subs map[string]broker.Subscription, expectedInstances, stageIdx int) {
	if expectedInstances == 0 {
		return
	}
	received := 0
	for received < expectedInstances {
		msg, name, ok := l.nextFromAny(stageCtx, subs)
		if !ok {
			l.log.WithField("stage", stageIdx).
				WithField("received", received).
				WithField("expected", expectedInstances).
				Warn("stage deadline exceeded waiting for changes-done")
			return
		}
		if msg.Headers[wire.HeaderMsgType] == wire.ChangesDoneMsgType {
			received++
			continue
		}
		var shard wire.ComponentShard
		if err := wire.Decode(msg.Data, &shard); err != nil {
			l.log.WithField("system", name).WithError(err).Warn("dropping malformed output shard")
			continue
		}
		mergeShard(l.world, shard)
	}
}

// collectAcks waits on the coordinator's persistent coord.tick.done
// subscription for expectedInstances TickAcks matching the current tick
// id, or until stageCtx's deadline elapses. The subscription is
// established once in New, well before any publish, so a worker's ack
// (sent synchronously right after ChangesDone) is never lost to a
// not-yet-subscribed coordinator.
func (l *TickLoop) collectAcks(stageCtx context.Context, expectedInstances, stageIdx int) {
	if expectedInstances == 0 {
		return
	}

	received := 0
	for received < expectedInstances {
		msg, err := l.ackSub.Next(stageCtx)
		if err != nil {
			l.log.WithField("stage", stageIdx).
				WithField("received", received).
				WithField("expected", expectedInstances).
				Warn("stage deadline exceeded waiting for tick acks")
			return
		}
		var ack wire.TickAck
		if decErr := wire.Decode(msg.Data, &ack); decErr != nil {
			l.log.WithError(decErr).Warn("dropping malformed tick ack")
			continue
		}
		if ack.TickID != l.tickID {
			continue
		}
		received++
	}
}

// nextFromAny polls every subscription in subs in turn for one message,
// returning as soon as any yields one. This keeps the barrier simple
// without requiring a broker-level fan-in primitive; it busy-polls with a
// short per-subject timeout rather than blocking indefinitely on a single
// subject.
func (l *TickLoop) nextFromAny(ctx context.Context, subs map[string]broker.Subscription) (*broker.Message, string, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, "", false
		default:
		}
		for name, sub := range subs {
			pollCtx, cancel := context.WithTimeout(ctx, pollInterval)
			msg, err := sub.Next(pollCtx)
			cancel()
			if err == nil {
				return msg, name, true
			}
			if ctx.Err() != nil {
				return nil, "", false
			}
		}
	}
}

package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker"
	"github.com/TheBitDrifter/conveyor/wire"
	"github.com/sirupsen/logrus"
)

// TickLoop is the authoritative tick pipeline: it owns a conveyor.World
// and conveyor.SystemRegistry, recomputes conflict-free stages as the
// registry changes, and drives the per-stage barrier against a broker.
type TickLoop struct {
	config Config
	world  *conveyor.World
	reg    *conveyor.SystemRegistry
	brk    broker.Broker
	log    *logrus.Entry

	// ackSub is a coordinator-owned subscription to coord.tick.done,
	// established once at construction time rather than per-stage. A
	// worker publishes its TickAck synchronously right after ChangesDone,
	// with no suspension in between, so subscribing inside runStage (after
	// the schedule publish) would always be too late against a
	// best-effort broker — the ack would already have been dropped for
	// lack of a subscriber.
	ackSub broker.Subscription

	tickID      uint64
	stages      []conveyor.Stage
	stagesDirty bool

	mu            sync.Mutex
	pendingSpawns []wire.EntitySpawnRequest
}

// New returns a TickLoop ready to Run. It subscribes to
// system.register/system.unregister/entity.spawn_request in the
// background so those changes can be queued as they arrive, independent
// of tick timing.
func New(config Config, world *conveyor.World, reg *conveyor.SystemRegistry, brk broker.Broker, log *logrus.Entry) (*TickLoop, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ackSub, err := brk.Subscribe(wire.CoordTickDone)
	if err != nil {
		return nil, fmt.Errorf("coordinator: failed to subscribe to coord.tick.done: %w", err)
	}

	loop := &TickLoop{
		config:      config,
		world:       world,
		reg:         reg,
		brk:         brk,
		log:         log,
		ackSub:      ackSub,
		stagesDirty: true,
	}
	if err := loop.listenForRegistryChanges(); err != nil {
		return nil, err
	}
	return loop, nil
}

// listenForRegistryChanges spawns background goroutines that decode
// incoming SystemDescriptor/SystemUnregister/EntitySpawnRequest messages
// and enqueue them, to be drained atomically at the start of the next
// tick.
func (l *TickLoop) listenForRegistryChanges() error {
	registerSub, err := l.brk.Subscribe(wire.SystemRegister)
	if err != nil {
		return fmt.Errorf("coordinator: failed to subscribe to system.register: %w", err)
	}
	go l.drainLoop(registerSub, func(data []byte) {
		var descriptor wire.SystemDescriptor
		if err := wire.Decode(data, &descriptor); err != nil {
			l.log.WithError(err).Warn("dropping malformed system descriptor")
			return
		}
		l.reg.EnqueueRegister(descriptor.Name, descriptor.Query, descriptor.InstanceID)
	})

	unregisterSub, err := l.brk.Subscribe(wire.SystemUnregist)
	if err != nil {
		return fmt.Errorf("coordinator: failed to subscribe to system.unregister: %w", err)
	}
	go l.drainLoop(unregisterSub, func(data []byte) {
		var msg wire.SystemUnregister
		if err := wire.Decode(data, &msg); err != nil {
			l.log.WithError(err).Warn("dropping malformed system unregister")
			return
		}
		l.reg.EnqueueUnregister(msg.Name, msg.InstanceID)
	})

	spawnSub, err := l.brk.Subscribe(wire.EntitySpawnReq)
	if err != nil {
		return fmt.Errorf("coordinator: failed to subscribe to entity.spawn_request: %w", err)
	}
	go l.drainLoop(spawnSub, func(data []byte) {
		var req wire.EntitySpawnRequest
		if err := wire.Decode(data, &req); err != nil {
			l.log.WithError(err).Warn("dropping malformed spawn request")
			return
		}
		l.mu.Lock()
		l.pendingSpawns = append(l.pendingSpawns, req)
		l.mu.Unlock()
	})

	return nil
}

// drainLoop runs handle for every message sub ever delivers, until the
// subscription ends.
func (l *TickLoop) drainLoop(sub broker.Subscription, handle func(data []byte)) {
	ctx := context.Background()
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return
		}
		handle(msg.Data)
	}
}

// Run drives the tick loop until ctx is cancelled or config.MaxTicks
// ticks have run (when non-zero).
func (l *TickLoop) Run(ctx context.Context) error {
	tickDuration := time.Duration(float64(time.Second) / l.config.TickRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if l.config.MaxTicks != 0 && l.tickID >= l.config.MaxTicks {
			return nil
		}

		start := time.Now()
		if err := l.Tick(ctx); err != nil {
			l.log.WithError(err).Error("tick failed")
		}
		elapsed := time.Since(start)
		if remaining := tickDuration - elapsed; remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return nil
			}
		} else {
			l.log.WithField("elapsed", elapsed).WithField("budget", tickDuration).Warn("tick exceeded time budget")
		}
	}
}

// Tick runs exactly one step of the pipeline: drain pending registry and
// spawn changes, recompute stages if the registry changed, advance the
// tick id, then run every stage's barrier in order.
func (l *TickLoop) Tick(ctx context.Context) error {
	l.drainRegistryChanges()
	l.drainSpawnRequests()

	if l.stagesDirty {
		systems := l.reg.RegisteredSystems()
		l.stages = conveyor.ComputeStages(systems)
		l.stagesDirty = false
		l.log.WithField("stage_count", len(l.stages)).Info("recomputed stages")
	}

	l.tickID++
	systems := l.reg.RegisteredSystems()

	for stageIdx, stage := range l.stages {
		if err := l.runStage(ctx, stageIdx, stage, systems); err != nil {
			return err
		}
	}
	return nil
}

// drainRegistryChanges applies any queued register/unregister calls and
// marks stages dirty if the registry's membership actually changed. A
// register+unregister pair that swaps one system name for another in the
// same tick leaves the system count unchanged but still invalidates the
// cached stages, since their SystemIndices point into the old name-sorted
// RegisteredSystems() order — so membership change, not count change, is
// what DrainPending reports and what drives this.
func (l *TickLoop) drainRegistryChanges() {
	membershipChanged, unknown := l.reg.DrainPending()
	for _, pair := range unknown {
		err := conveyor.UnknownSystemError{Name: pair[0], InstanceID: pair[1]}
		l.log.WithError(err).Warn("unregister named an unknown system/instance")
	}
	if membershipChanged || l.stages == nil {
		l.stagesDirty = true
	}
}

// drainSpawnRequests atomically takes every queued EntitySpawnRequest and
// applies it to the world, broadcasting EntityCreated for each success.
// Mismatched slice lengths are logged and the request is dropped.
func (l *TickLoop) drainSpawnRequests() {
	l.mu.Lock()
	reqs := l.pendingSpawns
	l.pendingSpawns = nil
	l.mu.Unlock()

	for _, req := range reqs {
		if len(req.ComponentTypes) != len(req.ComponentData) || (req.ComponentSizes != nil && len(req.ComponentSizes) != len(req.ComponentTypes)) {
			l.log.WithField("type_count", len(req.ComponentTypes)).
				WithField("data_count", len(req.ComponentData)).
				Warn("dropping spawn request with mismatched slices")
			continue
		}
		entity, err := l.world.SpawnWithData(req.ComponentTypes, req.ComponentData)
		if err != nil {
			l.log.WithError(err).Warn("dropping spawn request")
			continue
		}
		l.broadcastEntityCreated(entity, req.ComponentTypes)
	}
}

// broadcastEntityCreated publishes an EntityCreated message on
// entity.create, best-effort.
func (l *TickLoop) broadcastEntityCreated(e conveyor.Entity, archetype []conveyor.ComponentTypeId) {
	payload, err := wire.Encode(wire.EntityCreated{Entity: e, Archetype: archetype})
	if err != nil {
		l.log.WithError(err).Warn("failed to encode entity-created message")
		return
	}
	if err := l.brk.Publish(wire.EntityCreate, payload); err != nil {
		l.log.WithError(err).Warn("failed to publish entity-created message")
	}
}

// Despawn removes entity from the world and broadcasts EntityDestroyed
// if it was found. Intended to be called between ticks (e.g. from an
// administration surface), not from within a stage.
func (l *TickLoop) Despawn(e conveyor.Entity) bool {
	removed := l.world.Despawn(e)
	if removed {
		payload, err := wire.Encode(wire.EntityDestroyed{Entity: e})
		if err != nil {
			l.log.WithError(err).Warn("failed to encode entity-destroyed message")
			return removed
		}
		if err := l.brk.Publish(wire.EntityDestroy, payload); err != nil {
			l.log.WithError(err).Warn("failed to publish entity-destroyed message")
		}
	}
	return removed
}

// TickID returns the most recently started tick's id.
func (l *TickLoop) TickID() uint64 {
	return l.tickID
}

// World returns the tick loop's canonical world store.
func (l *TickLoop) World() *conveyor.World {
	return l.world
}

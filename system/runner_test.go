package system_test

import (
	"context"
	"testing"
	"time"

	"github.com/TheBitDrifter/conveyor"
	"github.com/TheBitDrifter/conveyor/broker/inproc"
	"github.com/TheBitDrifter/conveyor/system"
	"github.com/TheBitDrifter/conveyor/wire"
)

func TestRunner_RegistersOnStart(t *testing.T) {
	b := inproc.New()
	registerSub, err := b.Subscribe(wire.SystemRegister)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	cfg := system.NewConfig("physics", conveyor.NewQueryDescriptor().Write(conveyor.ComponentTypeIDFromName("Velocity")))
	runner := system.NewRunner(cfg, b, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, func(*system.Context) error { return nil }) }()

	recvCtx, recvCancel := context.WithTimeout(context.Background(), time.Second)
	defer recvCancel()
	msg, err := registerSub.Next(recvCtx)
	if err != nil {
		t.Fatalf("expected a registration message, got error: %v", err)
	}
	var descriptor wire.SystemDescriptor
	if err := wire.Decode(msg.Data, &descriptor); err != nil {
		t.Fatalf("failed to decode descriptor: %v", err)
	}
	if descriptor.Name != "physics" {
		t.Fatalf("expected descriptor name 'physics', got %q", descriptor.Name)
	}
	if descriptor.InstanceID != runner.InstanceID() {
		t.Fatalf("expected descriptor instance id to match runner, got %q vs %q", descriptor.InstanceID, runner.InstanceID())
	}

	cancel()
	<-done
}

func TestRunner_ProcessesScheduleAndPublishesAck(t *testing.T) {
	b := inproc.New()
	cfg := system.NewConfig("physics", conveyor.NewQueryDescriptor())
	runner := system.NewRunner(cfg, b, nil)

	ackSub, _ := b.Subscribe(wire.CoordTickDone)
	changesSub, _ := b.Subscribe(wire.ComponentChanged("physics"))

	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	go runner.Run(ctx, func(c *system.Context) error {
		called <- struct{}{}
		return nil
	})

	// Give the runner a moment to subscribe before scheduling it.
	time.Sleep(20 * time.Millisecond)
	schedulePayload, _ := wire.Encode(wire.SystemSchedule{TickID: 1})
	dataDonePayload, _ := wire.Encode(wire.DataDone{TickID: 1})
	b.PublishWithHeaders(wire.ComponentSet("physics"), map[string]string{wire.HeaderMsgType: wire.DataDoneMsgType}, dataDonePayload)
	b.Publish(wire.SystemScheduleSubject("physics"), schedulePayload)

	recvCtx, recvCancel := context.WithTimeout(context.Background(), time.Second)
	defer recvCancel()

	select {
	case <-called:
	case <-recvCtx.Done():
		t.Fatalf("callback was never invoked")
	}

	ackMsg, err := ackSub.Next(recvCtx)
	if err != nil {
		t.Fatalf("expected a tick ack, got error: %v", err)
	}
	var ack wire.TickAck
	if err := wire.Decode(ackMsg.Data, &ack); err != nil {
		t.Fatalf("failed to decode ack: %v", err)
	}
	if ack.TickID != 1 {
		t.Fatalf("expected ack for tick 1, got %d", ack.TickID)
	}

	changesMsg, err := changesSub.Next(recvCtx)
	if err != nil {
		t.Fatalf("expected a changes-done message, got error: %v", err)
	}
	if changesMsg.Headers[wire.HeaderMsgType] != wire.ChangesDoneMsgType {
		t.Fatalf("expected changes-done header, got %v", changesMsg.Headers)
	}

	cancel()
}

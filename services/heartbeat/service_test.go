package heartbeat

import (
	"context"
	"testing"
	"time"

	"panelfw-go/bus"
	"panelfw-go/types"
)

func TestPublishesRetainedBeacon(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	svc := &Service{}
	if err := svc.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sub := b.NewConnection("test").Subscribe(bus.T("sys", "heartbeat"))
	select {
	case m := <-sub.Channel():
		hb, ok := m.Payload.(types.Heartbeat)
		if !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
		if hb.TSms == 0 {
			t.Fatal("timestamp missing")
		}
		if !m.Retained {
			t.Fatal("beacon must be retained")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no heartbeat published")
	}
}

func TestLateSubscriberSeesLastBeacon(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	if err := (&Service{}).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Let the first beacon land, then subscribe.
	time.Sleep(100 * time.Millisecond)
	sub := b.NewConnection("late").Subscribe(bus.T("sys", "heartbeat"))
	select {
	case m := <-sub.Channel():
		if _, ok := m.Payload.(types.Heartbeat); !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retained beacon not delivered")
	}
}

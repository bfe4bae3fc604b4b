// bus/bus_test.go
package bus

import (
	"context"
	"testing"
	"time"
)

func recv(t *testing.T, sub *Subscription, d time.Duration) *Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(d):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func expectNone(t *testing.T, sub *Subscription, d time.Duration) {
	t.Helper()
	select {
	case m := <-sub.Channel():
		t.Fatalf("unexpected message: %v", m.Payload)
	case <-time.After(d):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("config", "geo"))
	conn.Publish(conn.NewMessage(T("config", "geo"), "hello", false))

	got := recv(t, sub, 100*time.Millisecond)
	if got.Payload.(string) != "hello" {
		t.Errorf("expected payload 'hello', got %v", got.Payload)
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("config", "geo"), "persist", true))

	// Late subscriber still sees it.
	sub := conn.Subscribe(T("config", "geo"))
	got := recv(t, sub, 100*time.Millisecond)
	if got.Payload.(string) != "persist" {
		t.Errorf("expected retained payload, got %v", got.Payload)
	}

	// nil payload clears the retained slot.
	conn.Publish(conn.NewMessage(T("config", "geo"), nil, true))
	late := conn.Subscribe(T("config", "geo"))
	expectNone(t, late, 30*time.Millisecond)
}

func TestWildcardPlus(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("hal", "cap", "+", "value"))
	conn.Publish(conn.NewMessage(T("hal", "cap", "backlight", "value"), 42, false))
	conn.Publish(conn.NewMessage(T("hal", "cap", "backlight", "status"), "x", false))

	got := recv(t, sub, 100*time.Millisecond)
	if got.Payload.(int) != 42 {
		t.Errorf("expected 42, got %v", got.Payload)
	}
	expectNone(t, sub, 30*time.Millisecond)
}

func TestWildcardHash(t *testing.T) {
	b := NewBus(8)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("hal", "#"))
	conn.Publish(conn.NewMessage(T("hal", "state"), "ready", false))
	conn.Publish(conn.NewMessage(T("hal", "cap", "panel", "value"), 1, false))
	conn.Publish(conn.NewMessage(T("config", "hal"), "nope", false))

	if got := recv(t, sub, 100*time.Millisecond); got.Payload.(string) != "ready" {
		t.Fatalf("first: %v", got.Payload)
	}
	if got := recv(t, sub, 100*time.Millisecond); got.Payload.(int) != 1 {
		t.Fatalf("second: %v", got.Payload)
	}
	expectNone(t, sub, 30*time.Millisecond)
}

func TestWildcardRetainedDelivery(t *testing.T) {
	b := NewBus(8)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("config", "hal"), "a", true))
	conn.Publish(conn.NewMessage(T("config", "panel"), "b", true))

	sub := conn.Subscribe(T("config", "#"))
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		m := recv(t, sub, 100*time.Millisecond)
		got[m.Payload.(string)] = true
	}
	if !got["a"] || !got["b"] {
		t.Fatalf("missing retained messages: %v", got)
	}
}

func TestIntTokens(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("pin", 25, "level"))
	conn.Publish(conn.NewMessage(T("pin", 25, "level"), true, false))
	conn.Publish(conn.NewMessage(T("pin", 26, "level"), false, false))

	got := recv(t, sub, 100*time.Millisecond)
	if got.Payload.(bool) != true {
		t.Errorf("expected pin 25 message, got %v", got.Payload)
	}
	if got.Topic.At(1).(int) != 25 {
		t.Errorf("expected topic token 25, got %v", got.Topic.At(1))
	}
	expectNone(t, sub, 30*time.Millisecond)
}

func TestRequestReply(t *testing.T) {
	b := NewBus(4)
	server := b.NewConnection("server")
	client := b.NewConnection("client")

	ctrl := server.Subscribe(T("svc", "control", "ping"))
	go func() {
		m := <-ctrl.Channel()
		if !m.CanReply() {
			t.Error("expected reply topic")
			return
		}
		server.Reply(m, "pong", false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := client.RequestWait(ctx, client.NewMessage(T("svc", "control", "ping"), nil, false))
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	if reply.Payload.(string) != "pong" {
		t.Fatalf("expected pong, got %v", reply.Payload)
	}
}

func TestRequestWait_Timeout(t *testing.T) {
	b := NewBus(4)
	client := b.NewConnection("client")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.RequestWait(ctx, client.NewMessage(T("nobody", "home"), nil, false))
	if err != ErrNoReply {
		t.Fatalf("expected ErrNoReply, got %v", err)
	}
}

func TestQueueFullDropsOldest(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("x"))
	for i := 0; i < 5; i++ {
		conn.Publish(conn.NewMessage(T("x"), i, false))
	}
	// Oldest dropped; last two survive.
	if got := recv(t, sub, 100*time.Millisecond); got.Payload.(int) != 3 {
		t.Fatalf("expected 3, got %v", got.Payload)
	}
	if got := recv(t, sub, 100*time.Millisecond); got.Payload.(int) != 4 {
		t.Fatalf("expected 4, got %v", got.Payload)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("a", "b"))
	sub.Unsubscribe()
	conn.Publish(conn.NewMessage(T("a", "b"), 1, false))

	// Channel is closed after unsubscribe.
	if m, ok := <-sub.Channel(); ok {
		t.Fatalf("unexpected message after unsubscribe: %v", m.Payload)
	}
}

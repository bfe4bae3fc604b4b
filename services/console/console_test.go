package console

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"panelfw-go/bus"
	"panelfw-go/types"
)

type fakePort struct {
	mu       sync.Mutex
	rx       []byte
	out      []byte
	readable chan struct{}
}

var _ Port = (*fakePort)(nil)

func newFakePort() *fakePort {
	return &fakePort{readable: make(chan struct{}, 1)}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.out = append(p.out, b...)
	p.mu.Unlock()
	return len(b), nil
}

func (p *fakePort) Readable() <-chan struct{} { return p.readable }

func (p *fakePort) RecvSomeContext(ctx context.Context, buf []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := copy(buf, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) feed(s string) {
	p.mu.Lock()
	p.rx = append(p.rx, s...)
	p.mu.Unlock()
	select {
	case p.readable <- struct{}{}:
	default:
	}
}

func (p *fakePort) output() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.out)
}

func waitOutput(t *testing.T, p *fakePort, substr string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if strings.Contains(p.output(), substr) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("output %q never contained %q", p.output(), substr)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// respondOK answers every control request on a topic with an OK reply
// and records the payloads it saw.
func respondOK(t *testing.T, b *bus.Bus, topic bus.Topic) func() []any {
	t.Helper()
	conn := b.NewConnection("responder")
	sub := conn.Subscribe(topic)
	var mu sync.Mutex
	var seen []any
	go func() {
		for m := range sub.Channel() {
			mu.Lock()
			seen = append(seen, m.Payload)
			mu.Unlock()
			conn.Reply(m, types.OKReply{OK: true}, false)
		}
	}()
	return func() []any {
		mu.Lock()
		defer mu.Unlock()
		return append([]any(nil), seen...)
	}
}

func startConsole(t *testing.T) (*bus.Bus, *fakePort) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	b := bus.NewBus(8)
	port := newFakePort()
	New(b.NewConnection("console"), port).Start(ctx)
	waitOutput(t, port, "> ")
	return b, port
}

func TestToggleCommandSendsPanelControl(t *testing.T) {
	b, port := startConsole(t)
	seen := respondOK(t, b, bus.T("hal", "cap", "io", "panel", "front", "control", "toggle"))

	port.feed("toggle backlight\n")
	waitOutput(t, port, "ok")

	payloads := seen()
	if len(payloads) != 1 {
		t.Fatalf("requests = %d, want 1", len(payloads))
	}
	if p, ok := payloads[0].(types.PanelToggle); !ok || p.Function != "backlight" {
		t.Fatalf("payload = %+v", payloads[0])
	}
}

func TestLEDCommand(t *testing.T) {
	b, port := startConsole(t)
	seen := respondOK(t, b, bus.T("hal", "cap", "io", "led", "status", "control", "set"))

	port.feed("led status on\n")
	waitOutput(t, port, "ok")

	payloads := seen()
	if len(payloads) != 1 {
		t.Fatalf("requests = %d", len(payloads))
	}
	if p := payloads[0].(types.LEDSet); !p.Level {
		t.Fatalf("payload = %+v", payloads[0])
	}
}

func TestErrorReplyPrinted(t *testing.T) {
	b, port := startConsole(t)

	conn := b.NewConnection("responder")
	sub := conn.Subscribe(bus.T("hal", "cap", "io", "panel", "front", "control", "toggle"))
	go func() {
		m := <-sub.Channel()
		conn.Reply(m, types.ErrorReply{OK: false, Error: "unknown_source"}, false)
	}()

	port.feed("toggle nonsense\n")
	waitOutput(t, port, "err: unknown_source")
}

func TestShowPrintsRetainedPanelValue(t *testing.T) {
	b, port := startConsole(t)

	pub := b.NewConnection("hal")
	pub.Publish(pub.NewMessage(
		bus.T("hal", "cap", "io", "panel", "front", "value"),
		types.PanelValue{BrightnessPct: 50, Mode: types.DisplayInverse, IndicatorOn: true, Admitted: 3},
		true,
	))

	port.feed("show\n")
	waitOutput(t, port, "backlight 50% mode inverse indicator true admitted 3")
}

func TestQuotedDrawText(t *testing.T) {
	b, port := startConsole(t)
	seen := respondOK(t, b, bus.T("hal", "cap", "io", "display", "oled", "control", "draw_text"))

	port.feed("draw 1 \"BL 100%\"\n")
	waitOutput(t, port, "ok")

	payloads := seen()
	if len(payloads) != 1 {
		t.Fatalf("requests = %d", len(payloads))
	}
	p := payloads[0].(types.DisplayDrawText)
	if p.Line != 1 || p.Text != "BL 100%" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, port := startConsole(t)
	port.feed("frobnicate\n")
	waitOutput(t, port, "err: unknown command")
}

func TestHelp(t *testing.T) {
	_, port := startConsole(t)
	port.feed("help\n")
	waitOutput(t, port, "commands:")
}

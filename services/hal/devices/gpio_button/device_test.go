package gpio_button

import (
	"context"
	"sync"
	"testing"
	"time"

	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
)

type fakeIRQ struct {
	level   bool
	pull    core.Pull
	edge    core.Edge
	handler func()
	cleared bool
}

var _ core.IRQHandle = (*fakeIRQ)(nil)

func (f *fakeIRQ) Number() int { return 7 }
func (f *fakeIRQ) ConfigureInput(p core.Pull) error {
	f.pull = p
	return nil
}
func (f *fakeIRQ) ConfigureOutput(bool) error { return nil }
func (f *fakeIRQ) Set(bool)                   {}
func (f *fakeIRQ) Get() bool                  { return f.level }
func (f *fakeIRQ) Toggle()                    {}
func (f *fakeIRQ) SetIRQ(e core.Edge, h func()) error {
	f.edge, f.handler = e, h
	return nil
}
func (f *fakeIRQ) ClearIRQ() error {
	f.cleared = true
	return nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []core.Event
}

var _ core.EventEmitter = (*fakeEmitter)(nil)

func (f *fakeEmitter) Emit(ev core.Event) bool {
	f.mu.Lock()
	f.events = append(f.events, ev)
	f.mu.Unlock()
	return true
}

func (f *fakeEmitter) snapshot() []core.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Event(nil), f.events...)
}

type fakePinHandle struct{ irq *fakeIRQ }

var _ core.PinHandle = (*fakePinHandle)(nil)

func (f *fakePinHandle) AsGPIO() core.GPIOHandle { return f.irq }
func (f *fakePinHandle) AsIRQ() core.IRQHandle   { return f.irq }
func (f *fakePinHandle) AsPWM() core.PWMHandle   { return nil }

type fakeReg struct {
	irq      *fakeIRQ
	released []int
}

var _ core.ResourceRegistry = (*fakeReg)(nil)

func (f *fakeReg) ClaimPin(string, int, core.PinFunc) (core.PinHandle, error) {
	return &fakePinHandle{irq: f.irq}, nil
}
func (f *fakeReg) ReleasePin(_ string, pin int)                    { f.released = append(f.released, pin) }
func (f *fakeReg) ClaimDisplay(string) (core.DisplayHandle, error) { return nil, nil }
func (f *fakeReg) ReleaseDisplay(string)                           {}

func newTestDevice(t *testing.T, windowMs uint16) (*Device, *fakeIRQ, *fakeEmitter) {
	t.Helper()
	irq := &fakeIRQ{}
	pub := &fakeEmitter{}
	b := builder{}
	dev, err := b.Build(context.Background(), core.BuilderInput{
		ID:   "btn0",
		Type: "gpio_button",
		Params: types.ButtonParams{
			Input: types.PanelInput{Pin: 7, Pull: "up", Invert: true, DebounceMs: windowMs},
		},
		Res: core.Resources{Reg: &fakeReg{irq: irq}, Pub: pub},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return dev.(*Device), irq, pub
}

func TestBounceWithinWindowCollapsesToOneEvent(t *testing.T) {
	d, irq, pub := newTestDevice(t, 200)

	// Press at t=0: contact closes, bounces at 5 and 12 ms.
	irq.level = false // active low, inverted: pressed
	d.handleEdge(edgeSample{tick: 0, pressed: true})
	d.handleEdge(edgeSample{tick: 5, pressed: false})
	d.handleEdge(edgeSample{tick: 12, pressed: true})

	var events int
	for _, ev := range pub.snapshot() {
		if ev.IsEvent {
			events++
			if ev.EventTag != "pressed" {
				t.Fatalf("tag = %q, want pressed", ev.EventTag)
			}
		}
	}
	if events != 1 {
		t.Fatalf("got %d press events, want 1", events)
	}
}

func TestReleaseAfterWindowEmitsReleased(t *testing.T) {
	d, _, pub := newTestDevice(t, 200)

	d.handleEdge(edgeSample{tick: 0, pressed: true})
	d.handleEdge(edgeSample{tick: 350, pressed: false})

	var tags []string
	for _, ev := range pub.snapshot() {
		if ev.IsEvent {
			tags = append(tags, ev.EventTag)
		}
	}
	if len(tags) != 2 || tags[0] != "pressed" || tags[1] != "released" {
		t.Fatalf("tags = %v, want [pressed released]", tags)
	}
}

func TestRepeatedLevelIsNotReannounced(t *testing.T) {
	d, _, pub := newTestDevice(t, 100)

	d.handleEdge(edgeSample{tick: 0, pressed: true})
	d.handleEdge(edgeSample{tick: 500, pressed: true})

	var events int
	for _, ev := range pub.snapshot() {
		if ev.IsEvent {
			events++
		}
	}
	if events != 1 {
		t.Fatalf("got %d events, want 1", events)
	}
}

func TestReadVerbEmitsRetainedValue(t *testing.T) {
	d, _, pub := newTestDevice(t, 100)

	res, err := d.Control(core.CapAddr{}, "read", nil)
	if err != nil || !res.OK {
		t.Fatalf("read: res=%+v err=%v", res, err)
	}
	evs := pub.snapshot()
	if len(evs) != 1 || evs[0].IsEvent {
		t.Fatalf("want one retained value publication, got %+v", evs)
	}
	v, ok := evs[0].Payload.(types.ButtonValue)
	if !ok || v.Pressed {
		t.Fatalf("payload = %+v", evs[0].Payload)
	}
}

func TestOverflowDropsAreCounted(t *testing.T) {
	d, _, pub := newTestDevice(t, 100)

	// Worker not started: fill the edge queue, then overflow it twice.
	for i := 0; i < cap(d.edges)+2; i++ {
		d.onIRQ()
	}

	res, err := d.Control(core.CapAddr{}, "read", nil)
	if err != nil || !res.OK {
		t.Fatalf("read: res=%+v err=%v", res, err)
	}
	evs := pub.snapshot()
	v, ok := evs[len(evs)-1].Payload.(types.ButtonValue)
	if !ok {
		t.Fatalf("payload = %+v", evs[len(evs)-1].Payload)
	}
	if v.Drops != 2 {
		t.Fatalf("drops = %d, want 2", v.Drops)
	}
}

func TestInitWiresIRQAndPull(t *testing.T) {
	d, irq, _ := newTestDevice(t, 100)

	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer d.Close()

	if irq.pull != core.PullUp {
		t.Fatalf("pull = %v, want PullUp", irq.pull)
	}
	if irq.edge != core.EdgeBoth || irq.handler == nil {
		t.Fatalf("IRQ not armed: edge=%v handler=%v", irq.edge, irq.handler != nil)
	}
}

func TestISRHandoffReachesWorker(t *testing.T) {
	d, irq, pub := newTestDevice(t, 50)
	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer d.Close()

	irq.level = false // inverted: pressed
	irq.handler()

	deadline := time.After(time.Second)
	for {
		var seen bool
		for _, ev := range pub.snapshot() {
			if ev.IsEvent && ev.EventTag == "pressed" {
				seen = true
			}
		}
		if seen {
			return
		}
		select {
		case <-deadline:
			t.Fatal("no pressed event from worker")
		case <-time.After(time.Millisecond):
		}
	}
}

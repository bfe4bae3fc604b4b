//go:build !rp2040

package platform

import (
	"sync"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
)

// Host builds run against in-memory fakes so the full service stack,
// including interrupt delivery, can be exercised on a dev machine.

const hostMaxPin = 28

type hostBackend struct {
	mu   sync.Mutex
	pins map[int]*FakePin
	pwms map[int]*FakePWM
	disp *FakeDisplay
}

// New returns the host registry.
func New() *Registry { return newRegistry(&hostBackend{}) }

func (b *hostBackend) newPin(n int) (core.IRQHandle, error) {
	if n < 0 || n > hostMaxPin {
		return nil, errcode.UnknownPin
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pins == nil {
		b.pins = map[int]*FakePin{}
	}
	p, ok := b.pins[n]
	if !ok {
		p = &FakePin{n: n}
		b.pins[n] = p
	}
	return p, nil
}

func (b *hostBackend) newPWM(n int) (core.PWMHandle, error) {
	if n < 0 || n > hostMaxPin {
		return nil, errcode.UnknownPin
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pwms == nil {
		b.pwms = map[int]*FakePWM{}
	}
	p, ok := b.pwms[n]
	if !ok {
		p = &FakePWM{n: n}
		b.pwms[n] = p
	}
	return p, nil
}

func (b *hostBackend) display() (core.DisplayHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disp == nil {
		b.disp = &FakeDisplay{}
	}
	return b.disp, nil
}

// ---- test access ----

// FakePin returns the fake behind pin n, creating it if needed.
func (r *Registry) FakePin(n int) *FakePin {
	h, _ := r.be.(*hostBackend).newPin(n)
	return h.(*FakePin)
}

// FakePWM returns the fake PWM behind pin n, creating it if needed.
func (r *Registry) FakePWM(n int) *FakePWM {
	h, _ := r.be.(*hostBackend).newPWM(n)
	return h.(*FakePWM)
}

// FakeDisplay returns the board's fake display.
func (r *Registry) FakeDisplay() *FakeDisplay {
	h, _ := r.be.(*hostBackend).display()
	return h.(*FakeDisplay)
}

// ---- fake GPIO/IRQ pin ----

type FakePin struct {
	mu      sync.Mutex
	n       int
	level   bool
	pull    core.Pull
	output  bool
	edge    core.Edge
	handler func()
}

var _ core.IRQHandle = (*FakePin)(nil)

func (p *FakePin) Number() int { return p.n }

func (p *FakePin) ConfigureInput(pull core.Pull) error {
	p.mu.Lock()
	p.pull = pull
	p.output = false
	// A pull-up idles high.
	p.level = pull == core.PullUp
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.output = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(v bool) {
	p.mu.Lock()
	p.level = v
	p.mu.Unlock()
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Toggle() {
	p.mu.Lock()
	p.level = !p.level
	p.mu.Unlock()
}

func (p *FakePin) SetIRQ(edge core.Edge, handler func()) error {
	p.mu.Lock()
	p.edge, p.handler = edge, handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.edge, p.handler = core.EdgeNone, nil
	p.mu.Unlock()
	return nil
}

// Drive sets the electrical level from the outside and fires the IRQ
// handler when the transition matches the armed edge. The handler runs
// on the caller's goroutine, like an interrupt preempting it.
func (p *FakePin) Drive(level bool) {
	p.mu.Lock()
	prev := p.level
	p.level = level
	edge, handler := p.edge, p.handler
	p.mu.Unlock()

	if handler == nil || prev == level {
		return
	}
	fire := false
	switch edge {
	case core.EdgeRising:
		fire = level
	case core.EdgeFalling:
		fire = !level
	case core.EdgeBoth:
		fire = true
	}
	if fire {
		handler()
	}
}

// ---- fake PWM ----

type FakePWM struct {
	mu       sync.Mutex
	n        int
	freqHz   uint64
	top      uint16
	levels   []uint16
	disabled bool
}

var _ core.PWMHandle = (*FakePWM)(nil)

func (p *FakePWM) Configure(freqHz uint64, top uint16) error {
	p.mu.Lock()
	p.freqHz, p.top, p.disabled = freqHz, top, false
	p.mu.Unlock()
	return nil
}

func (p *FakePWM) Top() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.top
}

func (p *FakePWM) Set(level uint16) {
	p.mu.Lock()
	p.levels = append(p.levels, level)
	p.mu.Unlock()
}

func (p *FakePWM) Disable() {
	p.mu.Lock()
	p.disabled = true
	p.mu.Unlock()
}

// FreqHz reports the configured carrier frequency.
func (p *FakePWM) FreqHz() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freqHz
}

// Levels returns every duty level written so far, oldest first.
func (p *FakePWM) Levels() []uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint16(nil), p.levels...)
}

// Last returns the most recent duty level, or 0 if none was written.
func (p *FakePWM) Last() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.levels) == 0 {
		return 0
	}
	return p.levels[len(p.levels)-1]
}

// ---- fake display ----

type FakeDisplay struct {
	mu      sync.Mutex
	inverse bool
	lines   map[int]string
}

var _ core.DisplayHandle = (*FakeDisplay)(nil)

func (d *FakeDisplay) SetInverse(on bool) error {
	d.mu.Lock()
	d.inverse = on
	d.mu.Unlock()
	return nil
}

func (d *FakeDisplay) DrawText(line int, text string) error {
	d.mu.Lock()
	if d.lines == nil {
		d.lines = map[int]string{}
	}
	d.lines[line] = text
	d.mu.Unlock()
	return nil
}

func (d *FakeDisplay) Size() (int, int) { return 128, 64 }

// Inverse reports the current polarity.
func (d *FakeDisplay) Inverse() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inverse
}

// Line returns the text last drawn on a line.
func (d *FakeDisplay) Line(n int) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines[n]
}

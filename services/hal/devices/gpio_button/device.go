// Package gpio_button exposes a single debounced push button as a
// button capability. The interrupt handler only samples the pin and
// hands off through a non-blocking channel; debouncing and bus
// publication happen in a worker goroutine.
package gpio_button

import (
	"context"
	"sync/atomic"

	"panelfw-go/errcode"
	"panelfw-go/panel"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/timex"
)

type edgeSample struct {
	tick    uint32
	pressed bool
}

type Device struct {
	id     string
	params types.ButtonParams
	irq    core.IRQHandle
	reg    core.ResourceRegistry
	pub    core.EventEmitter
	dom    string
	name   string
	addr   core.CapAddr

	filter *panel.Filter

	edges chan edgeSample
	stop  chan struct{}

	pressed uint32 // last debounced state, 0/1
	drops   uint32 // ISR-side channel overflow count
}

// The button is the filter's only input slot.
const slot = panel.Source(0)

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.dom,
		Kind:   types.KindButton,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "gpio_button",
			Detail:        types.ButtonInfo{Pin: d.params.Input.Pin},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	if err := configureInput(d.irq, d.params.Input); err != nil {
		return err
	}
	go d.worker()
	if err := d.irq.SetIRQ(core.EdgeBoth, d.onIRQ); err != nil {
		close(d.stop)
		return err
	}
	d.emitValue(d.logicalLevel())
	return nil
}

func (d *Device) Close() error {
	_ = d.irq.ClearIRQ()
	close(d.stop)
	d.reg.ReleasePin(d.id, d.params.Input.Pin)
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, _ any) (core.EnqueueResult, error) {
	switch verb {
	case "read":
		d.emitValue(atomic.LoadUint32(&d.pressed) == 1)
		return core.EnqueueResult{OK: true}, nil
	default:
		return core.EnqueueResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

// onIRQ runs in interrupt context: sample, stamp, non-blocking send.
func (d *Device) onIRQ() {
	s := edgeSample{tick: timex.NowTicks(), pressed: d.logicalLevel()}
	select {
	case d.edges <- s:
	default:
		atomic.AddUint32(&d.drops, 1)
	}
}

func (d *Device) worker() {
	for {
		select {
		case <-d.stop:
			return
		case s := <-d.edges:
			d.handleEdge(s)
		}
	}
}

// handleEdge admits at most one state change per debounce window.
// Edges inside the window are contact bounce and are discarded; the
// admitted sample's level becomes the new debounced state.
func (d *Device) handleEdge(s edgeSample) {
	if !d.filter.Admit(slot, s.tick) {
		return
	}
	var n uint32
	if s.pressed {
		n = 1
	}
	if atomic.SwapUint32(&d.pressed, n) == n {
		return // no observable change
	}
	tag := "released"
	if s.pressed {
		tag = "pressed"
	}
	d.pub.Emit(core.Event{
		Addr:     d.addr,
		Payload:  types.ButtonValue{Pressed: s.pressed, Drops: atomic.LoadUint32(&d.drops)},
		TSms:     timex.NowMs(),
		IsEvent:  true,
		EventTag: tag,
	})
	d.emitValue(s.pressed)
}

func (d *Device) emitValue(pressed bool) {
	d.pub.Emit(core.Event{
		Addr:    d.addr,
		Payload: types.ButtonValue{Pressed: pressed, Drops: atomic.LoadUint32(&d.drops)},
		TSms:    timex.NowMs(),
	})
}

// logicalLevel maps the electrical level to "pressed", honouring Invert.
func (d *Device) logicalLevel() bool {
	v := d.irq.Get()
	if d.params.Input.Invert {
		v = !v
	}
	return v
}

func configureInput(h core.IRQHandle, in types.PanelInput) error {
	switch in.Pull {
	case "up":
		return h.ConfigureInput(core.PullUp)
	case "down":
		return h.ConfigureInput(core.PullDown)
	default:
		return h.ConfigureInput(core.PullNone)
	}
}

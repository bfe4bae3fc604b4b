// Package frontpanel is the two-button front panel: one input toggles
// the backlight brightness level, the other flips the display polarity
// together with the mode-indicator LED. Triggers are debounced and
// dispatched by the panel core directly in the pin IRQ handlers; bus
// publication and display redraws happen on a worker goroutine fed by a
// lossy notify channel, so the interrupt path never blocks.
package frontpanel

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/panel"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/fmtx"
	"panelfw-go/x/timex"
)

const backlightTop = 1000 // PWM wrap value; percent scales onto 0..top

type Device struct {
	id     string
	params types.PanelParams

	btnBright core.IRQHandle
	btnMode   core.IRQHandle
	reg       core.ResourceRegistry
	pub       core.EventEmitter

	dom  string
	name string
	addr core.CapAddr

	out    *bridge
	bright *panel.BrightnessMachine
	mode   *panel.ModeMachine
	router *panel.Router

	notify chan struct{}
	stop   chan struct{}
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.dom,
		Kind:   types.KindPanel,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "frontpanel",
			Detail: map[string]any{
				"brightness_pin": d.params.Brightness.Pin,
				"mode_pin":       d.params.Mode.Pin,
				"backlight_pin":  d.params.BacklightPin,
				"indicator_pin":  d.params.IndicatorPin,
			},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	d.addr = core.CapAddr{Domain: d.dom, Kind: string(types.KindPanel), Name: d.name}

	if err := configureInput(d.btnBright, d.params.Brightness); err != nil {
		return err
	}
	if err := configureInput(d.btnMode, d.params.Mode); err != nil {
		return err
	}
	d.out.configure(d.params.BacklightFreqHz)

	// Hardware now matches the initial logical state.
	d.bright.Apply()
	d.mode.Apply()

	go d.worker()

	// IRQ handlers run in interrupt context: a single router call.
	bPin := d.params.Brightness.Pin
	if err := d.btnBright.SetIRQ(pressEdge(d.params.Brightness), func() { d.router.OnTrigger(bPin) }); err != nil {
		return err
	}
	mPin := d.params.Mode.Pin
	if err := d.btnMode.SetIRQ(pressEdge(d.params.Mode), func() { d.router.OnTrigger(mPin) }); err != nil {
		_ = d.btnBright.ClearIRQ()
		return err
	}

	d.emitValue()
	return nil
}

func (d *Device) Close() error {
	_ = d.btnBright.ClearIRQ()
	_ = d.btnMode.ClearIRQ()
	close(d.stop)
	d.reg.ReleasePin(d.id, d.params.Brightness.Pin)
	d.reg.ReleasePin(d.id, d.params.Mode.Pin)
	d.reg.ReleasePin(d.id, d.params.BacklightPin)
	if d.params.IndicatorPin >= 0 {
		d.reg.ReleasePin(d.id, d.params.IndicatorPin)
	}
	if d.out.disp != nil {
		d.reg.ReleaseDisplay(d.id)
	}
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	switch verb {
	case "toggle":
		p, code := core.As[types.PanelToggle](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		// A control toggle is a synthetic trigger: it runs through the
		// same router path as a physical press, debounce included.
		switch p.Function {
		case "backlight", "":
			d.router.OnTrigger(d.params.Brightness.Pin)
		case "mode":
			d.router.OnTrigger(d.params.Mode.Pin)
		default:
			return core.EnqueueResult{OK: false, Error: errcode.UnknownSource}, nil
		}
		return core.EnqueueResult{OK: true}, nil
	case "read":
		d.emitValue()
		return core.EnqueueResult{OK: true}, nil
	default:
		return core.EnqueueResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

// worker owns bus publication and display text. Redraw is coalesced:
// a burst of toggles folds into however many notifies fit the channel.
func (d *Device) worker() {
	for {
		select {
		case <-d.stop:
			return
		case <-d.notify:
			d.emitValue()
			d.drawStatus()
		}
	}
}

func (d *Device) emitValue() {
	mode := types.DisplayNormal
	if d.mode.Inverse() {
		mode = types.DisplayInverse
	}
	_ = d.pub.Emit(core.Event{
		Addr: d.addr,
		Payload: types.PanelValue{
			BrightnessPct: d.bright.Percent(),
			Mode:          mode,
			IndicatorOn:   d.mode.IndicatorOn(),
			Admitted:      d.router.Admitted(),
			Ignored:       d.router.Ignored(),
		},
		TSms: timex.NowMs(),
	})
}

func (d *Device) drawStatus() {
	if d.out.disp == nil {
		return
	}
	mode := "normal"
	if d.mode.Inverse() {
		mode = "inverse"
	}
	_ = d.out.disp.DrawText(0, fmtx.Sprintf("BL %d%%", d.bright.Percent()))
	_ = d.out.disp.DrawText(1, fmtx.Sprintf("MODE %s", mode))
}

// Router exposes the trigger entry point (host simulation, tests).
func (d *Device) Router() *panel.Router { return d.router }

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

// pressEdge picks the electrical edge of a press: falling for inverted
// (pressed == low) inputs, rising otherwise.
func pressEdge(in types.PanelInput) core.Edge {
	if in.Invert {
		return core.EdgeFalling
	}
	return core.EdgeRising
}

package pwm_out

import (
	"context"
	"sync"
	"time"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/mathx"
	"panelfw-go/x/ramp"
	"panelfw-go/x/timex"
)

type Device struct {
	id   string
	pin  int
	pwm  core.PWMHandle
	pub  core.EventEmitter
	reg  core.ResourceRegistry
	dom  string
	name string
	freq uint64
	top  uint16
	addr core.CapAddr

	mu         sync.Mutex
	level      uint16
	rampCancel chan struct{}
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.dom,
		Kind:   types.KindPWM,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "pwm_out",
			Detail: types.PWMInfo{
				Pin:    d.pin,
				FreqHz: d.freq,
				Top:    d.top,
			},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	d.addr = core.CapAddr{Domain: d.dom, Kind: string(types.KindPWM), Name: d.name}

	if err := d.pwm.Configure(d.freq, d.top); err != nil {
		d.pub.Emit(core.Event{
			Addr: d.addr,
			TSms: timex.NowMs(),
			Err:  string(errcode.MapDriverErr(err)),
		})
		return nil
	}
	d.pwm.Set(0)
	d.emitLevel(0)
	return nil
}

func (d *Device) Close() error {
	d.stopRamp()
	d.pwm.Disable()
	d.reg.ReleasePin(d.id, d.pin)
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	switch verb {
	case "set":
		p, code := core.As[types.PWMSet](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		d.stopRamp()
		lvl := mathx.Min(p.Level, d.top)
		d.setLevel(lvl)
		return core.EnqueueResult{OK: true}, nil

	case "ramp":
		p, code := core.As[types.PWMRamp](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		if !d.startRamp(p) {
			return core.EnqueueResult{OK: false, Error: errcode.Busy}, nil
		}
		return core.EnqueueResult{OK: true}, nil

	case "stop_ramp":
		d.stopRamp()
		return core.EnqueueResult{OK: true}, nil

	case "read":
		d.mu.Lock()
		lvl := d.level
		d.mu.Unlock()
		d.emitLevel(lvl)
		return core.EnqueueResult{OK: true}, nil

	default:
		return core.EnqueueResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

func (d *Device) setLevel(lvl uint16) {
	d.mu.Lock()
	d.level = lvl
	d.mu.Unlock()
	d.pwm.Set(lvl)
	d.emitLevel(lvl)
}

func (d *Device) emitLevel(lvl uint16) {
	_ = d.pub.Emit(core.Event{
		Addr:    d.addr,
		Payload: types.PWMValue{Level: lvl},
		TSms:    timex.NowMs(),
	})
}

// startRamp runs a caller-driven linear ramp on its own goroutine.
// One ramp at a time; a second request while running reports busy.
func (d *Device) startRamp(p types.PWMRamp) bool {
	d.mu.Lock()
	if d.rampCancel != nil {
		d.mu.Unlock()
		return false
	}
	cancel := make(chan struct{})
	d.rampCancel = cancel
	cur := d.level
	d.mu.Unlock()

	to := mathx.Min(p.To, d.top)
	go func() {
		tick := func(dur time.Duration) bool {
			select {
			case <-cancel:
				return false
			case <-time.After(dur):
				return true
			}
		}
		ramp.StartLinear(cur, to, d.top, p.DurationMs, p.Steps, tick, func(lvl uint16) {
			d.mu.Lock()
			d.level = lvl
			d.mu.Unlock()
			d.pwm.Set(lvl)
		})
		d.mu.Lock()
		if d.rampCancel == cancel {
			d.rampCancel = nil
		}
		final := d.level
		d.mu.Unlock()
		d.emitLevel(final)
	}()
	return true
}

func (d *Device) stopRamp() {
	d.mu.Lock()
	if d.rampCancel != nil {
		close(d.rampCancel)
		d.rampCancel = nil
	}
	d.mu.Unlock()
}

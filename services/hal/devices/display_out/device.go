// Package display_out exposes the claimed display as a standalone
// display capability with mode and text verbs. Text rendering is slow
// on small OLED drivers, so draw requests are queued to a worker;
// set_mode is a single command write and runs inline.
package display_out

import (
	"context"
	"sync/atomic"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/timex"
)

type Device struct {
	id   string
	disp core.DisplayHandle
	reg  core.ResourceRegistry
	pub  core.EventEmitter
	dom  string
	name string
	addr core.CapAddr

	inverse uint32 // current polarity, 0/1

	draws chan types.DisplayDrawText
	stop  chan struct{}
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	w, h := d.disp.Size()
	return []core.CapabilitySpec{{
		Domain: d.dom,
		Kind:   types.KindDisplay,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "display_out",
			Detail:        types.DisplayInfo{Width: w, Height: h},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	if err := d.disp.SetInverse(false); err != nil {
		return err
	}
	go d.worker()
	d.emitValue()
	return nil
}

func (d *Device) Close() error {
	close(d.stop)
	d.reg.ReleaseDisplay(d.id)
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	switch verb {
	case "set_mode":
		p, code := core.As[types.DisplaySetMode](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		var inv bool
		switch p.Mode {
		case types.DisplayInverse:
			inv = true
		case types.DisplayNormal, "":
			inv = false
		default:
			return core.EnqueueResult{OK: false, Error: errcode.InvalidPayload}, nil
		}
		if err := d.disp.SetInverse(inv); err != nil {
			return core.EnqueueResult{OK: false, Error: errcode.MapDriverErr(err)}, nil
		}
		var n uint32
		if inv {
			n = 1
		}
		atomic.StoreUint32(&d.inverse, n)
		d.emitValue()
		return core.EnqueueResult{OK: true}, nil
	case "draw_text":
		p, code := core.As[types.DisplayDrawText](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		if p.Line < 0 {
			return core.EnqueueResult{OK: false, Error: errcode.InvalidPayload}, nil
		}
		select {
		case d.draws <- p:
			return core.EnqueueResult{OK: true}, nil
		default:
			return core.EnqueueResult{OK: false, Error: errcode.Busy}, nil
		}
	case "read":
		d.emitValue()
		return core.EnqueueResult{OK: true}, nil
	default:
		return core.EnqueueResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

func (d *Device) worker() {
	for {
		select {
		case <-d.stop:
			return
		case p := <-d.draws:
			if err := d.disp.DrawText(p.Line, p.Text); err != nil {
				d.pub.Emit(core.Event{
					Addr: d.addr,
					TSms: timex.NowMs(),
					Err:  "io_error",
				})
			}
		}
	}
}

func (d *Device) mode() types.DisplayMode {
	if atomic.LoadUint32(&d.inverse) == 1 {
		return types.DisplayInverse
	}
	return types.DisplayNormal
}

func (d *Device) emitValue() {
	d.pub.Emit(core.Event{
		Addr:    d.addr,
		Payload: types.DisplayValue{Mode: d.mode()},
		TSms:    timex.NowMs(),
	})
}

package gpio_dout

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/timex"
)

type Device struct {
	id        string
	pin       core.GPIOHandle
	pinN      int
	activeLow bool
	pub       core.EventEmitter
	reg       core.ResourceRegistry
	domain    string
	name      string
	initial   bool
	addr      core.CapAddr
}

func New(id string, p types.LEDParams, h core.GPIOHandle, reg core.ResourceRegistry, pub core.EventEmitter) *Device {
	d := &Device{
		id:        id,
		pin:       h,
		pinN:      p.Pin,
		activeLow: p.ActiveLow,
		pub:       pub,
		reg:       reg,
		domain:    p.Domain,
		name:      p.Name,
		initial:   p.Initial,
	}
	if d.name == "" {
		d.name = id
	}
	if d.domain == "" {
		d.domain = "io"
	}
	d.addr = core.CapAddr{Domain: d.domain, Kind: string(types.KindLED), Name: d.name}
	return d
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []core.CapabilitySpec {
	return []core.CapabilitySpec{{
		Domain: d.domain,
		Kind:   types.KindLED,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "gpio_dout",
			Detail:        types.LEDInfo{Pin: d.pin.Number()},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error {
	level := d.initial
	if d.activeLow {
		level = !level
	}
	if err := d.pin.ConfigureOutput(level); err != nil {
		return err
	}
	d.emitValueNow()
	return nil
}

func (d *Device) Close() error {
	d.reg.ReleasePin(d.id, d.pinN)
	return nil
}

func (d *Device) Control(_ core.CapAddr, verb string, payload any) (core.EnqueueResult, error) {
	switch verb {
	case "set":
		p, code := core.As[types.LEDSet](payload)
		if code != "" {
			return core.EnqueueResult{OK: false, Error: code}, nil
		}
		d.setLogical(p.Level)
		d.emitValueNow()
		return core.EnqueueResult{OK: true}, nil
	case "toggle":
		d.setLogical(!d.getLogical())
		d.emitValueNow()
		return core.EnqueueResult{OK: true}, nil
	case "read":
		d.emitValueNow()
		return core.EnqueueResult{OK: true}, nil
	default:
		return core.EnqueueResult{OK: false, Error: errcode.Unsupported}, nil
	}
}

func (d *Device) setLogical(on bool) {
	level := on
	if d.activeLow {
		level = !level
	}
	d.pin.Set(level)
}

func (d *Device) getLogical() bool {
	level := d.pin.Get()
	if d.activeLow {
		level = !level
	}
	return level
}

func (d *Device) emitValueNow() {
	var v uint8
	if d.getLogical() {
		v = 1
	}
	_ = d.pub.Emit(core.Event{
		Addr:    d.addr,
		Payload: types.LEDValue{Level: v},
		TSms:    timex.NowMs(),
	})
}

package frontpanel

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/panel"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/strx"
	"panelfw-go/x/timex"
)

func init() { core.RegisterBuilder("frontpanel", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.PanelParams)
	if !ok {
		return nil, errcode.InvalidParams
	}
	if p.Brightness.Pin < 0 || p.Mode.Pin < 0 || p.Brightness.Pin == p.Mode.Pin {
		return nil, errcode.InvalidParams
	}

	reg := in.Res.Reg
	bh, err := reg.ClaimPin(in.ID, p.Brightness.Pin, core.FuncGPIOIRQ)
	if err != nil {
		return nil, err
	}
	mh, err := reg.ClaimPin(in.ID, p.Mode.Pin, core.FuncGPIOIRQ)
	if err != nil {
		reg.ReleasePin(in.ID, p.Brightness.Pin)
		return nil, err
	}
	ph, err := reg.ClaimPin(in.ID, p.BacklightPin, core.FuncPWM)
	if err != nil {
		reg.ReleasePin(in.ID, p.Brightness.Pin)
		reg.ReleasePin(in.ID, p.Mode.Pin)
		return nil, err
	}

	var ind core.GPIOHandle
	if p.IndicatorPin >= 0 {
		ih, err := reg.ClaimPin(in.ID, p.IndicatorPin, core.FuncGPIOOut)
		if err != nil {
			reg.ReleasePin(in.ID, p.Brightness.Pin)
			reg.ReleasePin(in.ID, p.Mode.Pin)
			reg.ReleasePin(in.ID, p.BacklightPin)
			return nil, err
		}
		ind = ih.AsGPIO()
		_ = ind.ConfigureOutput(false)
	}

	// A panel without a display still works; the bridge skips it.
	disp, _ := reg.ClaimDisplay(in.ID)

	out := &bridge{pwm: ph.AsPWM(), ind: ind, disp: disp}
	bright := panel.NewBrightnessMachine(p.BrightnessLevels, out)
	mode := panel.NewModeMachine(out)

	filter := panel.NewFilter(debounceOrDefault(p.Brightness))
	filter.SetWindow(panel.SourceMode, debounceOrDefault(p.Mode))

	d := &Device{
		id:        in.ID,
		params:    p,
		btnBright: bh.AsIRQ(),
		btnMode:   mh.AsIRQ(),
		reg:       reg,
		pub:       in.Res.Pub,
		dom:       strx.Coalesce(p.Domain, "io"),
		name:      strx.Coalesce(p.Name, in.ID),
		out:       out,
		bright:    bright,
		mode:      mode,
		notify:    make(chan struct{}, 8),
		stop:      make(chan struct{}),
	}
	d.router = panel.NewRouter(
		panel.TimebaseFunc(timex.NowTicks),
		filter,
		map[int]panel.Route{
			p.Brightness.Pin: {Source: panel.SourceBrightness, Machine: bright},
			p.Mode.Pin:       {Source: panel.SourceMode, Machine: mode},
		},
		d.notifyNonBlocking,
	)
	return d, nil
}

// notifyNonBlocking wakes the worker; drops when the queue is full to
// protect the interrupt path.
func (d *Device) notifyNonBlocking() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func debounceOrDefault(in types.PanelInput) uint32 {
	if in.DebounceMs == 0 {
		return types.DefaultDebounceMs
	}
	return uint32(in.DebounceMs)
}

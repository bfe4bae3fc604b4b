package gpio_button

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/panel"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/strx"
)

func init() { core.RegisterBuilder("gpio_button", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.ButtonParams)
	if !ok || p.Input.Pin < 0 {
		return nil, errcode.InvalidParams
	}
	ph, err := in.Res.Reg.ClaimPin(in.ID, p.Input.Pin, core.FuncGPIOIRQ)
	if err != nil {
		return nil, err
	}
	window := uint32(p.Input.DebounceMs)
	if window == 0 {
		window = types.DefaultDebounceMs
	}
	d := &Device{
		id:     in.ID,
		params: p,
		irq:    ph.AsIRQ(),
		reg:    in.Res.Reg,
		pub:    in.Res.Pub,
		dom:    strx.Coalesce(p.Domain, "io"),
		name:   strx.Coalesce(p.Name, in.ID),
		filter: panel.NewFilter(window),
		edges:  make(chan edgeSample, 16),
		stop:   make(chan struct{}),
	}
	d.addr = core.CapAddr{Domain: d.dom, Kind: string(types.KindButton), Name: d.name}
	return d, nil
}

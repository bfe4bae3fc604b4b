package display_out

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/strx"
)

func init() { core.RegisterBuilder("display_out", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.DisplayParams)
	if !ok {
		return nil, errcode.InvalidParams
	}
	disp, err := in.Res.Reg.ClaimDisplay(in.ID)
	if err != nil {
		return nil, err
	}
	d := &Device{
		id:    in.ID,
		disp:  disp,
		reg:   in.Res.Reg,
		pub:   in.Res.Pub,
		dom:   strx.Coalesce(p.Domain, "io"),
		name:  strx.Coalesce(p.Name, in.ID),
		draws: make(chan types.DisplayDrawText, 8),
		stop:  make(chan struct{}),
	}
	d.addr = core.CapAddr{Domain: d.dom, Kind: string(types.KindDisplay), Name: d.name}
	return d, nil
}

// services/hal/devices/pwm_out/builder.go
package pwm_out

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
	"panelfw-go/x/strx"
)

func init() { core.RegisterBuilder("pwm_out", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.PWMParams)
	if !ok || p.Pin < 0 {
		return nil, errcode.InvalidParams
	}
	if p.Top == 0 {
		p.Top = 1000
	}
	ph, err := in.Res.Reg.ClaimPin(in.ID, p.Pin, core.FuncPWM)
	if err != nil {
		return nil, err
	}
	return &Device{
		id:   in.ID,
		pin:  p.Pin,
		pwm:  ph.AsPWM(),
		pub:  in.Res.Pub,
		reg:  in.Res.Reg,
		dom:  strx.Coalesce(p.Domain, "io"),
		name: strx.Coalesce(p.Name, in.ID),
		freq: p.FreqHz,
		top:  p.Top,
	}, nil
}

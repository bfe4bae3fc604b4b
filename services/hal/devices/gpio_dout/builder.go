package gpio_dout

import (
	"context"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/types"
)

func init() { core.RegisterBuilder("gpio_led", builder{}) }

type builder struct{}

func (builder) Build(ctx context.Context, in core.BuilderInput) (core.Device, error) {
	p, ok := in.Params.(types.LEDParams)
	if !ok || p.Pin < 0 {
		return nil, errcode.InvalidParams
	}
	ph, err := in.Res.Reg.ClaimPin(in.ID, p.Pin, core.FuncGPIOOut)
	if err != nil {
		return nil, err
	}
	return New(in.ID, p, ph.AsGPIO(), in.Res.Reg, in.Res.Pub), nil
}

package frontpanel

import (
	"sync/atomic"

	"panelfw-go/panel"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/x/mathx"
)

// bridge maps the panel's abstract state onto the PWM, indicator and
// display collaborators. It runs in interrupt context, so every call is
// a short register-style write. Until configure has run (and whenever a
// collaborator is absent) actuation is skipped for that cycle; the last
// known-good output stays in place.
type bridge struct {
	pwm  core.PWMHandle
	ind  core.GPIOHandle
	disp core.DisplayHandle

	ready uint32 // atomic; set once configure succeeds
}

func (b *bridge) configure(freqHz uint64) {
	if b.pwm != nil {
		if freqHz == 0 {
			freqHz = 25_000 // above audible range
		}
		if err := b.pwm.Configure(freqHz, backlightTop); err != nil {
			// Leave ready unset: actuation stays suppressed, triggers
			// still debounce and flip state.
			return
		}
	}
	atomic.StoreUint32(&b.ready, 1)
}

func (b *bridge) isReady() bool { return atomic.LoadUint32(&b.ready) != 0 }

func (b *bridge) SetBrightness(percent uint8) {
	if !b.isReady() || b.pwm == nil {
		return
	}
	b.pwm.Set(mathx.MapU16(uint16(percent), 0, 100, 0, b.pwm.Top()))
}

func (b *bridge) SetMode(inverse bool, indicatorOn bool) {
	if !b.isReady() {
		return
	}
	if b.ind != nil {
		b.ind.Set(indicatorOn)
	}
	if b.disp != nil {
		_ = b.disp.SetInverse(inverse)
	}
}

var _ panel.Outputs = (*bridge)(nil)

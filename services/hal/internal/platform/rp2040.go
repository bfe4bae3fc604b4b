//go:build rp2040

package platform

import (
	"image/color"
	"machine"
	"sync"
	"time"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
	"panelfw-go/x/mathx"
	"panelfw-go/x/timex"
)

const rpMaxPin = 28

type rpBackend struct {
	mu   sync.Mutex
	disp *rpDisplay
}

// New returns the RP2040 registry.
func New() *Registry { return newRegistry(&rpBackend{}) }

func (b *rpBackend) newPin(n int) (core.IRQHandle, error) {
	if n < 0 || n > rpMaxPin {
		return nil, errcode.UnknownPin
	}
	return &rpPin{p: machine.Pin(n), n: n}, nil
}

func (b *rpBackend) newPWM(n int) (core.PWMHandle, error) {
	if n < 0 || n > rpMaxPin {
		return nil, errcode.UnknownPin
	}
	slice, err := machine.PWMPeripheral(machine.Pin(n))
	if err != nil {
		return nil, errcode.UnknownPin
	}
	return &rpPWM{pin: n, ctrl: pwmGroupBySlice(slice)}, nil
}

func (b *rpBackend) display() (core.DisplayHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disp != nil {
		return b.disp, nil
	}
	d, err := newRPDisplay()
	if err != nil {
		return nil, err
	}
	b.disp = d
	return d, nil
}

// ---- GPIO ----

type rpPin struct {
	p machine.Pin
	n int
}

var _ core.IRQHandle = (*rpPin)(nil)

func (r *rpPin) Number() int { return r.n }

func (r *rpPin) ConfigureInput(pull core.Pull) error {
	var mode machine.PinMode
	switch pull {
	case core.PullUp:
		mode = machine.PinInputPullup
	case core.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rpPin) ConfigureOutput(initial bool) error {
	r.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	r.p.Set(initial)
	return nil
}

func (r *rpPin) Set(v bool) { r.p.Set(v) }
func (r *rpPin) Get() bool  { return r.p.Get() }
func (r *rpPin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

// The RP2 port provides SetInterrupt with PinChange flags.
func (r *rpPin) SetIRQ(edge core.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rpPin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e core.Edge) machine.PinChange {
	switch e {
	case core.EdgeRising:
		return machine.PinRising
	case core.EdgeFalling:
		return machine.PinFalling
	case core.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}

// ---- PWM ----

// Local interface to avoid depending on an unexported concrete type in
// machine.
type pwmCtrl interface {
	Configure(cfg machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

func pwmGroupBySlice(slice uint8) pwmCtrl {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// rpPWM exposes one channel of a slice. Levels are logical 0..reqTop
// and scaled onto the hardware counter range.
type rpPWM struct {
	mu     sync.Mutex
	pin    int
	ctrl   pwmCtrl
	chIdx  uint8
	reqTop uint16
	hwTop  uint32
	level  uint16
}

var _ core.PWMHandle = (*rpPWM)(nil)

func (p *rpPWM) Configure(freqHz uint64, top uint16) error {
	top = mathx.Max(top, 1)
	freqHz = mathx.Max(freqHz, 1)

	period := timex.PeriodFromHz(uint32(freqHz))
	if err := p.ctrl.Configure(machine.PWMConfig{Period: period}); err != nil {
		return err
	}
	machine.Pin(p.pin).Configure(machine.PinConfig{Mode: machine.PinPWM})
	ch, err := p.ctrl.Channel(machine.Pin(p.pin))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.chIdx = ch
	p.reqTop = top
	p.hwTop = p.ctrl.Top()
	p.mu.Unlock()
	return nil
}

func (p *rpPWM) Top() uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reqTop
}

func (p *rpPWM) Set(level uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hwTop == 0 || p.reqTop == 0 {
		return
	}
	level = mathx.Min(level, p.reqTop)
	hw := (uint32(level) * p.hwTop) / uint32(p.reqTop)
	p.ctrl.Set(p.chIdx, hw)
	p.level = level
}

func (p *rpPWM) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hwTop != 0 {
		p.ctrl.Set(p.chIdx, 0)
	}
	p.level = 0
}

// ---- display (SSD1306 over I2C0) ----

const (
	dispI2CAddr = 0x3C
	dispWidth   = 128
	dispHeight  = 64
	dispRowPx   = 8
	dispRows    = dispHeight / dispRowPx

	cmdDisplayNormal  = 0xA6
	cmdDisplayInverse = 0xA7
)

type rpDisplay struct {
	mu    sync.Mutex
	dev   *ssd1306.Device
	lines [dispRows]string
}

var _ core.DisplayHandle = (*rpDisplay)(nil)

func newRPDisplay() (*rpDisplay, error) {
	i2c := machine.I2C0
	// GPIO0/1 carry the console UART; the display sits on I2C0's
	// alternate pins.
	if err := i2c.Configure(machine.I2CConfig{
		Frequency: 400_000,
		SCL:       machine.GPIO5,
		SDA:       machine.GPIO4,
	}); err != nil {
		return nil, errcode.NoDisplay
	}
	time.Sleep(10 * time.Millisecond)

	dev := ssd1306.NewI2C(i2c)
	dev.Configure(ssd1306.Config{
		Address: dispI2CAddr,
		Width:   dispWidth,
		Height:  dispHeight,
	})
	dev.ClearDisplay()
	return &rpDisplay{dev: &dev}, nil
}

// SetInverse flips the panel polarity with a single command write, so
// it is safe to call from time-sensitive paths.
func (d *rpDisplay) SetInverse(on bool) error {
	cmd := uint8(cmdDisplayNormal)
	if on {
		cmd = cmdDisplayInverse
	}
	d.dev.Command(cmd)
	return nil
}

// DrawText redraws the full frame; callers run it from worker context.
func (d *rpDisplay) DrawText(line int, text string) error {
	if line < 0 || line >= dispRows {
		return errcode.InvalidParams
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines[line] = text

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	d.dev.ClearBuffer()
	for i, s := range d.lines {
		if s == "" {
			continue
		}
		y := int16(i*dispRowPx + dispRowPx - 1)
		tinyfont.WriteLine(d.dev, &tinyfont.Org01, 0, y, s, white)
	}
	d.dev.Display()
	return nil
}

func (d *rpDisplay) Size() (int, int) { return dispWidth, dispHeight }

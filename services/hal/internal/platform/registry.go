// Package platform provides the concrete pin, PWM and display resources
// behind the HAL's resource registry. The host build backs them with
// in-memory fakes; the rp2040 build maps them onto the machine package.
package platform

import (
	"sync"

	"panelfw-go/errcode"
	"panelfw-go/services/hal/internal/core"
)

// backend creates the platform-specific handles. Each build tag supplies
// exactly one implementation.
type backend interface {
	// newPin returns a GPIO/IRQ handle for pin n, or UnknownPin.
	newPin(n int) (core.IRQHandle, error)
	// newPWM returns a PWM handle for pin n, or UnknownPin.
	newPWM(n int) (core.PWMHandle, error)
	// display returns the board display, or NoDisplay.
	display() (core.DisplayHandle, error)
}

type pinClaim struct {
	owner string
	fn    core.PinFunc
	gpio  core.IRQHandle
	pwm   core.PWMHandle
}

// Registry hands out exclusive pin and display claims. One pin has at
// most one owner; the claimed function decides which handle accessors
// are live.
type Registry struct {
	mu        sync.Mutex
	be        backend
	pins      map[int]*pinClaim
	dispOwner string
	disp      core.DisplayHandle
}

var _ core.ResourceRegistry = (*Registry)(nil)

func newRegistry(be backend) *Registry {
	return &Registry{be: be, pins: map[int]*pinClaim{}}
}

func (r *Registry) ClaimPin(devID string, pin int, fn core.PinFunc) (core.PinHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, inUse := r.pins[pin]; inUse {
		if c.owner != devID || c.fn != fn {
			return nil, errcode.PinInUse
		}
		return pinHandle{c}, nil
	}
	c := &pinClaim{owner: devID, fn: fn}
	var err error
	if fn == core.FuncPWM {
		c.pwm, err = r.be.newPWM(pin)
	} else {
		c.gpio, err = r.be.newPin(pin)
	}
	if err != nil {
		return nil, err
	}
	r.pins[pin] = c
	return pinHandle{c}, nil
}

func (r *Registry) ReleasePin(devID string, pin int) {
	r.mu.Lock()
	if c, ok := r.pins[pin]; ok && c.owner == devID {
		if c.pwm != nil {
			c.pwm.Disable()
		}
		delete(r.pins, pin)
	}
	r.mu.Unlock()
}

func (r *Registry) ClaimDisplay(devID string) (core.DisplayHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dispOwner != "" && r.dispOwner != devID {
		return nil, errcode.DisplayInUse
	}
	if r.disp == nil {
		d, err := r.be.display()
		if err != nil {
			return nil, err
		}
		r.disp = d
	}
	r.dispOwner = devID
	return r.disp, nil
}

func (r *Registry) ReleaseDisplay(devID string) {
	r.mu.Lock()
	if r.dispOwner == devID {
		r.dispOwner = ""
	}
	r.mu.Unlock()
}

// pinHandle narrows a claim to the accessors its function allows.
type pinHandle struct{ c *pinClaim }

var _ core.PinHandle = pinHandle{}

func (h pinHandle) AsGPIO() core.GPIOHandle {
	if h.c.fn == core.FuncPWM {
		return nil
	}
	return h.c.gpio
}

func (h pinHandle) AsIRQ() core.IRQHandle {
	if h.c.fn != core.FuncGPIOIRQ {
		return nil
	}
	return h.c.gpio
}

func (h pinHandle) AsPWM() core.PWMHandle {
	if h.c.fn != core.FuncPWM {
		return nil
	}
	return h.c.pwm
}

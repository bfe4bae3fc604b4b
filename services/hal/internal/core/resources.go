package core

// ---- GPIO / PWM / display handles ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

func EdgeToString(e Edge) string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

type GPIOHandle interface {
	Number() int
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(bool)
	Get() bool
	Toggle()
}

// IRQHandle extends GPIOHandle with level-change interrupts. The
// handler runs in interrupt context: it must not block or allocate.
type IRQHandle interface {
	GPIOHandle
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PWMHandle drives one PWM channel. Set writes the duty level in a
// single register-style operation: the previous duty is overwritten
// atomically from the peripheral's point of view.
type PWMHandle interface {
	// Configure sets carrier frequency and the wrap (top) value.
	Configure(freqHz uint64, top uint16) error
	Top() uint16
	Set(level uint16) // 0..Top
	Disable()
}

// DisplayHandle is the subset of a display driver the HAL exposes.
// SetInverse must be a short bounded operation (a single command write);
// DrawText may be slower and is only called from worker context.
type DisplayHandle interface {
	SetInverse(on bool) error
	DrawText(line int, text string) error
	Size() (width, height int)
}

// ---- Pin claiming ----

// PinFunc declares what a device wants a claimed pin for.
type PinFunc uint8

const (
	FuncGPIOIn PinFunc = iota
	FuncGPIOOut
	FuncGPIOIRQ
	FuncPWM
)

// PinHandle is a claimed pin; the As* accessors return nil when the pin
// was not claimed for that function.
type PinHandle interface {
	AsGPIO() GPIOHandle
	AsIRQ() IRQHandle
	AsPWM() PWMHandle
}

// ---- Unified registry interface ----

type ResourceRegistry interface {
	ClaimPin(devID string, pin int, fn PinFunc) (PinHandle, error)
	ReleasePin(devID string, pin int)

	ClaimDisplay(devID string) (DisplayHandle, error)
	ReleaseDisplay(devID string)
}

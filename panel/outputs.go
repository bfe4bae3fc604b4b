package panel

// Outputs is the actuation bridge between the state machines and the
// PWM / digital-output / display collaborators. Implementations must be
// non-blocking single-register-write style calls: they run in interrupt
// context. A collaborator that is not ready yet must be skipped for
// that cycle (keep the last known-good output), never propagated as a
// failure into the trigger path.
type Outputs interface {
	// SetBrightness drives the backlight PWM duty cycle, percent 0..100.
	SetBrightness(percent uint8)
	// SetMode drives the display polarity and the mode-indicator level
	// together; both reflect the same logical toggle.
	SetMode(inverse bool, indicatorOn bool)
}

// NopOutputs discards all actuation. Useful before the hardware bridge
// is wired, and in tests that only care about state.
type NopOutputs struct{}

func (NopOutputs) SetBrightness(uint8) {}
func (NopOutputs) SetMode(bool, bool)  {}

var _ Outputs = NopOutputs{}

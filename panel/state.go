package panel

import "sync/atomic"

// Toggler is a single-transition output state machine.
type Toggler interface {
	Toggle()
}

// DefaultBrightnessLevels is the baseline two-level cycle (off, full).
// The dimmed variant is {50,100}; any N-level cycle is accepted.
var DefaultBrightnessLevels = []uint8{0, 100}

// BrightnessMachine cycles the backlight through a fixed duty table.
// The index cell is atomic: Toggle runs on the interrupt path while
// Percent may be read from anywhere.
type BrightnessMachine struct {
	levels []uint8 // immutable after construction
	idx    uint32  // atomic
	out    Outputs
}

// NewBrightnessMachine starts at levels[0]. An empty table falls back
// to DefaultBrightnessLevels; values are capped at 100.
func NewBrightnessMachine(levels []uint8, out Outputs) *BrightnessMachine {
	if len(levels) == 0 {
		levels = DefaultBrightnessLevels
	}
	tab := make([]uint8, len(levels))
	for i, l := range levels {
		if l > 100 {
			l = 100
		}
		tab[i] = l
	}
	if out == nil {
		out = NopOutputs{}
	}
	return &BrightnessMachine{levels: tab, out: out}
}

// Toggle advances to the next level in the cycle and applies it.
func (m *BrightnessMachine) Toggle() {
	next := (atomic.LoadUint32(&m.idx) + 1) % uint32(len(m.levels))
	atomic.StoreUint32(&m.idx, next)
	m.out.SetBrightness(m.levels[next])
}

// Percent returns the current duty percent.
func (m *BrightnessMachine) Percent() uint8 {
	return m.levels[atomic.LoadUint32(&m.idx)]
}

// Apply pushes the current level to the outputs without a transition.
// Used once after setup so the hardware matches the initial state.
func (m *BrightnessMachine) Apply() {
	m.out.SetBrightness(m.Percent())
}

// ModeMachine flips the display polarity together with the mode
// indicator: Inverse <=> indicator On, Normal <=> indicator Off.
type ModeMachine struct {
	inverse uint32 // atomic; 0 normal, 1 inverse
	out     Outputs
}

func NewModeMachine(out Outputs) *ModeMachine {
	if out == nil {
		out = NopOutputs{}
	}
	return &ModeMachine{out: out}
}

// Toggle flips mode and indicator on the same event.
func (m *ModeMachine) Toggle() {
	inv := atomic.LoadUint32(&m.inverse) == 0 // new value after flip
	if inv {
		atomic.StoreUint32(&m.inverse, 1)
	} else {
		atomic.StoreUint32(&m.inverse, 0)
	}
	m.out.SetMode(inv, inv)
}

// Inverse reports the current display polarity.
func (m *ModeMachine) Inverse() bool {
	return atomic.LoadUint32(&m.inverse) != 0
}

// IndicatorOn reports the coupled indicator level.
func (m *ModeMachine) IndicatorOn() bool { return m.Inverse() }

// Apply pushes the current state to the outputs without a transition.
func (m *ModeMachine) Apply() {
	inv := m.Inverse()
	m.out.SetMode(inv, inv)
}

var (
	_ Toggler = (*BrightnessMachine)(nil)
	_ Toggler = (*ModeMachine)(nil)
)

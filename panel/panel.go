// Package panel holds the front-panel input/output logic: debouncing of
// the two button interrupt sources and the toggling output state driven
// by them. It is pure logic over small interfaces so it runs unchanged
// on host tests and MCU builds; the trigger path never blocks and never
// allocates.
//
// Flow: pin interrupt -> Router.OnTrigger -> Filter.Admit -> machine
// Toggle -> Outputs. Everything on that path executes in interrupt
// context; shared cells are accessed through sync/atomic so readers in
// other contexts never observe torn values.
package panel

// Source identifies a distinct interrupt-generating input.
type Source uint8

const (
	SourceBrightness Source = iota
	SourceMode

	numSources
)

func (s Source) String() string {
	switch s {
	case SourceBrightness:
		return "brightness"
	case SourceMode:
		return "mode"
	default:
		return "unknown"
	}
}

// Timebase is the monotonic millisecond tick counter, read-only to the
// panel. The counter wraps in its native unsigned width; elapsed-time
// maths must be done in that width.
type Timebase interface {
	Ticks() uint32
}

// TimebaseFunc adapts a plain function to Timebase.
type TimebaseFunc func() uint32

func (f TimebaseFunc) Ticks() uint32 { return f() }

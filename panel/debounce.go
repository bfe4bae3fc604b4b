package panel

import "sync/atomic"

// Filter decides per input source whether a raw trigger is a genuine
// logical event or contact noise. Each source carries its own window
// and its own last-accepted tick; sources never interfere.
//
// The cells are touched on the interrupt path and read from elsewhere,
// so all access goes through sync/atomic.
type Filter struct {
	window [numSources]uint32 // ms; immutable after configuration
	last   [numSources]uint32 // last accepted tick, atomic
	primed [numSources]uint32 // 0 until the first accepted trigger, atomic
}

// NewFilter builds a filter with the same window for every source.
func NewFilter(windowMs uint32) *Filter {
	f := &Filter{}
	for i := range f.window {
		f.window[i] = windowMs
	}
	return f
}

// SetWindow overrides one source's window. Configuration-time only;
// not safe once triggers are flowing.
func (f *Filter) SetWindow(src Source, windowMs uint32) {
	if int(src) < len(f.window) {
		f.window[src] = windowMs
	}
}

// Window returns the configured window for src.
func (f *Filter) Window(src Source) uint32 {
	if int(src) >= len(f.window) {
		return 0
	}
	return f.window[src]
}

// Admit reports whether a trigger at tick now is a genuine event for
// src. On acceptance it records now as the source's last accepted tick.
// The very first trigger on a source is always admitted. Elapsed time
// is computed with native uint32 subtraction so counter wraparound
// yields the correct small difference.
func (f *Filter) Admit(src Source, now uint32) bool {
	if int(src) >= len(f.window) {
		return false
	}
	if atomic.LoadUint32(&f.primed[src]) != 0 {
		elapsed := now - atomic.LoadUint32(&f.last[src])
		if elapsed <= f.window[src] {
			return false
		}
	}
	atomic.StoreUint32(&f.last[src], now)
	atomic.StoreUint32(&f.primed[src], 1)
	return true
}

// LastAccepted returns the tick of the source's last admitted trigger
// and whether one has occurred yet.
func (f *Filter) LastAccepted(src Source) (uint32, bool) {
	if int(src) >= len(f.window) {
		return 0, false
	}
	if atomic.LoadUint32(&f.primed[src]) == 0 {
		return 0, false
	}
	return atomic.LoadUint32(&f.last[src]), true
}

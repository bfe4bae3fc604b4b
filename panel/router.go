package panel

import "sync/atomic"

// Route binds one raw pin to its debounce source and state machine.
type Route struct {
	Source  Source
	Machine Toggler
}

// Router dispatches raw pin triggers to the debounce filter and, when
// admitted, to the bound state machine. It executes in interrupt
// context: a table lookup, one timebase read, the admit check and a
// state flip. Unrecognized pins are counted and otherwise ignored
// (a configuration defect, not a runtime fault).
type Router struct {
	tb     Timebase
	filter *Filter
	table  map[int]Route // immutable after NewRouter
	notify func()        // optional; must be non-blocking

	admitted uint32 // atomic
	ignored  uint32 // atomic
}

// NewRouter builds a router over a fixed pin table. notify, when
// non-nil, is invoked after every admitted toggle; it must not block
// (a lossy channel send is the intended shape).
func NewRouter(tb Timebase, f *Filter, table map[int]Route, notify func()) *Router {
	t := make(map[int]Route, len(table))
	for pin, rt := range table {
		t[pin] = rt
	}
	return &Router{tb: tb, filter: f, table: t, notify: notify}
}

// OnTrigger handles one raw interrupt trigger for rawPin.
func (r *Router) OnTrigger(rawPin int) {
	rt, ok := r.table[rawPin]
	if !ok {
		atomic.AddUint32(&r.ignored, 1)
		return
	}
	now := r.tb.Ticks()
	if !r.filter.Admit(rt.Source, now) {
		return
	}
	atomic.AddUint32(&r.admitted, 1)
	rt.Machine.Toggle()
	if r.notify != nil {
		r.notify()
	}
}

// Admitted returns the count of triggers that passed the filter.
func (r *Router) Admitted() uint32 { return atomic.LoadUint32(&r.admitted) }

// Ignored returns the count of triggers for unrecognized pins.
func (r *Router) Ignored() uint32 { return atomic.LoadUint32(&r.ignored) }

// Filter exposes the router's debounce filter.
func (r *Router) Filter() *Filter { return r.filter }

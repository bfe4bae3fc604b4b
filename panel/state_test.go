package panel

import "testing"

// fakeOutputs records every actuation call in order.
type fakeOutputs struct {
	duties     []uint8
	modes      []bool
	indicators []bool
}

func (o *fakeOutputs) SetBrightness(p uint8) { o.duties = append(o.duties, p) }
func (o *fakeOutputs) SetMode(inv, ind bool) {
	o.modes = append(o.modes, inv)
	o.indicators = append(o.indicators, ind)
}

var _ Outputs = (*fakeOutputs)(nil)

func TestBrightness_ToggleTwiceReturnsToStart(t *testing.T) {
	out := &fakeOutputs{}
	m := NewBrightnessMachine([]uint8{0, 100}, out)

	start := m.Percent()
	m.Toggle()
	if m.Percent() == start {
		t.Fatal("one toggle must change the level")
	}
	m.Toggle()
	if m.Percent() != start {
		t.Fatalf("two toggles must restore the level, got %d", m.Percent())
	}
}

func TestBrightness_DimmedVariantMapping(t *testing.T) {
	// Dimmed variant: Low -> 50%, High -> 100%. One admitted toggle from
	// the initial Low must produce exactly one set_duty(100) and no
	// intermediate set_duty(50).
	out := &fakeOutputs{}
	m := NewBrightnessMachine([]uint8{50, 100}, out)

	m.Toggle()
	if len(out.duties) != 1 || out.duties[0] != 100 {
		t.Fatalf("duty calls = %v, want exactly [100]", out.duties)
	}
}

func TestBrightness_MultiLevelCycle(t *testing.T) {
	out := &fakeOutputs{}
	m := NewBrightnessMachine([]uint8{0, 25, 50, 75, 100}, out)

	want := []uint8{25, 50, 75, 100, 0, 25}
	for i, w := range want {
		m.Toggle()
		if got := m.Percent(); got != w {
			t.Fatalf("toggle %d: percent = %d, want %d", i+1, got, w)
		}
	}
}

func TestBrightness_EmptyTableFallsBack(t *testing.T) {
	m := NewBrightnessMachine(nil, nil)
	if m.Percent() != 0 {
		t.Fatalf("initial percent = %d, want 0", m.Percent())
	}
	m.Toggle()
	if m.Percent() != 100 {
		t.Fatalf("after toggle percent = %d, want 100", m.Percent())
	}
}

func TestBrightness_LevelsCappedAt100(t *testing.T) {
	out := &fakeOutputs{}
	m := NewBrightnessMachine([]uint8{0, 255}, out)
	m.Toggle()
	if out.duties[0] != 100 {
		t.Fatalf("duty = %d, want capped 100", out.duties[0])
	}
}

func TestBrightness_ApplyPushesCurrentState(t *testing.T) {
	out := &fakeOutputs{}
	m := NewBrightnessMachine([]uint8{50, 100}, out)
	m.Apply()
	if len(out.duties) != 1 || out.duties[0] != 50 {
		t.Fatalf("duty calls = %v, want [50]", out.duties)
	}
	if m.Percent() != 50 {
		t.Fatal("Apply must not transition")
	}
}

func TestMode_ToggleFlipsBothTogether(t *testing.T) {
	out := &fakeOutputs{}
	m := NewModeMachine(out)

	if m.Inverse() || m.IndicatorOn() {
		t.Fatal("initial state must be Normal / indicator Off")
	}
	m.Toggle()
	if !m.Inverse() || !m.IndicatorOn() {
		t.Fatal("after toggle: Inverse / indicator On")
	}
	if len(out.modes) != 1 || !out.modes[0] || !out.indicators[0] {
		t.Fatalf("actuation = %v/%v, want one coupled true/true", out.modes, out.indicators)
	}
	m.Toggle()
	if m.Inverse() || m.IndicatorOn() {
		t.Fatal("two toggles must restore Normal / Off")
	}
}

func TestMode_ApplyWithoutTransition(t *testing.T) {
	out := &fakeOutputs{}
	m := NewModeMachine(out)
	m.Apply()
	if len(out.modes) != 1 || out.modes[0] {
		t.Fatalf("Apply actuation = %v, want [false]", out.modes)
	}
	if m.Inverse() {
		t.Fatal("Apply must not transition")
	}
}

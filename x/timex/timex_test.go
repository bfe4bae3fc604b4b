package timex

import "testing"

func TestElapsed_Simple(t *testing.T) {
	if got := Elapsed(250, 0); got != 250 {
		t.Fatalf("Elapsed(250,0) = %d, want 250", got)
	}
}

func TestElapsed_Wraparound(t *testing.T) {
	// Counter wrapped: then near max, now just past zero.
	var then Ticks = 0xFFFF_FFF0
	var now Ticks = 16
	if got := Elapsed(now, then); got != 32 {
		t.Fatalf("Elapsed across wrap = %d, want 32", got)
	}
}

func TestPeriodFromHz_ZeroCoerced(t *testing.T) {
	if got := PeriodFromHz(0); got != 1_000_000_000 {
		t.Fatalf("PeriodFromHz(0) = %d", got)
	}
}

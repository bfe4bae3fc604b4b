package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Ticks is a free-running millisecond counter in the native unsigned
// width of an MCU tick register. It wraps roughly every 49.7 days.
type Ticks = uint32

var start = time.Now()

// NowTicks returns a process-monotonic millisecond tick, truncated to
// the counter width. Wraparound is expected; compare with Elapsed.
func NowTicks() Ticks {
	return Ticks(time.Since(start) / time.Millisecond)
}

// Elapsed returns now-then in ms. The subtraction is performed in the
// counter's unsigned width, so a wrapped counter still yields the
// correct small difference.
func Elapsed(now, then Ticks) Ticks { return now - then }

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

package firmware

import (
	"time"

	"github.com/chewxy/math32"
)

// Accepted streaming rate bounds. Below MinRateHz the period becomes
// degenerate (tens of seconds per sample); above MaxRateHz the UART
// saturates long before the ADC does.
const (
	MinRateHz float32 = 0.1
	MaxRateHz float32 = 500.0

	// DefaultPeriod is the boot sample period (20 Hz).
	DefaultPeriod = 50 * time.Millisecond
)

// scheduler decides when the next sample is due. It never advances on
// its own: the emitter calls Mark after a successful emission, so a
// burst of Due queries between emissions cannot double-count.
type scheduler struct {
	period time.Duration
	last   time.Time
}

func newScheduler(now time.Time) scheduler {
	return scheduler{period: DefaultPeriod, last: now}
}

// SetRate converts a requested rate in Hz into a sample period.
// Out-of-bounds rates are rejected and the previous period kept.
// The period is clamped to 1ms so very high rates cannot round to zero.
func (s *scheduler) SetRate(hz float32) bool {
	if hz <= MinRateHz || hz > MaxRateHz {
		return false
	}
	ms := math32.Round(1000.0 / hz)
	if ms < 1 {
		ms = 1
	}
	s.period = time.Duration(ms) * time.Millisecond
	return true
}

// Due reports whether a full period has elapsed since the last mark.
func (s *scheduler) Due(now time.Time) bool {
	return now.Sub(s.last) >= s.period
}

// Mark records now as the moment of the latest emission.
func (s *scheduler) Mark(now time.Time) {
	s.last = now
}

package firmware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_SetRate(t *testing.T) {
	tests := []struct {
		name       string
		hz         float32
		wantOK     bool
		wantPeriod time.Duration
	}{
		{"20 Hz", 20, true, 50 * time.Millisecond},
		{"1 Hz", 1, true, time.Second},
		{"3 Hz rounds", 3, true, 333 * time.Millisecond},
		{"500 Hz upper bound", 500, true, 2 * time.Millisecond},
		{"499.9 Hz rounds to 2ms", 499.9, true, 2 * time.Millisecond},
		{"0.2 Hz slow but valid", 0.2, true, 5 * time.Second},
		{"0.1 Hz rejected", 0.1, false, 0},
		{"zero rejected", 0, false, 0},
		{"negative rejected", -5, false, 0},
		{"above max rejected", 500.1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScheduler(time.Now())
			prev := s.period

			ok := s.SetRate(tt.hz)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantPeriod, s.period)
			} else {
				// Rejected rates leave the previous period intact.
				assert.Equal(t, prev, s.period)
			}
		})
	}
}

func TestScheduler_PeriodNeverZero(t *testing.T) {
	s := newScheduler(time.Now())
	for _, hz := range []float32{100, 250, 400, 499, 500} {
		assert.True(t, s.SetRate(hz))
		assert.GreaterOrEqual(t, s.period, time.Millisecond, "hz=%v", hz)
	}
}

func TestScheduler_DueAndMark(t *testing.T) {
	t0 := time.Now()
	s := newScheduler(t0)

	assert.False(t, s.Due(t0))
	assert.False(t, s.Due(t0.Add(49*time.Millisecond)))
	assert.True(t, s.Due(t0.Add(50*time.Millisecond)))

	// Due does not auto-advance: asking twice is still due.
	assert.True(t, s.Due(t0.Add(50*time.Millisecond)))

	s.Mark(t0.Add(50 * time.Millisecond))
	assert.False(t, s.Due(t0.Add(60*time.Millisecond)))
	assert.True(t, s.Due(t0.Add(100*time.Millisecond)))
}

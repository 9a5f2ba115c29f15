package device

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnectedMock(t *testing.T) *Mock {
	t.Helper()
	m := NewMock()
	require.NoError(t, m.Connect())
	t.Cleanup(func() { m.Close() })
	return m
}

// collect reads up to n samples or gives up after the timeout.
func collect(t *testing.T, m *Mock, n int, timeout time.Duration) []RawSample {
	t.Helper()
	var got []RawSample
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case s, ok := <-m.Samples():
			if !ok {
				return got
			}
			got = append(got, s)
		case <-deadline:
			t.Fatalf("timed out: got %d of %d samples", len(got), n)
		}
	}
	return got
}

func TestMock_ConnectAndPing(t *testing.T) {
	m := newConnectedMock(t)

	assert.True(t, m.IsConnected())
	assert.NoError(t, m.Ping())
	assert.Error(t, m.Connect(), "double connect should fail")
}

func TestMock_CommandsBeforeConnect(t *testing.T) {
	m := NewMock()
	assert.ErrorIs(t, m.Ping(), errNotConnected)
	assert.False(t, m.IsConnected())
}

func TestMock_ServoGuard(t *testing.T) {
	m := newConnectedMock(t)

	assert.NoError(t, m.SetServo(10))
	assert.NoError(t, m.SetServo(0))
	assert.NoError(t, m.SetServo(30))

	err := m.SetServo(45)
	require.Error(t, err)
	var devErr *DeviceError
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, "ServoOutOfRange", devErr.Reason)

	// The interpreter stays responsive after a rejection.
	assert.NoError(t, m.Ping())
}

func TestMock_RateGuard(t *testing.T) {
	m := newConnectedMock(t)

	assert.NoError(t, m.SetRate(20))
	assert.NoError(t, m.SetRate(500))

	for _, hz := range []float64{0, 0.1, -1, 501, 1000} {
		err := m.SetRate(hz)
		require.Error(t, err, "hz=%v", hz)
		var devErr *DeviceError
		require.True(t, errors.As(err, &devErr))
		assert.Equal(t, "RateOutOfRange", devErr.Reason)
	}
}

func TestMock_Streaming(t *testing.T) {
	m := newConnectedMock(t)

	require.NoError(t, m.SetRawMode(false))
	require.NoError(t, m.SetServo(10))
	require.NoError(t, m.SetRate(100))
	require.NoError(t, m.StartStream())

	got := collect(t, m, 5, 2*time.Second)
	require.Len(t, got, 5)

	for i, s := range got {
		assert.Equal(t, 10, s.ServoDeg)
		assert.InDelta(t, 1.65, s.Divider, 1.65, "volts stay within the ADC range")
		assert.InDelta(t, 1.65, s.RF, 1.65)
		assert.InDelta(t, 1.65, s.Photo, 1.65)
		if i > 0 {
			assert.GreaterOrEqual(t, s.Millis, got[i-1].Millis)
		}
	}

	require.NoError(t, m.StopStream())
}

func TestMock_RawMode(t *testing.T) {
	m := newConnectedMock(t)

	require.NoError(t, m.SetRawMode(true))
	require.NoError(t, m.SetRate(100))
	require.NoError(t, m.StartStream())

	for _, s := range collect(t, m, 3, 2*time.Second) {
		for _, v := range []float64{s.Divider, s.RF, s.Photo} {
			assert.Equal(t, math.Trunc(v), v, "raw mode values are whole counts")
			assert.LessOrEqual(t, v, float64(4095))
			assert.GreaterOrEqual(t, v, float64(0))
		}
	}
}

func TestMock_GracefulShutdown(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Connect())
	require.NoError(t, m.SetRate(100))
	require.NoError(t, m.StartStream())

	// Let a few samples flow, then close mid-stream.
	collect(t, m, 2, 2*time.Second)
	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	// The samples channel drains and closes.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-m.Samples():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("samples channel never closed")
		}
	}
}

func TestMock_CloseTwice(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Connect())
	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

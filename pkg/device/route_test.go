package device

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantSamples int
		wantAcks    int
	}{
		{"data record", "DATA,100,5,0.9,0.6,0.1", 1, 0},
		{"data with crlf residue", "DATA,100,5,0.9,0.6,0.1\r", 1, 0},
		{"ok ack", "OK", 0, 1},
		{"pong ack", "PONG", 0, 1},
		{"error ack", "ERROR,ServoOutOfRange", 0, 1},
		{"ready skipped", "READY", 0, 0},
		{"info skipped", "INFO,tesla-monitor firmware", 0, 0},
		{"blank skipped", "", 0, 0},
		{"garbage skipped", "garbage line", 0, 0},
		{"malformed data dropped", "DATA,not,a,valid,record,x", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make(chan RawSample, 4)
			acks := make(chan string, 4)

			routeLine(tt.line, samples, acks)

			assert.Len(t, samples, tt.wantSamples)
			assert.Len(t, acks, tt.wantAcks)
		})
	}
}

func TestRouteLine_FullChannelDoesNotBlock(t *testing.T) {
	samples := make(chan RawSample) // unbuffered, nobody reading
	acks := make(chan string)

	done := make(chan struct{})
	go func() {
		routeLine("DATA,100,5,0.9,0.6,0.1", samples, acks)
		routeLine("OK", samples, acks)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("routeLine blocked on a full channel")
	}
}

func TestAwaitAck(t *testing.T) {
	t.Run("expected ack", func(t *testing.T) {
		acks := make(chan string, 1)
		acks <- "OK"
		assert.NoError(t, awaitAck(acks, "OK", time.Second))
	})

	t.Run("device error", func(t *testing.T) {
		acks := make(chan string, 1)
		acks <- "ERROR,RateOutOfRange"

		err := awaitAck(acks, "OK", time.Second)
		require.Error(t, err)

		var devErr *DeviceError
		require.True(t, errors.As(err, &devErr))
		assert.Equal(t, "RateOutOfRange", devErr.Reason)
	})

	t.Run("stale ack skipped", func(t *testing.T) {
		acks := make(chan string, 2)
		acks <- "OK"
		acks <- "PONG"
		assert.NoError(t, awaitAck(acks, "PONG", time.Second))
	})

	t.Run("timeout", func(t *testing.T) {
		acks := make(chan string, 1)
		err := awaitAck(acks, "OK", 20*time.Millisecond)
		assert.ErrorIs(t, err, errAckTimeout)
	})
}

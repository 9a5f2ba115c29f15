package firmware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll pushes every byte of s and collects completed lines and errors.
func feedAll(l *lineBuffer, s string) (lines []string, errs int) {
	for i := 0; i < len(s); i++ {
		line, ok, err := l.Feed(s[i])
		if err != nil {
			errs++
		}
		if ok {
			lines = append(lines, line)
		}
	}
	return lines, errs
}

func TestLineBuffer_Feed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"crlf line", "SERVO=15\r\n", []string{"SERVO=15"}},
		{"lf only", "PING\n", []string{"PING"}},
		{"bare cr stripped", "PI\rNG\n", []string{"PING"}},
		{"two lines", "START\nSTOP\n", []string{"START", "STOP"}},
		{"empty line", "\n", []string{""}},
		{"no terminator", "PING", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l lineBuffer
			lines, errs := feedAll(&l, tt.input)
			assert.Equal(t, tt.want, lines)
			assert.Zero(t, errs)
		})
	}
}

func TestLineBuffer_ByteAtATime(t *testing.T) {
	var l lineBuffer
	input := "SERVO=15\r\n"

	var got []string
	for i := 0; i < len(input); i++ {
		line, ok, err := l.Feed(input[i])
		require.NoError(t, err)
		if ok {
			got = append(got, line)
		}
	}

	assert.Equal(t, []string{"SERVO=15"}, got)
}

func TestLineBuffer_Overflow(t *testing.T) {
	var l lineBuffer

	// 129 bytes without a newline: exactly one overflow report.
	junk := make([]byte, MaxLineLen+1)
	for i := range junk {
		junk[i] = 'X'
	}
	errs := 0
	for _, b := range junk {
		_, ok, err := l.Feed(b)
		assert.False(t, ok)
		if err != nil {
			errs++
		}
	}
	assert.Equal(t, 1, errs)

	// Accumulation restarted: a well-formed line still comes through.
	lines, errs := feedAll(&l, "PING\n")
	assert.Zero(t, errs)
	assert.Equal(t, []string{"PING"}, lines)
}

func TestLineBuffer_MaxLengthLineFits(t *testing.T) {
	var l lineBuffer

	line := make([]byte, MaxLineLen)
	for i := range line {
		line[i] = 'A'
	}
	for _, b := range line {
		_, ok, err := l.Feed(b)
		require.NoError(t, err)
		require.False(t, ok)
	}

	got, ok, err := l.Feed('\n')
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, MaxLineLen)
}

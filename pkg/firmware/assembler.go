package firmware

import "errors"

// MaxLineLen bounds a single command line. Anything longer is garbage
// from a host that forgot its newline; the buffer is dropped rather
// than grown.
const MaxLineLen = 128

// errLineTooLong is reported once per oversized run of bytes.
var errLineTooLong = errors.New("command line too long")

// lineBuffer reconstructs complete command lines from a byte stream.
// Carriage returns are discarded so both \r\n and bare \r hosts work.
type lineBuffer struct {
	buf [MaxLineLen]byte
	n   int
}

// Feed consumes one byte. When b completes a line, the line (without
// its terminator) is returned with ok=true and the buffer resets.
// When the buffer would overflow, it is discarded, the offending byte
// is dropped, and errLineTooLong is returned; accumulation restarts
// with the next byte.
func (l *lineBuffer) Feed(b byte) (line string, ok bool, err error) {
	switch {
	case b == '\r':
		return "", false, nil
	case b == '\n':
		line = string(l.buf[:l.n])
		l.n = 0
		return line, true, nil
	case l.n >= MaxLineLen:
		l.n = 0
		return "", false, errLineTooLong
	default:
		l.buf[l.n] = b
		l.n++
		return "", false, nil
	}
}

package firmware

import (
	"io"
	"strings"
	"time"
)

// Servo travel limits in degrees. The arm swings a pickup loop over
// the secondary coil; past 30 degrees it can touch the winding, so the
// guard refuses anything outside this range no matter what the host asks.
const (
	ServoMinDeg = 0
	ServoMaxDeg = 30
)

// Controller is the device state machine: it owns the servo position,
// the streaming flags and the sample schedule, and mutates them only
// through complete command lines. One instance per device; hosts create
// isolated instances in tests.
type Controller struct {
	hw    Hardware
	out   io.Writer
	start time.Time

	servoDeg  int
	streaming bool
	rawMode   bool
	sched     scheduler

	line lineBuffer
}

// New returns a controller with boot defaults: servo parked at 0,
// streaming off, voltage output, 20 Hz schedule. The servo is driven
// to its park position immediately so the arm state matches ours.
func New(hw Hardware, out io.Writer, now time.Time) *Controller {
	c := &Controller{
		hw:    hw,
		out:   out,
		start: now,
		sched: newScheduler(now),
	}
	c.hw.SetServo(c.servoDeg)
	return c
}

// Banner writes the startup lines. Hosts are expected to skip any
// non-DATA line they do not recognize, so the INFO contents are free-form.
func (c *Controller) Banner() {
	c.reply("INFO,tesla-monitor firmware")
	c.reply("INFO,commands=PING|START|STOP|SERVO=<deg>|RATE=<hz>|RAW=<0|1>")
	c.reply("READY")
}

// Feed consumes one inbound byte. Complete lines are interpreted
// immediately; an oversized line is reported and dropped, and the
// stream keeps working.
func (c *Controller) Feed(b byte) {
	line, ok, err := c.line.Feed(b)
	if err != nil {
		c.reply("ERROR,CmdTooLong")
		return
	}
	if ok {
		c.Execute(line)
	}
}

// Tick runs one pass of the sampling side of the loop: if streaming is
// on and a sample is due, acquire and emit one record. Command handling
// is independent (see Feed).
func (c *Controller) Tick(now time.Time) {
	if !c.streaming || !c.sched.Due(now) {
		return
	}
	c.emit(now)
	c.sched.Mark(now)
}

// Execute interprets one complete command line. Leading whitespace and
// control bytes are stripped; an empty result is ignored without a
// response (idle keepalive bytes are common and harmless).
func (c *Controller) Execute(line string) {
	line = trimLeading(line)

	switch {
	case line == "":
		// no response
	case line == "PING":
		c.reply("PONG")
	case line == "START":
		c.streaming = true
		c.reply("OK")
	case line == "STOP":
		c.streaming = false
		c.reply("OK")
	case strings.HasPrefix(line, "SERVO="):
		if c.applyServo(atoiPrefix(line[len("SERVO="):])) {
			c.reply("OK")
		} else {
			c.reply("ERROR,ServoOutOfRange")
		}
	case strings.HasPrefix(line, "RATE="):
		if c.sched.SetRate(atofPrefix(line[len("RATE="):])) {
			c.reply("OK")
		} else {
			c.reply("ERROR,RateOutOfRange")
		}
	case strings.HasPrefix(line, "RAW="):
		c.rawMode = atoiPrefix(line[len("RAW="):]) != 0
		c.reply("OK")
	default:
		c.reply("ERROR,UnknownCommand")
	}
}

// applyServo validates the requested angle before anything is touched.
// The hardware is driven only after the request is known good; a
// rejected request leaves both the state and the physical servo alone.
func (c *Controller) applyServo(deg int) bool {
	if deg < ServoMinDeg || deg > ServoMaxDeg {
		return false
	}
	c.servoDeg = deg
	c.hw.SetServo(deg)
	return true
}

// emit performs one acquisition and writes the record.
func (c *Controller) emit(now time.Time) {
	var readings [NumChannels]uint16
	for ch := range readings {
		readings[ch] = c.hw.ReadChannel(ch)
	}
	ms := uint32(now.Sub(c.start).Milliseconds())
	c.reply(formatDataLine(ms, c.servoDeg, readings, c.rawMode))
}

func (c *Controller) reply(s string) {
	io.WriteString(c.out, s)
	io.WriteString(c.out, "\n")
}

// trimLeading strips leading whitespace and control characters.
func trimLeading(s string) string {
	i := 0
	for i < len(s) && s[i] <= ' ' {
		i++
	}
	return s[i:]
}

package device

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"tesla-monitor/pkg/firmware"
)

// mockTick is how often the mock runs one pass of the firmware control
// loop. Fast enough that even a 500 Hz schedule stays roughly on time.
const mockTick = 2 * time.Millisecond

// Mock simulates a monitor device for testing and development. Unlike
// a canned-response fake, it runs the real firmware controller against
// synthesized analog inputs, so command handling, the servo guard and
// the sampling schedule all behave exactly as on the MCU.
type Mock struct {
	samples chan RawSample
	acks    chan string

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	ctrl *firmware.Controller
	hw   *simHardware
}

// NewMock creates a new mocked device instance.
func NewMock() *Mock {
	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		samples: make(chan RawSample, DefaultBufferSize),
		acks:    make(chan string, 8),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect boots the simulated firmware and starts its control loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	now := time.Now()
	m.hw = newSimHardware(now)
	m.ctrl = firmware.New(m.hw, &lineWriter{route: m.route}, now)
	m.ctrl.Banner()
	m.connected = true

	go m.run()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

func (m *Mock) Ping() error              { return m.command("PING", "PONG") }
func (m *Mock) StartStream() error       { return m.command("START", "OK") }
func (m *Mock) StopStream() error        { return m.command("STOP", "OK") }
func (m *Mock) SetServo(deg int) error   { return m.command(fmt.Sprintf("SERVO=%d", deg), "OK") }
func (m *Mock) SetRate(hz float64) error { return m.command(fmt.Sprintf("RATE=%g", hz), "OK") }

func (m *Mock) SetRawMode(raw bool) error {
	if raw {
		return m.command("RAW=1", "OK")
	}
	return m.command("RAW=0", "OK")
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// command feeds one protocol line into the simulated firmware and
// waits for the acknowledgement it produced.
func (m *Mock) command(cmd, want string) error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return errNotConnected
	}
	for i := 0; i < len(cmd); i++ {
		m.ctrl.Feed(cmd[i])
	}
	m.ctrl.Feed('\n')
	m.mu.Unlock()

	if err := awaitAck(m.acks, want, DefaultAckTimeout); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// run is the simulated control loop.
func (m *Mock) run() {
	ticker := time.NewTicker(mockTick)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.mu.Lock()
			if m.connected {
				m.hw.update(now)
				m.ctrl.Tick(now)
			}
			m.mu.Unlock()
		}
	}
}

func (m *Mock) route(line string) {
	routeLine(line, m.samples, m.acks)
}

// lineWriter splits the firmware's output byte stream back into lines.
type lineWriter struct {
	route   func(string)
	pending []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.route(string(w.pending))
			w.pending = w.pending[:0]
			continue
		}
		w.pending = append(w.pending, b)
	}
	return len(p), nil
}

// simHardware synthesizes plausible analog channel behavior: the
// divider channel sits near its operating point with a slow wobble,
// the RF pickup rings, and the photodiode flickers with an amplitude
// that grows as the arm swings closer to the coil.
type simHardware struct {
	start    time.Time
	servoDeg int
	channels [firmware.NumChannels]uint16
}

func newSimHardware(now time.Time) *simHardware {
	h := &simHardware{start: now}
	h.update(now)
	return h
}

func (h *simHardware) update(now time.Time) {
	t := now.Sub(h.start).Seconds()
	arm := float64(h.servoDeg) / 30.0

	div := 0.93 + 0.02*math.Sin(2*math.Pi*0.5*t)
	rf := 0.60 + (0.10+0.25*arm)*math.Sin(2*math.Pi*3*t)
	photo := 0.08 + (0.02+0.06*arm)*(1+math.Sin(2*math.Pi*7*t))/2

	h.channels[firmware.ChanDivider] = toADC(div)
	h.channels[firmware.ChanRF] = toADC(rf)
	h.channels[firmware.ChanPhoto] = toADC(photo)
}

func (h *simHardware) ReadChannel(ch int) uint16 {
	return h.channels[ch]
}

func (h *simHardware) SetServo(deg int) {
	h.servoDeg = deg
}

// toADC converts a simulated voltage into a 12-bit reading.
func toADC(v float64) uint16 {
	counts := v / float64(firmware.VRef) * firmware.MaxRaw
	if counts < 0 {
		counts = 0
	} else if counts > firmware.MaxRaw {
		counts = firmware.MaxRaw
	}
	return uint16(counts)
}

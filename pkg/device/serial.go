package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the firmware UART configuration.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the monitor MCU over a serial port.
type Serial struct {
	port       string
	baudRate   int
	bufSize    int
	ackTimeout time.Duration

	conn      serial.Port
	samples   chan RawSample
	acks      chan string
	cmdMu     sync.Mutex // serializes command/ack exchanges
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device with the specified port, baud rate,
// and sample buffer size. Zero values pick the defaults.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:       port,
		baudRate:   baudRate,
		bufSize:    bufSize,
		ackTimeout: DefaultAckTimeout,
		samples:    make(chan RawSample, bufSize),
		acks:       make(chan string, 8),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{Name: name, Description: name})
	}

	return result, nil
}

// Connect opens the serial port and starts the reader goroutine.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readLines()

	return nil
}

// Close closes the connection and stops the reader goroutine.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// Ping verifies the device is alive (PING -> PONG).
func (d *Serial) Ping() error {
	return d.command("PING", "PONG")
}

// StartStream enables autonomous data emission (START -> OK).
func (d *Serial) StartStream() error {
	return d.command("START", "OK")
}

// StopStream disables autonomous data emission (STOP -> OK).
func (d *Serial) StopStream() error {
	return d.command("STOP", "OK")
}

// SetServo moves the pickup arm. The firmware guard enforces its own
// range; an out-of-range request comes back as a *DeviceError.
func (d *Serial) SetServo(deg int) error {
	return d.command(fmt.Sprintf("SERVO=%d", deg), "OK")
}

// SetRate requests a streaming rate in Hz.
func (d *Serial) SetRate(hz float64) error {
	return d.command(fmt.Sprintf("RATE=%g", hz), "OK")
}

// SetRawMode selects ADC counts (true) or volts (false) in DATA records.
func (d *Serial) SetRawMode(raw bool) error {
	if raw {
		return d.command("RAW=1", "OK")
	}
	return d.command("RAW=0", "OK")
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// command sends one protocol line and waits for its acknowledgement.
func (d *Serial) command(cmd, want string) error {
	d.cmdMu.Lock()
	defer d.cmdMu.Unlock()

	d.mu.RLock()
	conn := d.conn
	connected := d.connected
	d.mu.RUnlock()

	if !connected || conn == nil {
		return errNotConnected
	}

	// Drop acks left over from exchanges that timed out earlier.
	for {
		select {
		case <-d.acks:
			continue
		default:
		}
		break
	}

	if _, err := conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	if err := awaitAck(d.acks, want, d.ackTimeout); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// readLines reads device output line by line and routes each one.
func (d *Serial) readLines() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}
			routeLine(scanner.Text(), d.samples, d.acks)
		}
	}
}

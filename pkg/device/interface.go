package device

// Device defines the interface for tesla-monitor devices (real or mocked).
type Device interface {
	Connect() error
	Close() error

	// Samples returns the stream of parsed DATA records. The channel is
	// closed when the device is closed.
	Samples() <-chan RawSample

	// Command surface, one protocol exchange each. Every call waits for
	// the device acknowledgement and returns an error when the device
	// answers ERROR,<reason> or stays silent past the timeout.
	Ping() error
	StartStream() error
	StopStream() error
	SetServo(deg int) error
	SetRate(hz float64) error
	SetRawMode(raw bool) error

	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)

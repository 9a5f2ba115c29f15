package firmware

// Analog input channels sampled by the controller, in DATA field order.
const (
	ChanDivider = iota // secondary voltage, through the resistor divider
	ChanRF             // RF pickup loop
	ChanPhoto          // photodiode (corona/arc light)

	NumChannels
)

// Hardware abstracts the analog inputs and the servo output so the
// controller core can run on a host without an MCU attached.
type Hardware interface {
	// ReadChannel returns the current quantized reading of one analog
	// channel, in [0, MaxRaw].
	ReadChannel(ch int) uint16

	// SetServo drives the servo to the given angle in degrees. Called
	// only with angles the guard has already accepted.
	SetServo(deg int)
}

// Stub is an in-memory Hardware implementation for tests and the mock
// device. Channel values are whatever was last stored in Channels.
type Stub struct {
	Channels    [NumChannels]uint16
	ServoDeg    int
	ServoWrites int
}

func (s *Stub) ReadChannel(ch int) uint16 {
	return s.Channels[ch]
}

func (s *Stub) SetServo(deg int) {
	s.ServoDeg = deg
	s.ServoWrites++
}

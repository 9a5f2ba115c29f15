package device

import (
	"errors"
	"fmt"
)

var (
	errNotConnected = errors.New("not connected")
	errAckTimeout   = errors.New("timed out waiting for device reply")
)

// DeviceError is a rejection reported by the device itself, e.g.
// ERROR,ServoOutOfRange in response to an out-of-range SERVO command.
type DeviceError struct {
	Reason string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device rejected command: %s", e.Reason)
}

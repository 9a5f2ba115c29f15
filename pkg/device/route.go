package device

import (
	"log"
	"strings"
	"time"
)

// DefaultAckTimeout bounds how long a command waits for its reply.
const DefaultAckTimeout = 2 * time.Second

// routeLine dispatches one device output line to the right consumer.
// DATA records go to the sample channel, acknowledgements (OK, PONG,
// ERROR,...) to the ack channel. Anything else — READY, INFO banners,
// boot noise — is tolerated and skipped, as the protocol requires.
// Neither send blocks: a full sample channel drops the record, a full
// ack channel drops the stale ack.
func routeLine(line string, samples chan<- RawSample, acks chan<- string) {
	line = strings.TrimSpace(line)

	switch {
	case line == "":
		// idle keepalive / blank line

	case strings.HasPrefix(line, "DATA,"):
		sample, err := parseDataLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			return
		}
		select {
		case samples <- sample:
		default:
			log.Printf("Samples channel full, dropping sample")
		}

	case line == "OK" || line == "PONG" || strings.HasPrefix(line, "ERROR,"):
		select {
		case acks <- line:
		default:
		}

	default:
		// READY / INFO / unrecognized lines are not an error.
	}
}

// awaitAck waits for the expected acknowledgement. An ERROR reply from
// the device fails the command immediately; unrelated acks are skipped.
func awaitAck(acks <-chan string, want string, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		select {
		case got, ok := <-acks:
			if !ok {
				return errNotConnected
			}
			if got == want {
				return nil
			}
			if reason, isErr := strings.CutPrefix(got, "ERROR,"); isErr {
				return &DeviceError{Reason: reason}
			}
			// Stale OK/PONG from an earlier exchange; keep waiting.
		case <-deadline.C:
			return errAckTimeout
		}
	}
}

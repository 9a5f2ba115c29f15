package device

import (
	"fmt"
	"strconv"
	"strings"
)

// RawSample is one parsed DATA record as it came off the wire. The
// three channel values are volts when the device runs with RAW=0 and
// whole ADC counts (0..4095) when it runs with RAW=1; the device does
// not tag records with the mode, the host knows what it asked for.
type RawSample struct {
	Millis   uint32 // device uptime at acquisition
	ServoDeg int
	Divider  float64
	RF       float64
	Photo    float64
}

// parseDataLine parses a line from the device into a RawSample.
// Format: DATA,<ms>,<servo_deg>,<v_div>,<v_rf>,<v_photo>
// Example: DATA,12345,10,0.9150,0.6231,0.1042
func parseDataLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 6 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 6 comma-separated fields, got %d", len(parts))
	}
	if parts[0] != "DATA" {
		return RawSample{}, fmt.Errorf("invalid tag: %q", parts[0])
	}

	millis, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	servoDeg, err := strconv.Atoi(parts[2])
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid servo angle: %w", err)
	}

	// Channel values parse as floats in both modes; raw-mode integers
	// are just floats without a fractional part.
	var vals [3]float64
	for i, p := range parts[3:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return RawSample{}, fmt.Errorf("invalid channel value %q: %w", p, err)
		}
		vals[i] = v
	}

	return RawSample{
		Millis:   uint32(millis),
		ServoDeg: servoDeg,
		Divider:  vals[0],
		RF:       vals[1],
		Photo:    vals[2],
	}, nil
}

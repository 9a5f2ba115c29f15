package firmware

import "fmt"

// formatDataLine renders one data record:
//
//	DATA,<ms>,<servo_deg>,<v1>,<v2>,<v3>
//
// In raw mode the three readings are the ADC counts as-is; otherwise
// each is converted to volts and printed with 4 decimals. No averaging
// happens here or anywhere else in the firmware: every record is one
// instantaneous acquisition.
func formatDataLine(ms uint32, servoDeg int, readings [NumChannels]uint16, rawMode bool) string {
	if rawMode {
		return fmt.Sprintf("DATA,%d,%d,%d,%d,%d",
			ms, servoDeg, readings[0], readings[1], readings[2])
	}
	return fmt.Sprintf("DATA,%d,%d,%.4f,%.4f,%.4f",
		ms, servoDeg, Volts(readings[0]), Volts(readings[1]), Volts(readings[2]))
}

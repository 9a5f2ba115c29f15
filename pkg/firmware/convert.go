package firmware

// ADC and protocol constants shared by the firmware core and its hosts.
const (
	// ADCBits is the converter resolution.
	ADCBits = 12
	// MaxRaw is the largest reading a channel can produce (2^12 - 1).
	MaxRaw = 4095
	// VRef is the ADC reference voltage. Readings scale linearly
	// against it; this is a nominal value, not a calibration.
	VRef float32 = 3.3
)

// Volts maps a raw quantized reading to an approximate voltage.
// Volts(0) == 0 and Volts(MaxRaw) == VRef.
func Volts(raw uint16) float32 {
	return float32(raw) * VRef / MaxRaw
}

//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Analog input pins
	PIN_ADC_DIVIDER = machine.A1 // secondary voltage through resistor divider
	PIN_ADC_RF      = machine.A2 // RF pickup loop
	PIN_ADC_PHOTO   = machine.A3 // photodiode

	// Servo output
	PIN_SERVO          = machine.D2
	SERVO_PERIOD_US    = 20000 // 50 Hz servo frame
	SERVO_MIN_PULSE_US = 544   // pulse width at 0 degrees
	SERVO_MAX_PULSE_US = 2400  // pulse width at 180 degrees

	// Serial configuration
	// Worst-case line: "DATA,4294967295,30,4095,4095,4095\n" = ~34 bytes.
	// 500 lines/sec * 34 bytes = 17,000 bytes/sec = 170,000 baud raw.
	// At the default 20 Hz the load is ~700 bytes/sec; 115200 gives
	// ample headroom for every rate the scheduler accepts below ~300 Hz.
	UART_BAUD_RATE = 115200
)

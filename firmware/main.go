//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"tesla-monitor/pkg/firmware"
)

var (
	adcDivider machine.ADC
	adcRF      machine.ADC
	adcPhoto   machine.ADC

	servoPWM = machine.TCC0
	servoCh  uint8

	uart = machine.UART0
)

// board implements firmware.Hardware on the real pins.
type board struct{}

func (board) ReadChannel(ch int) uint16 {
	switch ch {
	case firmware.ChanDivider:
		return adcDivider.Get()
	case firmware.ChanRF:
		return adcRF.Get()
	default:
		return adcPhoto.Get()
	}
}

func (board) SetServo(deg int) {
	// Standard hobby-servo pulse: SERVO_MIN_PULSE_US..SERVO_MAX_PULSE_US
	// maps 0..180 degrees inside a 20ms frame. The guard only ever asks
	// for 0..30.
	pulseUs := SERVO_MIN_PULSE_US + deg*(SERVO_MAX_PULSE_US-SERVO_MIN_PULSE_US)/180
	servoPWM.Set(servoCh, uint32(uint64(servoPWM.Top())*uint64(pulseUs)/SERVO_PERIOD_US))
}

func main() {
	// Configure ADC pins and set up ADCs with 12-bit resolution
	machine.InitADC()

	PIN_ADC_DIVIDER.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_ADC_RF.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_ADC_PHOTO.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcDivider = machine.ADC{Pin: PIN_ADC_DIVIDER}
	adcRF = machine.ADC{Pin: PIN_ADC_RF}
	adcPhoto = machine.ADC{Pin: PIN_ADC_PHOTO}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcDivider.Configure(adcConfig)
	adcRF.Configure(adcConfig)
	adcPhoto.Configure(adcConfig)

	// Servo PWM at a 50 Hz frame
	servoPWM.Configure(machine.PWMConfig{
		Period: SERVO_PERIOD_US * 1000, // ns
	})
	servoCh, _ = servoPWM.Channel(PIN_SERVO)

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	ctrl := firmware.New(board{}, uart, time.Now())
	ctrl.Banner()

	// Main loop
	for {
		// Drain pending serial input (non-blocking)
		for uart.Buffered() > 0 {
			b, err := uart.ReadByte()
			if err != nil {
				break
			}
			ctrl.Feed(b)
		}

		// Emit a sample when streaming and due
		ctrl.Tick(time.Now())

		// Small delay to prevent a tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

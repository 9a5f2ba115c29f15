package sample

import (
	"log"
	"time"

	"tesla-monitor/pkg/config"
	"tesla-monitor/pkg/device"
)

// Sample represents a processed measurement sample with physical values.
// No filtering or averaging is applied anywhere in the pipeline: each
// Sample corresponds to exactly one DATA record.
type Sample struct {
	Millis   uint32 // device uptime at acquisition
	ServoDeg int
	VIn      float64 // secondary voltage recovered through the divider (V)
	RF       float64 // RF pickup voltage (V)
	Photo    float64 // photodiode voltage (V)
}

// Converter is a function type that converts a RawSample channel to a
// Sample channel.
type Converter func(in <-chan device.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample
// to Sample using the divider geometry from the configuration.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan device.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				select {
				case out <- Convert(raw, cfg):
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// Convert maps one raw record to physical values. When the device ran
// in raw mode the channel fields hold ADC counts and are scaled to
// volts first; in volts mode the firmware already did that.
func Convert(raw device.RawSample, cfg *config.Config) Sample {
	div, rf, photo := raw.Divider, raw.RF, raw.Photo
	if cfg.Sample.RawMode {
		div = adcToVolts(div, cfg.Divider.VRef)
		rf = adcToVolts(rf, cfg.Divider.VRef)
		photo = adcToVolts(photo, cfg.Divider.VRef)
	}

	return Sample{
		Millis:   raw.Millis,
		ServoDeg: raw.ServoDeg,
		VIn:      dividerInput(div, cfg.Divider.RTop, cfg.Divider.RBot),
		RF:       rf,
		Photo:    photo,
	}
}

// adcToVolts converts a 12-bit ADC count to volts.
func adcToVolts(counts float64, vref float64) float64 {
	return counts / 4095.0 * vref
}

// dividerInput recovers the divider input voltage from the voltage
// measured at its tap.
// Formula: V_in = V_out * ((R_top + R_bot) / R_bot)
func dividerInput(vout, rtop, rbot float64) float64 {
	return vout * ((rtop + rbot) / rbot)
}

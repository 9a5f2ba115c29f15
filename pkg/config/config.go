package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the host-side application configuration.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Servo   ServoConfig   `yaml:"servo"`
	Sample  SampleConfig  `yaml:"sample"`
	Divider DividerConfig `yaml:"divider"`
	Capture CaptureConfig `yaml:"capture"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// ServoConfig mirrors the firmware's servo travel limits so the host
// can refuse bad angles before they ever hit the wire.
type ServoConfig struct {
	MinDeg     int `yaml:"min_deg"`
	MaxDeg     int `yaml:"max_deg"`
	DefaultDeg int `yaml:"default_deg"`
}

// SampleConfig contains acquisition parameters requested from the device.
type SampleConfig struct {
	RateHz  float64 `yaml:"rate_hz"`
	RawMode bool    `yaml:"raw_mode"` // true = ADC counts, false = volts
}

// DividerConfig describes the resistor divider in front of the divider
// channel. Measured values, not nominal ones.
type DividerConfig struct {
	RTop float64 `yaml:"r_top"`
	RBot float64 `yaml:"r_bot"`
	VRef float64 `yaml:"vref"`
}

// CaptureConfig contains data-logger run parameters. MaxSeconds is a
// hard safety limit: the coil heats quickly, so runs are kept short.
type CaptureConfig struct {
	Seconds      int    `yaml:"seconds"`
	MinSeconds   int    `yaml:"min_seconds"`
	MaxSeconds   int    `yaml:"max_seconds"`
	PreviewLines int    `yaml:"preview_lines"`
	OutputDir    string `yaml:"output_dir"`
	FilePrefix   string `yaml:"file_prefix"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "COM3", // Default for Windows, "/dev/ttyUSB0" on Linux
			Baud: 115200,
		},
		Servo: ServoConfig{
			MinDeg:     0,
			MaxDeg:     30,
			DefaultDeg: 0,
		},
		Sample: SampleConfig{
			RateHz:  20,
			RawMode: false,
		},
		Divider: DividerConfig{
			RTop: 99800, // 99.8 kOhm measured
			RBot: 9935,  // 9.935 kOhm measured
			VRef: 3.3,
		},
		Capture: CaptureConfig{
			Seconds:      30,
			MinSeconds:   1,
			MaxSeconds:   60,
			PreviewLines: 10,
			OutputDir:    "data",
			FilePrefix:   "run",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}

	if c.Servo.MaxDeg == 0 {
		c.Servo.MaxDeg = def.Servo.MaxDeg
	}

	if c.Sample.RateHz == 0 {
		c.Sample.RateHz = def.Sample.RateHz
	}

	if c.Divider.RTop == 0 {
		c.Divider.RTop = def.Divider.RTop
	}
	if c.Divider.RBot == 0 {
		c.Divider.RBot = def.Divider.RBot
	}
	if c.Divider.VRef == 0 {
		c.Divider.VRef = def.Divider.VRef
	}

	if c.Capture.Seconds == 0 {
		c.Capture.Seconds = def.Capture.Seconds
	}
	if c.Capture.MinSeconds == 0 {
		c.Capture.MinSeconds = def.Capture.MinSeconds
	}
	if c.Capture.MaxSeconds == 0 {
		c.Capture.MaxSeconds = def.Capture.MaxSeconds
	}
	if c.Capture.PreviewLines == 0 {
		c.Capture.PreviewLines = def.Capture.PreviewLines
	}
	if c.Capture.OutputDir == "" {
		c.Capture.OutputDir = def.Capture.OutputDir
	}
	if c.Capture.FilePrefix == "" {
		c.Capture.FilePrefix = def.Capture.FilePrefix
	}
}

// Command datalogger captures a timed run of monitor data over serial
// and stores it as CSV. Flow: verify the link (PING/PONG), force a
// clean state (STOP), configure RAW/RATE, show a short preview so the
// operator can sanity-check the readings, then capture for a fixed
// duration. Nothing is filtered or averaged on the way to disk.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tesla-monitor/pkg/config"
	"tesla-monitor/pkg/device"
	"tesla-monitor/pkg/sample"
)

func main() {
	var (
		portFlag    = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyUSB0)")
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag    = flag.Bool("mock", false, "Use mocked device instead of serial port")
		secondsFlag = flag.Int("seconds", 0, "Capture duration in seconds (overrides config)")
		rateFlag    = flag.Float64("rate", 0, "Sample rate in Hz (overrides config)")
		rawFlag     = flag.Bool("raw", false, "Request raw ADC counts instead of volts")
		servoFlag   = flag.Int("servo", -1, "Servo angle in degrees for this run (-1 = leave as is)")
		yesFlag     = flag.Bool("yes", false, "Skip the confirmation prompt")
		listFlag    = flag.Bool("list", false, "List available serial ports and exit")
	)
	flag.Parse()

	if *listFlag {
		listPorts()
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *secondsFlag > 0 {
		cfg.Capture.Seconds = *secondsFlag
	}
	if *rateFlag > 0 {
		cfg.Sample.RateHz = *rateFlag
	}
	if *rawFlag {
		cfg.Sample.RawMode = true
	}
	if cfg.Capture.Seconds < cfg.Capture.MinSeconds {
		cfg.Capture.Seconds = cfg.Capture.MinSeconds
	}
	if cfg.Capture.Seconds > cfg.Capture.MaxSeconds {
		log.Printf("Capture of %ds exceeds the safety limit, clamping to %ds",
			cfg.Capture.Seconds, cfg.Capture.MaxSeconds)
		cfg.Capture.Seconds = cfg.Capture.MaxSeconds
	}

	var dev device.Device
	if *mockFlag {
		dev = device.NewMock()
	} else {
		dev = device.New(cfg.Serial.Port, cfg.Serial.Baud, 0)
	}

	if err := dev.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer dev.Close()

	if !*mockFlag {
		// Opening the port resets most dev boards; let it boot.
		time.Sleep(2 * time.Second)
	}

	if err := dev.Ping(); err != nil {
		log.Fatalf("No PONG from device (check port/baud/cable): %v", err)
	}

	// The firmware may have been left streaming by a previous run.
	if err := dev.StopStream(); err != nil {
		log.Fatalf("STOP failed: %v", err)
	}
	if err := dev.SetRawMode(cfg.Sample.RawMode); err != nil {
		log.Fatalf("RAW config failed: %v", err)
	}
	if err := dev.SetRate(cfg.Sample.RateHz); err != nil {
		log.Fatalf("RATE config failed: %v", err)
	}
	if *servoFlag >= 0 {
		if err := dev.SetServo(*servoFlag); err != nil {
			log.Fatalf("SERVO=%d failed: %v", *servoFlag, err)
		}
	}

	log.Printf("Connected on %s: rate=%gHz raw=%v duration=%ds",
		cfg.Serial.Port, cfg.Sample.RateHz, cfg.Sample.RawMode, cfg.Capture.Seconds)

	shown, err := preview(dev, cfg)
	if err != nil {
		log.Fatalf("Preview failed: %v", err)
	}
	if shown == 0 {
		log.Fatal("No DATA lines arrived during preview; not starting a capture")
	}

	if !*yesFlag && !confirm() {
		log.Print("Capture cancelled, no CSV written")
		return
	}

	path, rows, err := capture(dev, cfg)
	if err != nil {
		log.Fatalf("Capture failed: %v", err)
	}
	log.Printf("Capture complete: %d rows written to %s", rows, path)
}

func listPorts() {
	ports, err := device.Ports()
	if err != nil {
		log.Fatalf("Failed to list serial ports: %v", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
		return
	}
	for _, p := range ports {
		fmt.Println(p.Name)
	}
}

// preview streams a handful of records to the terminal so the operator
// can confirm the readings look sane before committing to a run.
func preview(dev device.Device, cfg *config.Config) (int, error) {
	log.Printf("Preview: showing %d DATA records...", cfg.Capture.PreviewLines)

	if err := dev.StartStream(); err != nil {
		return 0, err
	}
	defer dev.StopStream()

	shown := 0
	deadline := time.After(5 * time.Second)
	for shown < cfg.Capture.PreviewLines {
		select {
		case raw, ok := <-dev.Samples():
			if !ok {
				return shown, fmt.Errorf("device closed during preview")
			}
			s := sample.Convert(raw, cfg)
			if cfg.Sample.RawMode {
				fmt.Printf("DATA  ms=%-8d servo=%-3d adc_div=%-5.0f adc_rf=%-5.0f adc_photo=%-5.0f\n",
					raw.Millis, raw.ServoDeg, raw.Divider, raw.RF, raw.Photo)
			} else {
				fmt.Printf("DATA  ms=%-8d servo=%-3d v_div=%-7.4f v_rf=%-7.4f v_photo=%-7.4f  (vin=%.2fV)\n",
					raw.Millis, raw.ServoDeg, raw.Divider, raw.RF, raw.Photo, s.VIn)
			}
			shown++
		case <-deadline:
			log.Print("Preview timeout: not enough DATA records arrived")
			return shown, nil
		}
	}
	return shown, nil
}

func confirm() bool {
	fmt.Println("--------------------------------------------")
	fmt.Println("Preview done. Type 'start' to begin the capture, 'cancel' to quit.")
	fmt.Println("--------------------------------------------")

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		switch strings.ToLower(strings.TrimSpace(in.Text())) {
		case "start", "s", "y", "yes":
			return true
		case "cancel", "c", "n", "no", "q", "quit":
			return false
		default:
			fmt.Println("Please type 'start' or 'cancel'.")
		}
	}
	return false
}

// capture records for the configured duration and writes one CSV row
// per DATA record, adding absolute and run-relative time columns.
func capture(dev device.Device, cfg *config.Config) (string, int, error) {
	if err := os.MkdirAll(cfg.Capture.OutputDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%ds.csv",
		cfg.Capture.FilePrefix,
		time.Now().Format("2006-01-02_15-04-05"),
		cfg.Capture.Seconds)
	path := filepath.Join(cfg.Capture.OutputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"ms_abs", "ms_rel", "s_rel", "servo_deg", "v_div", "v_rf", "v_photo"}
	if cfg.Sample.RawMode {
		header = []string{"ms_abs", "ms_rel", "s_rel", "servo_deg", "adc_div", "adc_rf", "adc_photo"}
	}
	if err := w.Write(header); err != nil {
		return "", 0, err
	}

	if err := dev.StartStream(); err != nil {
		return "", 0, err
	}
	defer dev.StopStream()

	log.Printf("Capturing for %d seconds...", cfg.Capture.Seconds)

	valueFmt := "%.4f"
	if cfg.Sample.RawMode {
		valueFmt = "%.0f"
	}

	rows := 0
	var ms0 uint32
	haveFirst := false
	deadline := time.After(time.Duration(cfg.Capture.Seconds) * time.Second)

	for {
		select {
		case raw, ok := <-dev.Samples():
			if !ok {
				return path, rows, fmt.Errorf("device closed during capture")
			}
			// The run's time origin is the first captured record.
			if !haveFirst {
				ms0 = raw.Millis
				haveFirst = true
			}
			msRel := raw.Millis - ms0
			row := []string{
				fmt.Sprintf("%d", raw.Millis),
				fmt.Sprintf("%d", msRel),
				fmt.Sprintf("%.3f", float64(msRel)/1000.0),
				fmt.Sprintf("%d", raw.ServoDeg),
				fmt.Sprintf(valueFmt, raw.Divider),
				fmt.Sprintf(valueFmt, raw.RF),
				fmt.Sprintf(valueFmt, raw.Photo),
			}
			if err := w.Write(row); err != nil {
				return path, rows, err
			}
			rows++
		case <-deadline:
			return path, rows, nil
		}
	}
}

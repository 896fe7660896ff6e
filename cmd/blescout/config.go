package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/blescout/internal/radiosim"
	"github.com/srg/blescout/radio"
	"github.com/srg/blescout/scanner"
)

// scanFlags are the tuning flags shared by the scan and view commands.
type scanFlags struct {
	duration time.Duration
	interval time.Duration
	window   time.Duration
	top      int
	simulate string
}

func registerScanFlags(cmd *cobra.Command, f *scanFlags) {
	def := scanner.DefaultConfig()

	cmd.Flags().DurationVarP(&f.duration, "duration", "d", def.ScanDuration, "Scan duration")
	cmd.Flags().DurationVar(&f.interval, "interval", def.ScanInterval, "Receiver scan interval")
	cmd.Flags().DurationVar(&f.window, "window", def.ScanWindow, "Receiver scan window (must not exceed interval)")
	cmd.Flags().IntVar(&f.top, "top", def.TopN, "Number of beacons to display")
	cmd.Flags().StringVar(&f.simulate, "simulate", "", "Replay the given YAML peripheral script instead of using the radio")
	cmd.Flags().Bool("verbose", false, "Enable debug logging")
}

// buildConfig merges the flag values over the defaults.
func (f *scanFlags) buildConfig() scanner.Config {
	cfg := scanner.DefaultConfig()
	if f.duration > 0 {
		cfg.ScanDuration = f.duration
	}
	if f.interval > 0 {
		cfg.ScanInterval = f.interval
	}
	if f.window > 0 {
		cfg.ScanWindow = f.window
	}
	if f.top > 0 {
		cfg.TopN = f.top
	}
	return cfg
}

// sessionOptions wires the simulated radio in when --simulate is given;
// otherwise the session uses the default HCI-backed factory.
func (f *scanFlags) sessionOptions(logger *logrus.Logger) ([]radio.SessionOption, error) {
	if f.simulate == "" {
		return nil, nil
	}

	sim, err := radiosim.NewFromScript(logger, f.simulate)
	if err != nil {
		return nil, err
	}
	return []radio.SessionOption{
		radio.WithFactory(func() (radio.Radio, error) { return sim, nil }),
	}, nil
}

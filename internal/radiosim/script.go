package radiosim

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so scripts can use "100ms"-style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(time.Duration(n) * time.Millisecond)
	return nil
}

// Script is the YAML document accepted by --simulate.
//
//	peripherals:
//	  - address: "aa:bb:cc:dd:ee:ff"
//	    name: "Badge"
//	    rssi: -45
type Script struct {
	Peripherals []Peripheral `yaml:"peripherals"`
}

// LoadScript parses a simulation script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse simulation script: %w", err)
	}
	if len(s.Peripherals) == 0 {
		return nil, fmt.Errorf("simulation script %q defines no peripherals", path)
	}
	return &s, nil
}

// NewFromScript creates a simulated radio preloaded with the peripherals of
// a YAML script.
func NewFromScript(logger *logrus.Logger, path string) (*Radio, error) {
	s, err := LoadScript(path)
	if err != nil {
		return nil, err
	}

	r := New(logger)
	for _, p := range s.Peripherals {
		r.AddPeripheral(p)
	}
	return r, nil
}

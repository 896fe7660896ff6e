// Package radiosim provides a simulated radio backend: scripted peripherals
// whose advertisements are replayed through the radio event interface. It
// backs the --simulate flag and the test doubles for the scan engine.
package radiosim

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/blescout/advdata"
	"github.com/srg/blescout/radio"
)

// Peripheral is one scripted device. Payload, when set, is the raw
// advertising payload in hex and takes precedence over Name.
type Peripheral struct {
	Address string   `yaml:"address"`
	Name    string   `yaml:"name"`
	RSSI    int      `yaml:"rssi"`
	Payload string   `yaml:"payload,omitempty"`
	Delay   Duration `yaml:"delay,omitempty"`
	Repeat  int      `yaml:"repeat,omitempty"`
}

// Radio is a simulated radio.Radio. Peripheral lookups from the emission
// goroutine go through a concurrent map; the script order is kept separately
// so emission is deterministic.
type Radio struct {
	mu          sync.Mutex
	peripherals *hashmap.Map[string, Peripheral]
	order       []string
	handler     radio.Handler
	active      bool
	cancelScan  context.CancelFunc
	logger      *logrus.Logger

	activateErr error
	scanErr     error
}

// Option configures the simulated radio.
type Option func(*Radio)

// WithActivateError makes Activate(true) fail with err.
func WithActivateError(err error) Option {
	return func(r *Radio) { r.activateErr = err }
}

// WithScanError makes StartScan fail with err.
func WithScanError(err error) Option {
	return func(r *Radio) { r.scanErr = err }
}

// New creates a simulated radio with no peripherals.
func New(logger *logrus.Logger, opts ...Option) *Radio {
	if logger == nil {
		logger = logrus.New()
	}
	r := &Radio{
		peripherals: hashmap.New[string, Peripheral](),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPeripheral adds one scripted device. The same address may appear more
// than once; each entry is a separate sighting in the script. Safe to call
// concurrently with an active scan; the device joins the current script.
func (r *Radio) AddPeripheral(p Peripheral) {
	r.mu.Lock()
	key := fmt.Sprintf("%s#%d", p.Address, len(r.order))
	r.order = append(r.order, key)
	r.mu.Unlock()

	r.peripherals.Set(key, p)
}

// Activate implements radio.Radio.
func (r *Radio) Activate(enable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enable && r.activateErr != nil {
		return r.activateErr
	}
	if !enable && r.cancelScan != nil {
		r.cancelScan()
		r.cancelScan = nil
	}
	r.active = enable
	return nil
}

// IsActive implements radio.Radio.
func (r *Radio) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SubscribeEvents implements radio.Radio.
func (r *Radio) SubscribeEvents(fn radio.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = fn
}

// StartScan implements radio.Radio. The script is replayed on a separate
// goroutine, mirroring the hardware callback context; ScanDoneEvent fires
// once the script is exhausted or the scan duration elapses, whichever comes
// first.
func (r *Radio) StartScan(p radio.ScanParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return radio.ErrNotActive
	}
	if r.scanErr != nil {
		return r.scanErr
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Duration)
	r.cancelScan = cancel

	script := make([]string, len(r.order))
	copy(script, r.order)
	handler := r.handler

	go r.replay(ctx, cancel, script, handler)
	return nil
}

// StopScan implements radio.Radio.
func (r *Radio) StopScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelScan != nil {
		r.cancelScan()
		r.cancelScan = nil
	}
	return nil
}

func (r *Radio) replay(ctx context.Context, cancel context.CancelFunc, script []string, handler radio.Handler) {
	defer cancel()

	emit := func(ev radio.Event) {
		if handler != nil {
			handler(ev)
		}
	}

	for _, key := range script {
		p, ok := r.peripherals.Get(key)
		if !ok {
			continue
		}

		if p.Delay > 0 {
			select {
			case <-ctx.Done():
				emit(radio.ScanDoneEvent{})
				return
			case <-time.After(time.Duration(p.Delay)):
			}
		}

		ev, err := p.discoveryEvent()
		if err != nil {
			r.logger.WithError(err).WithField("address", p.Address).
				Warn("Skipping malformed scripted peripheral")
			continue
		}

		for i := 0; i <= p.Repeat; i++ {
			emit(ev)
		}
	}

	emit(radio.ScanDoneEvent{})
}

func (p Peripheral) discoveryEvent() (radio.DiscoveryEvent, error) {
	hw, err := net.ParseMAC(p.Address)
	if err != nil {
		return radio.DiscoveryEvent{}, fmt.Errorf("invalid peripheral address %q: %w", p.Address, err)
	}

	payload := advdata.NewBuilder().
		Append(advdata.TypeFlags, []byte{0x06}).
		AppendLocalName(p.Name).
		Bytes()
	if p.Payload != "" {
		payload, err = hex.DecodeString(p.Payload)
		if err != nil {
			return radio.DiscoveryEvent{}, fmt.Errorf("invalid payload for %q: %w", p.Address, err)
		}
	}

	return radio.DiscoveryEvent{
		Address: hw,
		RSSI:    p.RSSI,
		Payload: payload,
	}, nil
}

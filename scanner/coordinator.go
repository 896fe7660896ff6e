package scanner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"

	"github.com/srg/blescout/advdata"
	"github.com/srg/blescout/internal/ringchan"
	"github.com/srg/blescout/radio"
)

// Config holds the scan timing parameters.
type Config struct {
	// ScanDuration is the total wall-clock length of one scan.
	ScanDuration time.Duration `default:"2s"`
	// ScanInterval and ScanWindow control the receiver duty cycle. Equal
	// values mean continuous scanning.
	ScanInterval time.Duration `default:"30ms"`
	ScanWindow   time.Duration `default:"30ms"`
	// PollInterval is how often the wait loop checks the completion flag.
	PollInterval time.Duration `default:"100ms"`
	// WaitCeiling bounds the wait for scan completion. Expiry is not a
	// failure; the scan finishes with whatever was collected.
	WaitCeiling time.Duration `default:"3s"`
	// SettleDelay is the post-activation quiescence period.
	SettleDelay time.Duration `default:"300ms"`
	// TopN is how many beacons the display shows.
	TopN int `default:"5"`
	// EventBuffer is the capacity of the discovery-event handoff queue.
	EventBuffer int `default:"128"`
}

// DefaultConfig returns the standard timing profile: a 2s continuous scan
// polled at 100ms under a 3s ceiling.
func DefaultConfig() Config {
	var cfg Config
	defaults.SetDefaults(&cfg)
	return cfg
}

// CoordinatorState tracks where the coordinator is in one scan attempt.
type CoordinatorState int32

const (
	StateIdle CoordinatorState = iota
	StateInitializing
	StateScanning
	StateDone
)

// Coordinator drives one scan attempt end-to-end: radio activation, the
// timed scan command, the timeout-bounded wait for completion, and the
// terminal status. The radio event handler may run on any goroutine; it
// hands discoveries to the coordinator through a ring channel and signals
// completion through an atomic flag.
type Coordinator struct {
	cfg      Config
	session  *radio.Session
	registry *Registry
	events   *ringchan.RingChannel[radio.DiscoveryEvent]
	scanDone atomic.Bool
	busy     atomic.Bool
	state    atomic.Int32
	status   atomic.Value // Status
	logger   *logrus.Logger
}

// NewCoordinator creates a coordinator with its own registry and radio
// session. Session options (typically a radio factory override) are passed
// through.
func NewCoordinator(cfg Config, logger *logrus.Logger, opts ...radio.SessionOption) *Coordinator {
	if logger == nil {
		logger = logrus.New()
	}

	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultConfig().EventBuffer
	}

	c := &Coordinator{
		cfg:      cfg,
		registry: NewRegistry(logger),
		events:   ringchan.New[radio.DiscoveryEvent](cfg.EventBuffer),
		logger:   logger,
	}
	c.status.Store(Status{Kind: StatusIdle})

	sessionOpts := append([]radio.SessionOption{
		radio.WithSettleDelay(cfg.SettleDelay),
	}, opts...)
	c.session = radio.NewSession(logger, c.handleEvent, sessionOpts...)

	return c
}

// Registry exposes the beacon registry for display.
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// Status returns the currently active status.
func (c *Coordinator) Status() Status {
	return c.status.Load().(Status)
}

// State returns the coordinator state.
func (c *Coordinator) State() CoordinatorState {
	return CoordinatorState(c.state.Load())
}

// RequestScan performs exactly one scan attempt and returns its terminal
// status. A second request while one is in flight is a no-op returning the
// current status. Context cancellation ends the wait early with whatever was
// collected.
func (c *Coordinator) RequestScan(ctx context.Context) Status {
	if !c.busy.CompareAndSwap(false, true) {
		return c.Status()
	}
	defer c.busy.Store(false)

	c.state.Store(int32(StateInitializing))
	c.setStatus(Status{Kind: StatusInitializing})
	c.registry.Clear()
	c.scanDone.Store(false)
	c.events.Drain() // discard leftovers from a previous scan

	c.logger.Info("Starting scan")

	if err := c.session.EnsureActive(ctx); err != nil {
		c.logger.WithError(err).Error("Radio activation failed")
		return c.fail(err)
	}

	c.state.Store(int32(StateScanning))
	c.setStatus(Status{Kind: StatusScanning})

	err := c.session.StartScan(radio.ScanParams{
		Duration: c.cfg.ScanDuration,
		Interval: c.cfg.ScanInterval,
		Window:   c.cfg.ScanWindow,
	})
	if err != nil {
		c.logger.WithError(err).Error("Scan start failed")
		return c.fail(err)
	}

	c.waitForCompletion(ctx)
	c.ingestPending()

	st := Status{Kind: StatusCompleted, Count: c.registry.Len()}
	c.state.Store(int32(StateDone))
	c.setStatus(st)

	c.logger.WithField("count", st.Count).Info("Scan completed")
	return st
}

// ClearResults empties the registry on user request.
func (c *Coordinator) ClearResults() {
	c.registry.Clear()
	c.setStatus(Status{Kind: StatusCleared})
}

// Shutdown tears down the radio best-effort. Safe to call regardless of
// session state; it never fails.
func (c *Coordinator) Shutdown() {
	c.session.StopAndDeactivate()
}

// waitForCompletion polls the completion flag until the radio signals
// scan-done, the ceiling elapses, or the context is canceled. Ceiling expiry
// is deliberate success: the scan simply finishes with what was collected.
func (c *Coordinator) waitForCompletion(ctx context.Context) {
	deadline := time.NewTimer(c.cfg.WaitCeiling)
	defer deadline.Stop()
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Scan wait canceled")
			return
		case <-deadline.C:
			c.logger.Debug("Scan wait ceiling elapsed")
			return
		case <-ticker.C:
			c.ingestPending()
			if c.scanDone.Load() {
				return
			}
		}
	}
}

// handleEvent is the radio event callback. It runs outside the coordinator's
// call stack, so it only performs the lock-free handoff: discoveries go into
// the ring channel, scan-done flips the atomic flag.
func (c *Coordinator) handleEvent(ev radio.Event) {
	switch e := ev.(type) {
	case radio.DiscoveryEvent:
		if c.events.ForceSend(e) {
			c.logger.Debug("Discovery queue full, dropped oldest event")
		}
	case radio.ScanDoneEvent:
		c.logger.Debug("Scan complete")
		c.scanDone.Store(true)
	}
}

// ingestPending drains queued discoveries into the registry.
func (c *Coordinator) ingestPending() {
	for {
		ev, ok := c.events.TryReceive()
		if !ok {
			return
		}
		c.ingest(ev)
	}
}

// ingest decodes and records one discovery. A malformed event is logged and
// skipped; it never aborts the scan or affects other beacons.
func (c *Coordinator) ingest(ev radio.DiscoveryEvent) {
	if len(ev.Address) == 0 {
		c.logger.Warn("Dropping discovery event without address")
		return
	}

	name, ok := advdata.DecodeLocalName(ev.Payload)
	if !ok || name == "" {
		name = UnknownName
	}

	c.registry.Upsert(CanonicalAddress(ev.Address), name, ev.RSSI)
}

func (c *Coordinator) setStatus(s Status) {
	c.status.Store(s)
}

func (c *Coordinator) fail(err error) Status {
	st := FailedStatus(err)
	c.state.Store(int32(StateDone))
	c.setStatus(st)
	return st
}

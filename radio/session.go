package radio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultSettleDelay is the quiescence period after powering the radio up.
// Activation completes asynchronously at the hardware level; commands issued
// before the radio settles are silently dropped by some controllers.
const DefaultSettleDelay = 300 * time.Millisecond

// Session owns one radio handle for the lifetime of the application: lazy
// creation, event subscription, scan start/stop, and teardown. Session does
// not retry failed commands; errors return to the caller.
type Session struct {
	mu      sync.Mutex
	factory func() (Radio, error)
	radio   Radio
	handler Handler
	settle  time.Duration
	logger  *logrus.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSettleDelay overrides the post-activation quiescence period.
func WithSettleDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.settle = d }
}

// WithFactory overrides how the radio handle is created.
func WithFactory(f func() (Radio, error)) SessionOption {
	return func(s *Session) { s.factory = f }
}

// NewSession creates a session that will deliver radio events to handler.
// The radio handle itself is created lazily on the first EnsureActive call.
func NewSession(logger *logrus.Logger, handler Handler, opts ...SessionOption) *Session {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Session{
		factory: func() (Radio, error) { return Factory() },
		handler: handler,
		settle:  DefaultSettleDelay,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.radio == nil:
		return StateUninitialized
	case !s.radio.IsActive():
		return StateInactive
	default:
		return StateActive
	}
}

// EnsureActive brings the session to the Active state: it creates the radio
// handle if needed, subscribes the event handler, powers the radio up, and
// waits out the settle period. Idempotent when already active.
func (s *Session) EnsureActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.radio == nil {
		s.logger.Debug("Creating radio handle")
		r, err := s.factory()
		if err != nil {
			return fmt.Errorf("failed to create radio handle: %w", err)
		}
		s.radio = r
	}

	if s.radio.IsActive() {
		return nil
	}

	s.radio.SubscribeEvents(s.handler)

	s.logger.Debug("Activating radio")
	if err := s.radio.Activate(true); err != nil {
		return fmt.Errorf("failed to activate radio: %w", err)
	}

	// Mandatory quiescence period: hardware activation is asynchronous.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.settle):
	}

	s.logger.Debug("Radio active")
	return nil
}

// StartScan issues a single timed scan. Valid only in the Active state.
func (s *Session) StartScan(p ScanParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.radio == nil {
		return ErrUninitialized
	}
	if !s.radio.IsActive() {
		return ErrNotActive
	}
	if err := p.Validate(); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"duration": p.Duration,
		"interval": p.Interval,
		"window":   p.Window,
	}).Debug("Starting scan")

	return s.radio.StartScan(p)
}

// StopAndDeactivate tears the radio down best-effort: it cancels any
// in-flight scan and powers the radio down. Every error is swallowed; this
// path runs during shutdown where no recovery is possible.
func (s *Session) StopAndDeactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.radio == nil {
		return
	}

	if err := s.radio.StopScan(); err != nil {
		s.logger.WithError(err).Debug("Ignoring scan-stop failure during teardown")
	}
	if err := s.radio.Activate(false); err != nil {
		s.logger.WithError(err).Debug("Ignoring deactivation failure during teardown")
	}
}

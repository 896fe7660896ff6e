// Package radio programs the BLE radio subsystem through a small
// command/event interface and owns the lifecycle of the underlying handle.
package radio

import (
	"fmt"
	"time"
)

// Event is an asynchronous notification emitted by the radio subsystem to
// the subscribed handler. It may be delivered on an arbitrary goroutine.
type Event interface {
	isEvent()
}

// DiscoveryEvent reports one received advertisement.
type DiscoveryEvent struct {
	AddressType uint8
	Address     []byte
	AdvType     uint8
	RSSI        int
	Payload     []byte
}

func (DiscoveryEvent) isEvent() {}

// ScanDoneEvent reports that the current scan has ended.
type ScanDoneEvent struct{}

func (ScanDoneEvent) isEvent() {}

// Handler receives radio events.
type Handler func(Event)

// ScanParams are the duty-cycle parameters for a single timed scan.
type ScanParams struct {
	// Duration is the total wall-clock length of the scan.
	Duration time.Duration
	// Interval is how often the receiver starts listening.
	Interval time.Duration
	// Window is how long the receiver listens per interval. Must not
	// exceed Interval.
	Window time.Duration
}

// Validate checks the parameter ranges.
func (p ScanParams) Validate() error {
	if p.Duration <= 0 {
		return fmt.Errorf("scan duration must be positive, got %v", p.Duration)
	}
	if p.Interval <= 0 || p.Window <= 0 {
		return fmt.Errorf("scan interval and window must be positive, got interval=%v window=%v",
			p.Interval, p.Window)
	}
	if p.Window > p.Interval {
		return fmt.Errorf("scan window %v exceeds interval %v", p.Window, p.Interval)
	}
	return nil
}

// Radio is the black-box radio capability. Implementations adapt a concrete
// BLE stack (or a simulator) to this command/event surface.
type Radio interface {
	// Activate powers the radio up or down. Activation may complete
	// asynchronously at the hardware level; see Session.EnsureActive.
	Activate(enable bool) error

	// IsActive reports whether the radio is powered.
	IsActive() bool

	// SubscribeEvents registers the event handler. Must be called before
	// Activate(true); later calls replace the handler.
	SubscribeEvents(fn Handler)

	// StartScan issues a single timed scan. Events arrive via the
	// subscribed handler; a ScanDoneEvent marks the end of the scan.
	StartScan(p ScanParams) error

	// StopScan cancels an in-flight scan, if any.
	StopScan() error
}

// Factory creates the Radio backing a Session. Overridable in tests and by
// the simulator.
var Factory = func() (Radio, error) {
	return newBLERadio()
}

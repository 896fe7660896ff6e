package radio

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/go-ble/ble/linux/hci/cmd"

	"github.com/srg/blescout/advdata"
)

// HCI scan interval/window are expressed in units of 0.625ms, valid range
// 0x0004-0x4000.
const (
	scanUnit    = 625 // microseconds
	scanUnitMin = 0x0004
	scanUnitMax = 0x4000
)

// bleRadio adapts a go-ble HCI device to the Radio interface. The handle is
// created on Activate(true) and torn down on Activate(false); scans run on
// their own goroutine under a duration-bounded context.
type bleRadio struct {
	mu         sync.Mutex
	dev        *linux.Device
	handler    Handler
	cancelScan context.CancelFunc
	deviceID   int
}

// DeviceID selects the HCI device used by the go-ble backed radio.
var DeviceID = 0

func newBLERadio() (Radio, error) {
	return &bleRadio{deviceID: DeviceID}, nil
}

func (r *bleRadio) Activate(enable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !enable {
		if r.cancelScan != nil {
			r.cancelScan()
			r.cancelScan = nil
		}
		if r.dev != nil {
			err := r.dev.Stop()
			r.dev = nil
			if err != nil {
				return fmt.Errorf("failed to stop HCI device: %w", err)
			}
		}
		return nil
	}

	if r.dev != nil {
		return nil
	}

	dev, err := linux.NewDevice(ble.OptDeviceID(r.deviceID))
	if err != nil {
		return fmt.Errorf("failed to open HCI device %d: %w", r.deviceID, err)
	}
	r.dev = dev
	return nil
}

func (r *bleRadio) IsActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dev != nil
}

func (r *bleRadio) SubscribeEvents(fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = fn
}

func (r *bleRadio) StartScan(p ScanParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dev == nil {
		return ErrNotActive
	}

	// The controller must not be scanning while its parameters change, so
	// set them before issuing the scan command.
	var rp cmd.LESetScanParametersRP
	err := r.dev.HCI.Send(&cmd.LESetScanParameters{
		LEScanType:           0x00, // passive
		LEScanInterval:       scanUnits(p.Interval),
		LEScanWindow:         scanUnits(p.Window),
		OwnAddressType:       0x00, // public
		ScanningFilterPolicy: 0x00, // accept all
	}, &rp)
	if err != nil {
		return fmt.Errorf("failed to set scan parameters: %w", err)
	}
	if rp.Status != 0 {
		return fmt.Errorf("failed to set scan parameters: got status %v", rp.Status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Duration)
	r.cancelScan = cancel

	dev, handler := r.dev, r.handler
	go func() {
		defer cancel()
		// Scan returns when the context ends or the controller aborts;
		// either way the scan is over.
		_ = dev.Scan(ctx, true, func(a ble.Advertisement) {
			if handler != nil {
				handler(discoveryEventFrom(a))
			}
		})
		if handler != nil {
			handler(ScanDoneEvent{})
		}
	}()

	return nil
}

func (r *bleRadio) StopScan() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancelScan != nil {
		r.cancelScan()
		r.cancelScan = nil
	}
	return nil
}

// scanUnits converts a duration to HCI 0.625ms units, clamped to the valid
// range.
func scanUnits(d time.Duration) uint16 {
	units := d.Microseconds() / scanUnit
	if units < scanUnitMin {
		units = scanUnitMin
	}
	if units > scanUnitMax {
		units = scanUnitMax
	}
	return uint16(units)
}

// discoveryEventFrom converts a go-ble advertisement into a DiscoveryEvent.
// The raw payload is taken from the concrete advertisement when it exposes
// one; otherwise a minimal payload is re-encoded from the parsed fields so
// downstream decoding still sees well-formed AD structures.
func discoveryEventFrom(a ble.Advertisement) DiscoveryEvent {
	ev := DiscoveryEvent{
		RSSI: a.RSSI(),
	}

	if hw, err := net.ParseMAC(a.Addr().String()); err == nil {
		ev.Address = hw
	}

	if !a.Connectable() {
		ev.AdvType = 0x03 // ADV_NONCONN_IND
	}

	if raw, ok := a.(interface{ Data() []byte }); ok {
		ev.Payload = raw.Data()
		return ev
	}

	b := advdata.NewBuilder()
	if name := a.LocalName(); name != "" {
		b.AppendLocalName(name)
	}
	if md := a.ManufacturerData(); len(md) > 0 {
		b.Append(advdata.TypeManufacturerData, md)
	}
	ev.Payload = b.Bytes()
	return ev
}

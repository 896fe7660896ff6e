package scanner

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UnknownName is the display name for devices whose advertisement carries no
// decodable local name.
const UnknownName = "?"

// Beacon is one discovered device. Records are immutable once created.
type Beacon struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	RSSI    int    `json:"rssi"`
}

// Registry is the deduplicated, insertion-ordered set of beacons for the
// current scan session. Insertion order is display order. The coordinator is
// the only writer; the render loop reads concurrently.
type Registry struct {
	mu      sync.RWMutex
	beacons *orderedmap.OrderedMap[string, Beacon]
	logger  *logrus.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		beacons: orderedmap.New[string, Beacon](),
		logger:  logger,
	}
}

// Upsert records a discovery. The first sighting of an address wins: later
// sightings of the same address change nothing, not even name or RSSI.
// Returns true when a new beacon was added.
func (r *Registry) Upsert(address, name string, rssi int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, present := r.beacons.Get(address); present {
		return false
	}

	r.beacons.Set(address, Beacon{
		Address: address,
		Name:    name,
		RSSI:    rssi,
	})

	r.logger.WithFields(logrus.Fields{
		"count":   r.beacons.Len(),
		"device":  name,
		"address": address,
		"rssi":    rssi,
	}).Debug("Discovered new device")

	return true
}

// Clear empties the registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beacons = orderedmap.New[string, Beacon]()
}

// Len returns the number of beacons.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.beacons.Len()
}

// TopN returns the first n beacons in discovery order. Non-positive n
// returns nothing.
func (r *Registry) TopN(n int) []Beacon {
	if n <= 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Beacon, 0, min(n, r.beacons.Len()))
	for pair := r.beacons.Oldest(); pair != nil && len(out) < n; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Beacons returns every beacon in discovery order.
func (r *Registry) Beacons() []Beacon {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Beacon, 0, r.beacons.Len())
	for pair := r.beacons.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// CanonicalAddress formats raw address bytes as a lowercase colon-separated
// hex string, the registry's key form.
func CanonicalAddress(b []byte) string {
	return net.HardwareAddr(b).String()
}

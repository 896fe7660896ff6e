package radiosim_test

import (
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/srg/blescout/internal/radiosim"
	"github.com/srg/blescout/internal/testutils"
	"github.com/srg/blescout/radio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectEvents runs one scan and returns everything emitted up to and
// including the ScanDoneEvent.
func collectEvents(t *testing.T, sim *radiosim.Radio) []radio.Event {
	var (
		mu     sync.Mutex
		events []radio.Event
		done   = make(chan struct{})
	)

	sim.SubscribeEvents(func(ev radio.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		if _, ok := ev.(radio.ScanDoneEvent); ok {
			close(done)
		}
	})

	require.NoError(t, sim.Activate(true))
	require.NoError(t, sim.StartScan(radio.ScanParams{
		Duration: 500 * time.Millisecond,
		Interval: 30 * time.Millisecond,
		Window:   30 * time.Millisecond,
	}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scan never completed")
	}

	mu.Lock()
	defer mu.Unlock()
	return events
}

func TestReplayOrderAndRepeat(t *testing.T) {
	helper := testutils.NewTestHelper(t)
	sim := radiosim.New(helper.Logger)
	sim.AddPeripheral(radiosim.Peripheral{Address: "aa:00:00:00:00:01", Name: "One", RSSI: -40})
	sim.AddPeripheral(radiosim.Peripheral{Address: "aa:00:00:00:00:02", Name: "Two", RSSI: -50, Repeat: 2})

	events := collectEvents(t, sim)

	require.Len(t, events, 5) // One + 3x Two + done
	first, ok := events[0].(radio.DiscoveryEvent)
	require.True(t, ok)
	assert.Equal(t, "aa:00:00:00:00:01", net.HardwareAddr(first.Address).String())

	_, ok = events[len(events)-1].(radio.ScanDoneEvent)
	assert.True(t, ok)
}

func TestDuplicateAddressesReplayAsDistinctSightings(t *testing.T) {
	helper := testutils.NewTestHelper(t)
	sim := radiosim.New(helper.Logger)
	sim.AddPeripheral(radiosim.Peripheral{Address: "aa:00:00:00:00:01", Name: "One", RSSI: -40})
	sim.AddPeripheral(radiosim.Peripheral{Address: "aa:00:00:00:00:01", Name: "One", RSSI: -90})

	events := collectEvents(t, sim)

	require.Len(t, events, 3)
	first := events[0].(radio.DiscoveryEvent)
	second := events[1].(radio.DiscoveryEvent)
	assert.Equal(t, -40, first.RSSI)
	assert.Equal(t, -90, second.RSSI)
}

func TestScanRequiresActivation(t *testing.T) {
	sim := radiosim.New(testutils.NewTestHelper(t).Logger)

	err := sim.StartScan(radio.ScanParams{Duration: time.Second})
	require.ErrorIs(t, err, radio.ErrNotActive)
}

func TestMalformedPeripheralIsSkipped(t *testing.T) {
	helper := testutils.NewTestHelper(t)
	sim := radiosim.New(helper.Logger)
	sim.AddPeripheral(radiosim.Peripheral{Address: "not-a-mac", Name: "Broken", RSSI: -40})
	sim.AddPeripheral(radiosim.Peripheral{Address: "aa:00:00:00:00:03", Name: "Fine", RSSI: -55})

	events := collectEvents(t, sim)

	require.Len(t, events, 2) // Fine + done
	ev, ok := events[0].(radio.DiscoveryEvent)
	require.True(t, ok)
	assert.Equal(t, "aa:00:00:00:00:03", net.HardwareAddr(ev.Address).String())
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
peripherals:
  - address: "aa:bb:cc:dd:ee:01"
    name: "Badge"
    rssi: -45
  - address: "aa:bb:cc:dd:ee:02"
    name: "Tracker"
    rssi: -70
    delay: 10ms
    repeat: 1
`), 0o644))

	script, err := radiosim.LoadScript(path)
	require.NoError(t, err)
	require.Len(t, script.Peripherals, 2)

	assert.Equal(t, "Badge", script.Peripherals[0].Name)
	assert.Equal(t, -45, script.Peripherals[0].RSSI)
	assert.Equal(t, radiosim.Duration(10*time.Millisecond), script.Peripherals[1].Delay)
	assert.Equal(t, 1, script.Peripherals[1].Repeat)
}

func TestLoadScriptRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peripherals: []\n"), 0o644))

	_, err := radiosim.LoadScript(path)
	require.Error(t, err)
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := radiosim.LoadScript(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

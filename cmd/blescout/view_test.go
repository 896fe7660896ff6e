package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/blescout/internal/radiosim"
	"github.com/srg/blescout/internal/testutils"
	"github.com/srg/blescout/radio"
	"github.com/srg/blescout/scanner"
)

func TestDecodeKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected []viewAction
	}{
		{"scan key", []byte("u"), []viewAction{actionScan}},
		{"scan key upper", []byte("U"), []viewAction{actionScan}},
		{"clear key", []byte("d"), []viewAction{actionClear}},
		{"quit key", []byte("q"), []viewAction{actionQuit}},
		{"ctrl-c", []byte{0x03}, []viewAction{actionQuit}},
		{"arrow up", []byte{0x1b, '[', 'A'}, []viewAction{actionScan}},
		{"arrow down", []byte{0x1b, '[', 'B'}, []viewAction{actionClear}},
		{"bare escape", []byte{0x1b}, []viewAction{actionQuit}},
		{"other arrow ignored", []byte{0x1b, '[', 'C'}, nil},
		{"unknown key ignored", []byte("x"), nil},
		{"batched input", []byte("udq"), []viewAction{actionScan, actionClear, actionQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeKeys(tt.input))
		})
	}
}

func newViewCoordinator(t *testing.T) *scanner.Coordinator {
	th := testutils.NewTestHelper(t)

	sim := radiosim.New(th.Logger)
	sim.AddPeripheral(radiosim.Peripheral{
		Address: "aa:bb:cc:dd:ee:01", Name: "Badge-01", RSSI: -42,
	})

	cfg := scanner.DefaultConfig()
	cfg.ScanDuration = 30 * time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.WaitCeiling = 200 * time.Millisecond
	cfg.SettleDelay = time.Millisecond

	return scanner.NewCoordinator(cfg, th.Logger,
		radio.WithFactory(func() (radio.Radio, error) { return sim, nil }))
}

func TestRunViewQuitKeyExits(t *testing.T) {
	coord := newViewCoordinator(t)
	defer coord.Shutdown()

	in, out := io.Pipe()
	go func() {
		out.Write([]byte("q"))
	}()

	var buf bytes.Buffer
	err := runView(context.Background(), coord, in, &buf, 5)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[q] quit")
}

func TestRunViewScanKeyPopulatesFrame(t *testing.T) {
	coord := newViewCoordinator(t)
	defer coord.Shutdown()

	in, out := io.Pipe()
	go func() {
		out.Write([]byte("u"))
		// Leave time for the scan to finish and a frame to render.
		time.Sleep(300 * time.Millisecond)
		out.Write([]byte("q"))
	}()

	var buf bytes.Buffer
	err := runView(context.Background(), coord, in, &buf, 5)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Found 1")
	assert.Contains(t, buf.String(), "Badge-01")
}

func TestRunViewContextCancel(t *testing.T) {
	coord := newViewCoordinator(t)
	defer coord.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	in, _ := io.Pipe()

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	var buf bytes.Buffer
	err := runView(ctx, coord, in, &buf, 5)
	assert.ErrorIs(t, err, context.Canceled)
}

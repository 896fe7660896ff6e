package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/blescout/internal/testutils"
	"github.com/srg/blescout/scanner"
)

func TestFormatFrameWithBeacons(t *testing.T) {
	beacons := []scanner.Beacon{
		{Address: "aa:bb:cc:dd:ee:01", Name: "Badge-01", RSSI: -42},
		{Address: "aa:bb:cc:dd:ee:02", Name: "EMF beacon", RSSI: -67},
		{Address: "aa:bb:cc:dd:ee:03", Name: "?", RSSI: -80},
	}

	frame := formatFrame(scanner.Status{Kind: scanner.StatusCompleted, Count: 3}, beacons)

	fa := testutils.NewFrameAsserter(t)
	fa.Equal(`Found 3

Badge-01  -42
EMF beac  -67
?         -80

[u] scan  [d] clear  [q] quit`, frame)
}

func TestFormatFrameEmpty(t *testing.T) {
	frame := formatFrame(scanner.Status{Kind: scanner.StatusIdle}, nil)

	fa := testutils.NewFrameAsserter(t)
	fa.Contains(frame, "Press")
	fa.Contains(frame, "(no beacons)")
}

func TestDisplayNameTruncation(t *testing.T) {
	assert.Equal(t, "short", displayName("short"))
	assert.Equal(t, "exactly8", displayName("exactly8"))
	assert.Equal(t, "a-rather", displayName("a-rather-long-name"))
	// Truncation must not split multi-byte runes.
	assert.Equal(t, "ビーコンビーコン", displayName("ビーコンビーコンビーコン"))
}

func TestFrameRendererSkipsUnchangedFrames(t *testing.T) {
	var buf bytes.Buffer
	r := newFrameRenderer(&buf)
	status := scanner.Status{Kind: scanner.StatusScanning}

	r.Render(status, nil)
	first := buf.Len()
	r.Render(status, nil)
	assert.Equal(t, first, buf.Len(), "identical frame should not be repainted")

	r.Render(scanner.Status{Kind: scanner.StatusCompleted, Count: 1}, nil)
	assert.Greater(t, buf.Len(), first)
	assert.Equal(t, 2, strings.Count(buf.String(), clearScreen))
}

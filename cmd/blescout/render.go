package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/srg/blescout/scanner"
)

const (
	displayNameWidth = 8
	clearScreen      = "\x1b[2J\x1b[H"
)

var statusColor = color.New(color.FgYellow)

// formatFrame renders one frame of the interactive view: the status line,
// the visible beacons and the key legend. Lines are separated by \r\n so
// the output stays aligned while the terminal is in raw mode.
func formatFrame(status scanner.Status, beacons []scanner.Beacon) string {
	var sb strings.Builder

	sb.WriteString(statusColor.Sprint(status.String()))
	sb.WriteString("\r\n\r\n")

	for _, b := range beacons {
		sb.WriteString(fmt.Sprintf("%-*s %4d\r\n", displayNameWidth, displayName(b.Name), b.RSSI))
	}
	if len(beacons) == 0 {
		sb.WriteString("(no beacons)\r\n")
	}

	sb.WriteString("\r\n[u] scan  [d] clear  [q] quit\r\n")
	return sb.String()
}

// displayName trims the advertised name to the display column width.
func displayName(name string) string {
	runes := []rune(name)
	if len(runes) > displayNameWidth {
		return string(runes[:displayNameWidth])
	}
	return name
}

// frameRenderer repaints the terminal with the latest frame, skipping the
// write when nothing changed since the previous repaint.
type frameRenderer struct {
	out  io.Writer
	last string
}

func newFrameRenderer(out io.Writer) *frameRenderer {
	return &frameRenderer{out: out}
}

func (r *frameRenderer) Render(status scanner.Status, beacons []scanner.Beacon) {
	frame := formatFrame(status, beacons)
	if frame == r.last {
		return
	}
	r.last = frame
	fmt.Fprint(r.out, clearScreen+frame)
}

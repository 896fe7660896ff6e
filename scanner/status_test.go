package scanner_test

import (
	"errors"
	"testing"

	"github.com/srg/blescout/scanner"
	"github.com/stretchr/testify/assert"
)

func TestStatusStrings(t *testing.T) {
	tests := []struct {
		name     string
		status   scanner.Status
		expected string
	}{
		{"idle", scanner.Status{Kind: scanner.StatusIdle}, "Press to scan"},
		{"initializing", scanner.Status{Kind: scanner.StatusInitializing}, "Init..."},
		{"scanning", scanner.Status{Kind: scanner.StatusScanning}, "Scanning..."},
		{"completed", scanner.Status{Kind: scanner.StatusCompleted, Count: 3}, "Found 3"},
		{"completed empty", scanner.Status{Kind: scanner.StatusCompleted}, "Found 0"},
		{"cleared", scanner.Status{Kind: scanner.StatusCleared}, "Cleared"},
		{"failed", scanner.Status{Kind: scanner.StatusFailed, Reason: "hci timeout"}, "Err: hci timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

func TestFailedStatusTruncatesReason(t *testing.T) {
	st := scanner.FailedStatus(errors.New("failed to activate radio: hci device busy"))

	assert.Equal(t, scanner.StatusFailed, st.Kind)
	assert.Equal(t, "failed to activ", st.Reason)
	assert.Len(t, []rune(st.Reason), 15)
}

func TestFailedStatusKeepsShortReason(t *testing.T) {
	st := scanner.FailedStatus(errors.New("busy"))
	assert.Equal(t, "busy", st.Reason)
	assert.Equal(t, "Err: busy", st.String())
}

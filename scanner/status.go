package scanner

import "fmt"

// StatusKind enumerates the scan progress states visible to the UI.
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusInitializing
	StatusScanning
	StatusCompleted
	StatusCleared
	StatusFailed
)

// failureReasonLimit caps the error text carried by a Failed status so it
// fits the status line of a small display.
const failureReasonLimit = 15

// Status is the single UI-visible progress indicator. Exactly one status is
// active at any time.
type Status struct {
	Kind   StatusKind
	Count  int    // beacon count, Completed only
	Reason string // truncated error text, Failed only
}

// String renders the status line shown to the user.
func (s Status) String() string {
	switch s.Kind {
	case StatusInitializing:
		return "Init..."
	case StatusScanning:
		return "Scanning..."
	case StatusCompleted:
		return fmt.Sprintf("Found %d", s.Count)
	case StatusCleared:
		return "Cleared"
	case StatusFailed:
		return "Err: " + s.Reason
	default:
		return "Press to scan"
	}
}

// FailedStatus builds a Failed status from an error, truncating the text to
// the display limit.
func FailedStatus(err error) Status {
	reason := err.Error()
	if r := []rune(reason); len(r) > failureReasonLimit {
		reason = string(r[:failureReasonLimit])
	}
	return Status{Kind: StatusFailed, Reason: reason}
}

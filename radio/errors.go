package radio

import "fmt"

// SessionState identifies where a Session is in its lifecycle.
type SessionState string

const (
	// StateUninitialized means no radio handle has been created yet.
	StateUninitialized SessionState = "uninitialized"
	// StateInactive means the handle exists but the radio is powered down.
	StateInactive SessionState = "inactive"
	// StateActive means the radio is powered and ready for commands.
	StateActive SessionState = "active"
)

// StateError reports a command issued against the wrong session state.
type StateError struct {
	State SessionState
	Msg   string
}

// Error implements the error interface.
func (e *StateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return fmt.Sprintf("radio %s", e.State)
	}
	return fmt.Sprintf("radio %s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare StateError values by State.
func (e *StateError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*StateError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for session states.
var (
	ErrUninitialized = &StateError{State: StateUninitialized}
	ErrNotActive     = &StateError{State: StateInactive}
)

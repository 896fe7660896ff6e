package main

import (
	"context"
	"errors"

	"github.com/srg/blescout/radio"
)

// FormatUserError renders an error for terminal display, replacing the
// noisier wrapped chains with a plain explanation where one exists.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "operation timed out"
	case errors.Is(err, radio.ErrUninitialized):
		return "radio has not been initialized"
	case errors.Is(err, radio.ErrNotActive):
		return "radio is not active"
	}
	return err.Error()
}

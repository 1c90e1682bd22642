package freqtrack

import (
	"errors"
	"fmt"
)

// Errors returned by freqtrack functions.
var (
	ErrInvalidConfig        = errors.New("freqtrack: invalid configuration")
	ErrNumericalInstability = errors.New("freqtrack: numerical instability")
	ErrSignalTooShort       = errors.New("freqtrack: signal too short")
	ErrEmptySignal          = errors.New("freqtrack: signal is empty")
)

// ConfigError describes a rejected configuration field. It matches
// ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("freqtrack: invalid %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// InstabilityError reports a non-finite value met during estimation. It
// matches ErrNumericalInstability with errors.Is.
type InstabilityError struct {
	Phase     string // "input", "search" or "lms"
	Iteration int    // sample index or grid index; -1 when not applicable
	Theta     float64
	Quantity  string
	Value     float64
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("freqtrack: numerical instability in %s at %d (theta=%g): %s=%g",
		e.Phase, e.Iteration, e.Theta, e.Quantity, e.Value)
}

func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }

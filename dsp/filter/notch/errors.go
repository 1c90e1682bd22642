package notch

import "errors"

var (
	// ErrInvalidHarmonic indicates a stage harmonic index below 1.
	ErrInvalidHarmonic = errors.New("notch: harmonic index must be >= 1")
	// ErrInvalidPoleRadius indicates a pole radius outside (0, 1).
	ErrInvalidPoleRadius = errors.New("notch: pole radius must be in (0, 1)")
	// ErrInvalidStageCount indicates a bank with no stages.
	ErrInvalidStageCount = errors.New("notch: stage count must be >= 1")
)

package freqtrack

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
)

// LMSResult holds the adaptive trajectory.
type LMSResult struct {
	Theta   float64   // θ after the last iteration
	History []float64 // θ after each iteration
}

// RunLMS refines theta0 over iterations samples of x.
//
// Iteration n filters x[0..n] from zero state at the current θ, computes the
// final-row sensitivity, and applies θ ← θ - 2μ·y_M(n)·β(n). Filtering only
// the causal prefix gives the same y_M(n) and β(n) as filtering all of x.
// A non-finite θ, output or sensitivity stops the run with an
// *InstabilityError.
func RunLMS(ctx context.Context, bank *notch.Bank, x []float64, theta0, step float64, iterations int) (*LMSResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if iterations < 1 {
		return nil, &ConfigError{Field: "num_samples", Value: iterations, Reason: "must be >= 1"}
	}
	if len(x) < iterations {
		return nil, fmt.Errorf("%w: %d samples for %d iterations", ErrSignalTooShort, len(x), iterations)
	}
	if !core.IsFinite(theta0) {
		return nil, &InstabilityError{Phase: "lms", Iteration: -1, Theta: theta0, Quantity: "theta", Value: theta0}
	}

	var (
		theta   = theta0
		history = make([]float64, iterations)
		out     = &notch.Outputs{}
		beta    = make([]float64, 0, iterations)
	)
	for n := range iterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out = bank.ProcessPrefix(out, x, theta, n+1)
		beta = bank.FinalSensitivity(beta, theta, out)

		y, b := out.Final()[n], beta[n]
		if !core.IsFinite(y) {
			return nil, &InstabilityError{Phase: "lms", Iteration: n, Theta: theta, Quantity: "output", Value: y}
		}
		if !core.IsFinite(b) {
			return nil, &InstabilityError{Phase: "lms", Iteration: n, Theta: theta, Quantity: "sensitivity", Value: b}
		}

		theta -= 2 * step * y * b
		if !core.IsFinite(theta) {
			return nil, &InstabilityError{Phase: "lms", Iteration: n, Theta: theta, Quantity: "theta", Value: theta}
		}
		history[n] = theta
	}

	return &LMSResult{Theta: theta, History: history}, nil
}

package freqtrack

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
)

// Capture-range thresholds on the MSE surface.
const (
	captureAverageTolerance = 1e-4
	captureMinimumTolerance = 0.2
)

// SearchResult holds the initial grid scan.
type SearchResult struct {
	Theta    float64   // selected initial estimate, Grid[Index]
	Grid     []float64 // θ values scanned, uniform over [0, π/M]
	MSE      []float64 // final-stage MSE per grid point
	MSEFirst []float64 // first-stage MSE per grid point

	Capture
}

// Capture describes how the initial grid point was chosen.
type Capture struct {
	Index    int     // selected index
	Count    int     // number of grid points inside the capture range
	Average  float64 // mean final-stage MSE over the grid
	Min      float64 // minimum final-stage MSE
	MinIndex int     // first index attaining Min
	Fallback bool    // no point qualified; Index is MinIndex
}

// ThetaGrid returns points values evenly spaced over [0, π/stages]. A single
// point yields {0}.
func ThetaGrid(points, stages int) []float64 {
	if points <= 0 || stages <= 0 {
		return nil
	}
	grid := make([]float64, points)
	if points == 1 {
		return grid
	}
	return floats.Span(grid, 0, math.Pi/float64(stages))
}

// SelectCapture picks the initial grid index from the MSE curves.
//
// A point k is in the capture range when
//
//	first[k] - avg < 1e-4  and  total[k] - avg < 1e-4  and  total[k] - min < 0.2
//
// with avg the grid mean of total, accumulated in grid order. The first such
// point wins; if none qualifies the global minimum is used and Fallback is
// set. total and first must have the same length.
func SelectCapture(total, first []float64) Capture {
	if len(total) != len(first) {
		panic(fmt.Sprintf("freqtrack: MSE curve lengths differ: %d vs %d", len(total), len(first)))
	}
	if len(total) == 0 {
		return Capture{Index: -1, MinIndex: -1, Fallback: true}
	}

	p := float64(len(total))
	var avg float64
	for _, v := range total {
		avg += v / p
	}

	c := Capture{
		Index:    -1,
		Average:  avg,
		Min:      floats.Min(total),
		MinIndex: floats.MinIdx(total),
	}
	for k := range total {
		if first[k]-avg < captureAverageTolerance &&
			total[k]-avg < captureAverageTolerance &&
			total[k]-c.Min < captureMinimumTolerance {
			if c.Index < 0 {
				c.Index = k
			}
			c.Count++
		}
	}
	if c.Index < 0 {
		c.Index = c.MinIndex
		c.Fallback = true
	}
	return c
}

// Search evaluates the cascade MSE on a ThetaGrid of the given size and
// selects the initial estimate. Grid points are split across up to workers
// goroutines (workers <= 0 uses GOMAXPROCS); results do not depend on the
// worker count. Cancelling ctx aborts the scan with ctx.Err().
func Search(ctx context.Context, bank *notch.Bank, x []float64, points, workers int) (*SearchResult, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if points < 1 {
		return nil, &ConfigError{Field: "num_theta_points", Value: points, Reason: "must be >= 1"}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, points)

	grid := ThetaGrid(points, bank.NumStages())
	total := make([]float64, points)
	first := make([]float64, points)

	g, gctx := errgroup.WithContext(ctx)
	chunk := (points + workers - 1) / workers
	for lo := 0; lo < points; lo += chunk {
		hi := min(lo+chunk, points)
		g.Go(func() error {
			out := &notch.Outputs{}
			for k := lo; k < hi; k++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out = bank.ProcessInto(out, x, grid[k])
				total[k] = out.MeanSquare(out.Rows() - 1)
				first[k] = out.MeanSquare(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup cancels gctx only on failure; a parent cancelled after the last
	// point still reports.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for k := range total {
		if !core.IsFinite(total[k]) {
			return nil, &InstabilityError{Phase: "search", Iteration: k, Theta: grid[k], Quantity: "mse", Value: total[k]}
		}
		if !core.IsFinite(first[k]) {
			return nil, &InstabilityError{Phase: "search", Iteration: k, Theta: grid[k], Quantity: "mse_first", Value: first[k]}
		}
	}

	c := SelectCapture(total, first)
	return &SearchResult{
		Theta:    grid[c.Index],
		Grid:     grid,
		MSE:      total,
		MSEFirst: first,
		Capture:  c,
	}, nil
}

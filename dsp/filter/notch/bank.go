package notch

import (
	"fmt"
	"math/cmplx"
)

// Bank is a cascade of notch stages for harmonics 1..M sharing one pole
// radius.
type Bank struct {
	stages []Stage
	radius float64
}

// NewBank builds a cascade of the given number of stages with pole radius r.
func NewBank(stages int, radius float64) (*Bank, error) {
	if stages < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStageCount, stages)
	}

	b := &Bank{
		stages: make([]Stage, stages),
		radius: radius,
	}
	for m := range b.stages {
		s, err := NewStage(m+1, radius)
		if err != nil {
			return nil, err
		}
		b.stages[m] = s
	}
	return b, nil
}

// Stages returns the stages in cascade order.
func (b *Bank) Stages() []Stage { return b.stages }

// NumStages returns M.
func (b *Bank) NumStages() int { return len(b.stages) }

// Radius returns the shared pole radius.
func (b *Bank) Radius() float64 { return b.radius }

// Process runs signal through the cascade at θ and returns all M+1 rows.
func (b *Bank) Process(signal []float64, theta float64) *Outputs {
	return b.ProcessInto(nil, signal, theta)
}

// ProcessInto is Process writing into out, which is reused when non-nil.
// The returned pointer is out (or a new arena when out is nil).
func (b *Bank) ProcessInto(out *Outputs, signal []float64, theta float64) *Outputs {
	if out == nil {
		out = &Outputs{}
	}
	out.resize(len(b.stages)+1, len(signal))
	copy(out.Row(0), signal)

	for m, s := range b.stages {
		s.Apply(out.Row(m+1), out.Row(m), theta)
	}
	return out
}

// ProcessPrefix processes only the first n samples of signal. Because every
// stage is causal and starts from zero state, the result equals the first n
// columns of Process.
func (b *Bank) ProcessPrefix(out *Outputs, signal []float64, theta float64, n int) *Outputs {
	n = min(max(n, 0), len(signal))
	return b.ProcessInto(out, signal[:n], theta)
}

// MSE returns the mean squared final-stage output and the mean squared
// first-stage output for signal filtered at θ.
func (b *Bank) MSE(signal []float64, theta float64) (total, first float64) {
	out := b.Process(signal, theta)
	return out.MeanSquare(out.Rows() - 1), out.MeanSquare(1)
}

// Response returns the normalized cascade response and the normalized
// per-stage responses on the grid omega.
//
// Each stage response is divided by its magnitude at reference index
// len(omega)/3; the product is then normalized the same way. A reference
// magnitude of zero leaves that response unscaled.
func (b *Bank) Response(theta float64, omega []float64) (total []complex128, stages [][]complex128) {
	total = make([]complex128, len(omega))
	for i := range total {
		total[i] = 1
	}
	if len(omega) == 0 {
		return total, make([][]complex128, len(b.stages))
	}

	ref := len(omega) / 3
	stages = make([][]complex128, len(b.stages))
	for m, s := range b.stages {
		h := s.Response(theta, omega)
		normalizeAt(h, ref)
		for i := range total {
			total[i] *= h[i]
		}
		stages[m] = h
	}
	normalizeAt(total, ref)
	return total, stages
}

func normalizeAt(h []complex128, ref int) {
	g := cmplx.Abs(h[ref])
	if g == 0 {
		return
	}
	inv := complex(1/g, 0)
	for i := range h {
		h[i] *= inv
	}
}

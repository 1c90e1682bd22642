package notch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-freqtrack/dsp/filter/biquad"
)

// Stage is one notch section of the cascade: harmonic index m and pole
// radius r. Its coefficients are a pure function of θ.
type Stage struct {
	harmonic int
	radius   float64
}

// NewStage validates and returns a stage for harmonic m with pole radius r.
func NewStage(harmonic int, radius float64) (Stage, error) {
	if harmonic < 1 {
		return Stage{}, fmt.Errorf("%w: %d", ErrInvalidHarmonic, harmonic)
	}
	if !(radius > 0 && radius < 1) {
		return Stage{}, fmt.Errorf("%w: %v", ErrInvalidPoleRadius, radius)
	}
	return Stage{harmonic: harmonic, radius: radius}, nil
}

// Harmonic returns the harmonic index m.
func (s Stage) Harmonic() int { return s.harmonic }

// Radius returns the pole radius r.
func (s Stage) Radius() float64 { return s.radius }

// CenterTheta returns the notch angle mθ for the given fundamental.
func (s Stage) CenterTheta(theta float64) float64 {
	return float64(s.harmonic) * theta
}

// Coefficients returns the section coefficients at θ:
// b = (1, -2cos(mθ), 1), a = (1, -2r cos(mθ), r²).
func (s Stage) Coefficients(theta float64) biquad.Coefficients {
	c := math.Cos(s.CenterTheta(theta))
	return biquad.Coefficients{
		B0: 1,
		B1: -2 * c,
		B2: 1,
		A1: -2 * s.radius * c,
		A2: s.radius * s.radius,
	}
}

// Apply filters src into dst at θ starting from zero state. dst must be at
// least as long as src and may alias it.
func (s Stage) Apply(dst, src []float64, theta float64) {
	sec := biquad.Section{Coefficients: s.Coefficients(theta)}
	sec.ProcessBlockTo(dst, src)
}

// Filter returns src filtered at θ in a new slice.
func (s Stage) Filter(src []float64, theta float64) []float64 {
	out := make([]float64, len(src))
	s.Apply(out, src, theta)
	return out
}

// Response evaluates the stage transfer function at each angular frequency
// in omega.
func (s Stage) Response(theta float64, omega []float64) []complex128 {
	c := s.Coefficients(theta)
	return c.ResponseGrid(nil, omega)
}

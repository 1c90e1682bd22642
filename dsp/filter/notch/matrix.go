package notch

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
)

// matrix is a row-major rows×samples arena.
type matrix struct {
	data    []float64
	rows    int
	samples int
}

func (m *matrix) resize(rows, samples int) {
	m.data = core.EnsureLen(m.data, rows*samples)
	m.rows = rows
	m.samples = samples
}

// Rows returns the number of rows.
func (m *matrix) Rows() int { return m.rows }

// Samples returns the number of samples per row.
func (m *matrix) Samples() int { return m.samples }

// Row returns row k as a view into the arena. Callers must not retain it
// across a reuse of the owning value.
func (m *matrix) Row(k int) []float64 {
	off := k * m.samples
	return m.data[off : off+m.samples : off+m.samples]
}

// At returns the element at row k, sample n.
func (m *matrix) At(k, n int) float64 {
	return m.data[k*m.samples+n]
}

// MeanSquare returns the mean of squares of row k, or 0 for empty rows.
func (m *matrix) MeanSquare(k int) float64 {
	if m.samples == 0 {
		return 0
	}
	row := m.Row(k)
	return vecmath.DotProduct(row, row) / float64(m.samples)
}

// Outputs holds the cascade outputs for one θ. Row 0 is a copy of the
// input; row m is the output of stage m.
type Outputs struct {
	matrix
}

// NewOutputs allocates an arena for the given number of stages.
func NewOutputs(stages, samples int) *Outputs {
	o := &Outputs{}
	o.resize(stages+1, samples)
	return o
}

// Stages returns the number of filter stages (Rows()-1).
func (o *Outputs) Stages() int { return o.rows - 1 }

// Input returns row 0.
func (o *Outputs) Input() []float64 { return o.Row(0) }

// Final returns the last stage output.
func (o *Outputs) Final() []float64 { return o.Row(o.rows - 1) }

// Clone returns a deep copy.
func (o *Outputs) Clone() *Outputs {
	c := &Outputs{}
	c.resize(o.rows, o.samples)
	copy(c.data, o.data)
	return c
}

// Sensitivities holds ∂y/∂θ for the rows of a cascade. Row 0 is identically
// zero.
type Sensitivities struct {
	matrix
}

// Final returns the last row, the sensitivity consumed by the adaptive loop.
func (s *Sensitivities) Final() []float64 { return s.Row(s.rows - 1) }

package notch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
)

// rowCoeffs holds the θ-dependent constants of the sensitivity recursion for
// row k (harmonic k, pole radius r).
type rowCoeffs struct {
	twoC  float64 // 2cos(kθ)
	gIn   float64 // 2k sin(kθ)
	twoRC float64 // 2r cos(kθ)
	r2    float64 // r²
	gOut  float64 // 2r k sin(kθ)
}

func newRowCoeffs(s Stage, theta float64) rowCoeffs {
	k := float64(s.harmonic)
	r := s.radius
	c := math.Cos(k * theta)
	sn := math.Sin(k * theta)
	return rowCoeffs{
		twoC:  2 * c,
		gIn:   2 * k * sn,
		twoRC: 2 * r * c,
		r2:    r * r,
		gOut:  2 * r * k * sn,
	}
}

// next evaluates β_k(n) from the previous row (bp0=β_{k-1}(n),
// bp1=β_{k-1}(n-1), bp2=β_{k-1}(n-2)), the row's own history
// (bc1=β_k(n-1), bc2=β_k(n-2)) and the stage input/output one sample back
// (yp1=y_{k-1}(n-1), yc1=y_k(n-1)). Missing history is zero, which makes
// β_k(0) = β_{k-1}(0) exactly.
func (c rowCoeffs) next(bp0, bp1, bp2, bc1, bc2, yp1, yc1 float64) float64 {
	return bp0 - c.twoC*bp1 + c.gIn*yp1 + bp2 + c.twoRC*bc1 - c.r2*bc2 - c.gOut*yc1
}

func (b *Bank) checkOutputs(out *Outputs) {
	if out.Stages() != len(b.stages) {
		panic(fmt.Sprintf("notch: outputs have %d stages, bank has %d", out.Stages(), len(b.stages)))
	}
}

// Sensitivity computes the full M×N sensitivity matrix for the outputs of
// the same θ. Row 0 is zero; row k (1 <= k < M) follows the recursion
// driven by stage k and rows k-1, k of out.
func (b *Bank) Sensitivity(theta float64, out *Outputs) *Sensitivities {
	return b.SensitivityInto(nil, theta, out)
}

// SensitivityInto is Sensitivity writing into dst, reused when non-nil.
func (b *Bank) SensitivityInto(dst *Sensitivities, theta float64, out *Outputs) *Sensitivities {
	b.checkOutputs(out)
	if dst == nil {
		dst = &Sensitivities{}
	}

	rows, n := len(b.stages), out.Samples()
	dst.resize(rows, n)
	clear(dst.Row(0))

	for k := 1; k < rows; k++ {
		rc := newRowCoeffs(b.stages[k-1], theta)
		bPrev, bCur := dst.Row(k-1), dst.Row(k)
		yPrev, yCur := out.Row(k-1), out.Row(k)

		for i := range n {
			var bp1, bp2, bc1, bc2, yp1, yc1 float64
			if i >= 1 {
				bp1, bc1 = bPrev[i-1], bCur[i-1]
				yp1, yc1 = yPrev[i-1], yCur[i-1]
			}
			if i >= 2 {
				bp2, bc2 = bPrev[i-2], bCur[i-2]
			}
			bCur[i] = rc.next(bPrev[i], bp1, bp2, bc1, bc2, yp1, yc1)
		}
	}
	return dst
}

// FinalSensitivity computes only the last sensitivity row, sample by sample,
// keeping two samples of history per row instead of the full matrix. The
// result is bit-identical to Sensitivity(theta, out).Final().
func (b *Bank) FinalSensitivity(dst []float64, theta float64, out *Outputs) []float64 {
	b.checkOutputs(out)

	rows, n := len(b.stages), out.Samples()
	dst = core.EnsureLen(dst, n)

	rcs := make([]rowCoeffs, rows)
	for k := 1; k < rows; k++ {
		rcs[k] = newRowCoeffs(b.stages[k-1], theta)
	}
	// hist[k] = {β_k(n-1), β_k(n-2)}
	hist := make([][2]float64, rows)

	for i := range n {
		// Row 0 is zero: prevNow = β_{k-1}(i), prevHist = {β_{k-1}(i-1), β_{k-1}(i-2)}.
		var prevNow float64
		var prevHist [2]float64

		for k := 1; k < rows; k++ {
			var yp1, yc1 float64
			if i >= 1 {
				yp1, yc1 = out.At(k-1, i-1), out.At(k, i-1)
			}
			h := hist[k]
			v := rcs[k].next(prevNow, prevHist[0], prevHist[1], h[0], h[1], yp1, yc1)
			prevNow, prevHist = v, h
			hist[k] = [2]float64{v, h[0]}
		}
		dst[i] = prevNow
	}
	return dst
}

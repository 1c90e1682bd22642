package time

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// Stats holds time-domain signal statistics.
//
//nolint:revive
type Stats struct {
	Length         int
	Mean           float64
	RMS            float64
	RMS_dB         float64
	Peak           float64 // max |x|
	Peak_dB        float64
	CrestFactor    float64 // peak / RMS (linear)
	CrestFactor_dB float64
	Energy         float64 // sum of squares
	Power          float64 // energy / length
	Variance       float64 // population variance
	ZeroCrossings  int
}

// ampTodB converts an amplitude value to decibels: 20 * log10(|value|).
// Returns -Inf for zero values.
func ampTodB(value float64) float64 {
	a := math.Abs(value)
	if a == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(a)
}

// Calculate computes all statistics of signal. An empty signal yields zero
// values and -Inf for the dB fields.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{
			RMS_dB:         math.Inf(-1),
			Peak_dB:        math.Inf(-1),
			CrestFactor_dB: math.Inf(-1),
		}
	}

	nf := float64(n)
	energy := vecmath.DotProduct(signal, signal)
	mean := vecmath.Sum(signal) / nf
	power := energy / nf
	rms := math.Sqrt(power)
	peak := vecmath.MaxAbs(signal)

	s := Stats{
		Length:        n,
		Mean:          mean,
		RMS:           rms,
		RMS_dB:        ampTodB(rms),
		Peak:          peak,
		Peak_dB:       ampTodB(peak),
		Energy:        energy,
		Power:         power,
		Variance:      math.Max(power-mean*mean, 0),
		ZeroCrossings: ZeroCrossings(signal),
	}
	if rms > 0 {
		s.CrestFactor = peak / rms
		s.CrestFactor_dB = ampTodB(s.CrestFactor)
	}
	return s
}

// RMS returns the root mean square of signal, or 0 when empty.
func RMS(signal []float64) float64 {
	return math.Sqrt(Power(signal))
}

// Power returns the mean square of signal, or 0 when empty.
func Power(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return vecmath.DotProduct(signal, signal) / float64(len(signal))
}

// Peak returns max |x|, or 0 when empty.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return vecmath.MaxAbs(signal)
}

// ZeroCrossings counts strict sign changes between adjacent samples.
func ZeroCrossings(signal []float64) int {
	count := 0
	for i := 1; i < len(signal); i++ {
		if signal[i-1]*signal[i] < 0 {
			count++
		}
	}
	return count
}

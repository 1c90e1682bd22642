package frequency

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
)

// Stats holds shape descriptors of a one-sided power spectrum.
type Stats struct {
	BinCount   int
	TotalPower float64
	PeakBin    int
	PeakHz     float64
	Peak_dB    float64
	// Spectral shape descriptors
	Centroid float64 // power-weighted mean frequency (Hz)
	Spread   float64 // power-weighted standard deviation around Centroid (Hz)
	Flatness float64 // geometric over arithmetic mean power, 0..1
	Rolloff  float64 // frequency below which 85% of the power lies (Hz)
}

// RolloffFraction is the power share used for Stats.Rolloff.
const RolloffFraction = 0.85

// Calculate computes descriptors of power (linear, NOT dB) sampled at
// freqHz. Both slices must have the same length; mismatched or empty input
// yields an empty Stats with Peak_dB at -Inf.
func Calculate(freqHz, power []float64) Stats {
	n := len(power)
	if n == 0 || len(freqHz) != n {
		return Stats{Peak_dB: math.Inf(-1)}
	}

	s := Stats{
		BinCount:   n,
		TotalPower: floats.Sum(power),
		PeakBin:    floats.MaxIdx(power),
	}
	s.PeakHz = freqHz[s.PeakBin]
	s.Peak_dB = core.LinearPowerToDB(power[s.PeakBin])
	if s.TotalPower <= 0 {
		return s
	}

	s.Centroid = Centroid(freqHz, power)
	var v float64
	for i, f := range freqHz {
		d := f - s.Centroid
		v += d * d * power[i]
	}
	s.Spread = math.Sqrt(v / s.TotalPower)
	s.Flatness = Flatness(power)
	s.Rolloff = Rolloff(freqHz, power, RolloffFraction)
	return s
}

// Centroid returns the power-weighted mean frequency.
//
//	centroid = sum(f_i * P_i) / sum(P_i)
func Centroid(freqHz, power []float64) float64 {
	if len(power) == 0 || floats.Sum(power) <= 0 {
		return 0
	}
	return stat.Mean(freqHz, power)
}

// Flatness returns the spectral flatness (Wiener entropy) of power. Any
// empty bin makes the spectrum maximally peaked (0).
func Flatness(power []float64) float64 {
	if len(power) == 0 {
		return 0
	}
	mean := stat.Mean(power, nil)
	if mean <= 0 {
		return 0
	}
	for _, p := range power {
		if p <= 0 {
			return 0
		}
	}
	return stat.GeometricMean(power, nil) / mean
}

// Rolloff returns the lowest frequency below which fraction of the total
// power lies.
func Rolloff(freqHz, power []float64, fraction float64) float64 {
	if len(power) == 0 || len(freqHz) != len(power) {
		return 0
	}
	cum := floats.CumSum(make([]float64, len(power)), power)
	total := cum[len(cum)-1]
	if total <= 0 {
		return 0
	}
	threshold := fraction * total
	for i, c := range cum {
		if c >= threshold {
			return freqHz[i]
		}
	}
	return freqHz[len(freqHz)-1]
}

// BandPower returns the power in bins with lo <= f <= hi.
func BandPower(freqHz, power []float64, lo, hi float64) float64 {
	var sum float64
	for i, f := range freqHz {
		if f >= lo && f <= hi {
			sum += power[i]
		}
	}
	return sum
}

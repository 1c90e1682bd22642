package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// HarmonicSignal returns sin(θn) + 0.5cos(2θn) - 0.25cos(3θn) for
// n = 1..length, the three-harmonic test tone used throughout the tracker
// tests.
func HarmonicSignal(theta float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		n := float64(i + 1)
		out[i] = math.Sin(theta*n) + 0.5*math.Cos(2*theta*n) - 0.25*math.Cos(3*theta*n)
	}
	return out
}

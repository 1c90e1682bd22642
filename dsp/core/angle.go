package core

import "math"

// ThetaToFreq converts a normalized angular frequency in radians per sample
// to Hz at the given sample rate.
func ThetaToFreq(theta, sampleRate float64) float64 {
	return theta * sampleRate / (2 * math.Pi)
}

// FreqToTheta converts a frequency in Hz to radians per sample.
func FreqToTheta(freqHz, sampleRate float64) float64 {
	return 2 * math.Pi * freqHz / sampleRate
}

// ThetasToFreqs converts every element of thetas to Hz.
func ThetasToFreqs(thetas []float64, sampleRate float64) []float64 {
	out := make([]float64, len(thetas))
	for i, th := range thetas {
		out[i] = ThetaToFreq(th, sampleRate)
	}
	return out
}

// Nyquist returns half the sample rate.
func Nyquist(sampleRate float64) float64 {
	return sampleRate / 2
}

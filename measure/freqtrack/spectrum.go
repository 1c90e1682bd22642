package freqtrack

import (
	"errors"
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	freqstats "github.com/cwbudde/algo-freqtrack/stats/frequency"
)

var errShortSpectrum = errors.New("freqtrack: spectrum needs at least 2 samples")

// Spectrum is a one-sided power spectrum.
type Spectrum struct {
	FreqHz  []float64
	Power   []float64
	PowerDB []float64
}

// PeakFrequency returns the frequency of the strongest bin, skipping DC.
func (s *Spectrum) PeakFrequency() float64 {
	if len(s.Power) < 2 {
		return 0
	}
	return s.FreqHz[1+floats.MaxIdx(s.Power[1:])]
}

// PowerSpectrum returns the Hann-windowed periodogram of x, zero-padded to
// the next power of two.
func PowerSpectrum(x []float64, sampleRate float64) (*Spectrum, error) {
	if len(x) < 2 {
		return nil, errShortSpectrum
	}

	fftSize := nextPowerOf2(len(x))
	win := window.Hann(len(x))
	in := make([]complex128, fftSize)
	var norm float64
	for i, v := range x {
		in[i] = complex(v*win[i], 0)
		norm += win[i] * win[i]
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("freqtrack: failed to create FFT plan: %w", err)
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("freqtrack: forward FFT: %w", err)
	}

	bins := fftSize/2 + 1
	s := &Spectrum{
		FreqHz:  make([]float64, bins),
		Power:   make([]float64, bins),
		PowerDB: make([]float64, bins),
	}
	binHz := sampleRate / float64(fftSize)
	for k := range bins {
		p := (real(out[k])*real(out[k]) + imag(out[k])*imag(out[k])) / norm
		if k > 0 && k < bins-1 {
			p *= 2
		}
		s.FreqHz[k] = float64(k) * binHz
		s.Power[k] = p
		s.PowerDB[k] = powerDB(p)
	}
	return s, nil
}

// ResidualSpectrum returns the power spectrum of the final cascade output at
// the converged estimate.
func (r *Result) ResidualSpectrum() (*Spectrum, error) {
	return PowerSpectrum(r.Outputs.Final(), r.Config.SampleRate)
}

// WelchPSD estimates the power spectral density of x with Welch's method
// (Hann window, segments of nfft samples, 50% overlap).
func WelchPSD(x []float64, sampleRate float64, nfft int) (*Spectrum, error) {
	if len(x) < 2 {
		return nil, errShortSpectrum
	}
	if nfft < 2 {
		nfft = min(256, nextPowerOf2(len(x)))
	}
	nfft += nfft % 2

	pxx, freqs := spectral.Pwelch(x, sampleRate, &spectral.PwelchOptions{
		NFFT:     nfft,
		Window:   window.Hann,
		Noverlap: nfft / 2,
	})

	s := &Spectrum{FreqHz: freqs, Power: pxx, PowerDB: make([]float64, len(pxx))}
	for i, p := range pxx {
		s.PowerDB[i] = powerDB(p)
	}
	return s, nil
}

func powerDB(p float64) float64 {
	db := core.LinearPowerToDB(p)
	if db < 2*core.MagnitudeFloorDB {
		return 2 * core.MagnitudeFloorDB
	}
	return db
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Stats returns the shape descriptors of s.
func (s *Spectrum) Stats() freqstats.Stats {
	return freqstats.Calculate(s.FreqHz, s.Power)
}

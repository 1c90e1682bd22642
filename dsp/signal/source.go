package signal

import (
	"fmt"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
)

// Source produces input signals for the tracker.
type Source interface {
	Generate(samples int) ([]float64, error)
}

// HarmonicSource is a Source of harmonic test tones with optional additive
// white Gaussian noise.
type HarmonicSource struct {
	FundamentalHz float64
	SampleRate    float64
	Partials      []Harmonic // nil selects DefaultHarmonics
	Noise         bool
	SNRdB         float64
	Seed          int64
}

// Generate implements Source.
func (s HarmonicSource) Generate(samples int) ([]float64, error) {
	if s.SampleRate <= 0 {
		return nil, fmt.Errorf("harmonic source sample rate must be > 0: %f", s.SampleRate)
	}
	g := NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(s.SampleRate)},
		WithSeed(s.Seed),
	)

	partials := s.Partials
	if partials == nil {
		partials = DefaultHarmonics()
	}

	x, err := g.Harmonics(s.FundamentalHz, partials, samples)
	if err != nil {
		return nil, err
	}
	if !s.Noise {
		return x, nil
	}
	return g.AddAWGN(x, s.SNRdB)
}

// Recorded is a Source backed by a fixed buffer.
type Recorded []float64

// Generate returns a copy of the first samples values.
func (r Recorded) Generate(samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("recorded samples must be > 0: %d", samples)
	}
	if samples > len(r) {
		return nil, fmt.Errorf("recorded source holds %d samples, %d requested", len(r), samples)
	}
	out := make([]float64, samples)
	copy(out, r)
	return out, nil
}

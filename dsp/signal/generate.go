package signal

import (
	"fmt"
	"math"
	"math/rand"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
)

// Harmonic is one partial of a periodic test tone: Sin*sin(kωn) + Cos*cos(kωn)
// for harmonic number k.
type Harmonic struct {
	Number int
	Sin    float64
	Cos    float64
}

// DefaultHarmonics is the three-partial tone
// sin(ωn) + 0.5cos(2ωn) - 0.25cos(3ωn).
func DefaultHarmonics() []Harmonic {
	return []Harmonic{
		{Number: 1, Sin: 1},
		{Number: 2, Cos: 0.5},
		{Number: 3, Cos: -0.25},
	}
}

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed replaces the noise seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

// Harmonics generates a sum of harmonics of freqHz. Sample indices start at
// 1, so x[0] is the value at n = 1.
func (g *Generator) Harmonics(freqHz float64, partials []Harmonic, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("harmonic samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("harmonic sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	if freqHz <= 0 || freqHz >= core.Nyquist(g.cfg.SampleRate) {
		return nil, fmt.Errorf("harmonic fundamental must be in (0, %f): %f", core.Nyquist(g.cfg.SampleRate), freqHz)
	}
	if len(partials) == 0 {
		return nil, fmt.Errorf("harmonic partials must not be empty")
	}
	for _, p := range partials {
		if p.Number < 1 {
			return nil, fmt.Errorf("harmonic number must be >= 1: %d", p.Number)
		}
	}

	w := core.FreqToTheta(freqHz, g.cfg.SampleRate)
	out := make([]float64, samples)
	for i := range out {
		n := float64(i + 1)
		var acc float64
		for _, p := range partials {
			kw := float64(p.Number) * w * n
			var v float64
			switch {
			case p.Cos == 0:
				v = p.Sin * math.Sin(kw)
			case p.Sin == 0:
				v = p.Cos * math.Cos(kw)
			default:
				v = p.Sin*math.Sin(kw) + p.Cos*math.Cos(kw)
			}
			acc += v
		}
		out[i] = acc
	}
	return out, nil
}

// GaussianNoise generates deterministic zero-mean Gaussian noise with the
// given standard deviation.
func (g *Generator) GaussianNoise(stddev float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if stddev < 0 || math.IsNaN(stddev) {
		return nil, fmt.Errorf("noise stddev must be >= 0: %f", stddev)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	vecmath.ScaleBlockInPlace(out, stddev)
	return out, nil
}

// AddAWGN returns x plus white Gaussian noise scaled so that the ratio of
// mean signal power to noise power equals snrDB.
func (g *Generator) AddAWGN(x []float64, snrDB float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("awgn input must not be empty")
	}
	if math.IsNaN(snrDB) || math.IsInf(snrDB, 0) {
		return nil, fmt.Errorf("awgn snr must be finite: %f", snrDB)
	}

	power := Power(x)
	noise, err := g.GaussianNoise(math.Sqrt(power/core.DBPowerToLinear(snrDB)), len(x))
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	copy(out, x)
	vecmath.AddBlockInPlace(out, noise)
	return out, nil
}

// Power returns the mean square of x, or 0 for an empty slice.
func Power(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return vecmath.DotProduct(x, x) / float64(len(x))
}

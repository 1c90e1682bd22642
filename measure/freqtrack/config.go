package freqtrack

import (
	"math"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/signal"
)

const (
	defaultFundamentalHz = 1000.0
	defaultSampleRate    = 8000.0
	defaultNumSamples    = 400
	defaultNumStages     = 3
	defaultPoleRadius    = 0.95
	defaultStepSize      = 1e-4
	defaultThetaPoints   = 1400
	defaultSNRdB         = 18.0
	defaultSeed          = 1
)

// Config holds all estimation parameters. The zero value is invalid; start
// from DefaultConfig.
type Config struct {
	FundamentalHz float64 `mapstructure:"fundamental_hz" yaml:"fundamental_hz"`
	SampleRate    float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	NumSamples    int     `mapstructure:"num_samples" yaml:"num_samples"`
	NumStages     int     `mapstructure:"num_subfilters" yaml:"num_subfilters"`
	PoleRadius    float64 `mapstructure:"pole_radius" yaml:"pole_radius"`
	StepSize      float64 `mapstructure:"step_size" yaml:"step_size"`
	ThetaPoints   int     `mapstructure:"num_theta_points" yaml:"num_theta_points"`

	Noise bool    `mapstructure:"add_noise" yaml:"add_noise"`
	SNRdB float64 `mapstructure:"snr_db" yaml:"snr_db"`
	Seed  int64   `mapstructure:"seed" yaml:"seed"`
}

// DefaultConfig returns the reference configuration: a 1 kHz tone at 8 kHz,
// 400 adaptive iterations, three stages with r = 0.95, μ = 1e-4 and a
// 1400-point initial grid.
func DefaultConfig() Config {
	return Config{
		FundamentalHz: defaultFundamentalHz,
		SampleRate:    defaultSampleRate,
		NumSamples:    defaultNumSamples,
		NumStages:     defaultNumStages,
		PoleRadius:    defaultPoleRadius,
		StepSize:      defaultStepSize,
		ThetaPoints:   defaultThetaPoints,
		SNRdB:         defaultSNRdB,
		Seed:          defaultSeed,
	}
}

// Validate checks every field and returns the first violation as a
// *ConfigError.
func (c Config) Validate() error {
	switch {
	case !(c.FundamentalHz > 0) || math.IsInf(c.FundamentalHz, 0):
		return &ConfigError{Field: "fundamental_hz", Value: c.FundamentalHz, Reason: "must be positive"}
	case !(c.SampleRate > 0) || math.IsInf(c.SampleRate, 0):
		return &ConfigError{Field: "sample_rate", Value: c.SampleRate, Reason: "must be positive"}
	case c.FundamentalHz >= core.Nyquist(c.SampleRate):
		return &ConfigError{Field: "fundamental_hz", Value: c.FundamentalHz, Reason: "must be below Nyquist"}
	case c.NumSamples < 1:
		return &ConfigError{Field: "num_samples", Value: c.NumSamples, Reason: "must be >= 1"}
	case c.NumStages < 1:
		return &ConfigError{Field: "num_subfilters", Value: c.NumStages, Reason: "must be >= 1"}
	case !(c.PoleRadius > 0 && c.PoleRadius < 1):
		return &ConfigError{Field: "pole_radius", Value: c.PoleRadius, Reason: "must be in (0, 1)"}
	case !(c.StepSize > 0) || math.IsInf(c.StepSize, 0):
		return &ConfigError{Field: "step_size", Value: c.StepSize, Reason: "must be positive"}
	case c.ThetaPoints < 1:
		return &ConfigError{Field: "num_theta_points", Value: c.ThetaPoints, Reason: "must be >= 1"}
	case c.Noise && (math.IsNaN(c.SNRdB) || math.IsInf(c.SNRdB, 0)):
		return &ConfigError{Field: "snr_db", Value: c.SNRdB, Reason: "must be finite"}
	}
	return nil
}

// TrueTheta returns the normalized angular frequency of FundamentalHz.
func (c Config) TrueTheta() float64 {
	return core.FreqToTheta(c.FundamentalHz, c.SampleRate)
}

// SignalLength returns the number of input samples a run consumes (N+1).
func (c Config) SignalLength() int {
	return c.NumSamples + 1
}

// Source returns the harmonic test source described by c.
func (c Config) Source() signal.Source {
	return signal.HarmonicSource{
		FundamentalHz: c.FundamentalHz,
		SampleRate:    c.SampleRate,
		Noise:         c.Noise,
		SNRdB:         c.SNRdB,
		Seed:          c.Seed,
	}
}

package freqtrack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
	"github.com/cwbudde/algo-freqtrack/dsp/signal"
)

// Estimator runs the two-phase estimation for a fixed Config.
type Estimator struct {
	cfg     Config
	bank    *notch.Bank
	source  signal.Source
	log     logr.Logger
	workers int
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSource replaces the harmonic test source derived from the Config.
func WithSource(src signal.Source) Option {
	return func(e *Estimator) {
		if src != nil {
			e.source = src
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(e *Estimator) {
		e.log = log
	}
}

// WithWorkers bounds the goroutines used by the grid scan. Zero or less
// uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.workers = n
	}
}

// New validates cfg and returns an Estimator. Invalid configurations fail
// here with a *ConfigError before any computation.
func New(cfg Config, opts ...Option) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bank, err := notch.NewBank(cfg.NumStages, cfg.PoleRadius)
	if err != nil {
		return nil, fmt.Errorf("freqtrack: build filter bank: %w", err)
	}

	e := &Estimator{
		cfg:    cfg,
		bank:   bank,
		source: cfg.Source(),
		log:    logr.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Config returns the validated configuration.
func (e *Estimator) Config() Config { return e.cfg }

// Bank returns the filter cascade.
func (e *Estimator) Bank() *notch.Bank { return e.bank }

// Estimate draws N+1 samples from the source and runs EstimateSignal.
func (e *Estimator) Estimate(ctx context.Context) (*Result, error) {
	x, err := e.source.Generate(e.cfg.SignalLength())
	if err != nil {
		return nil, fmt.Errorf("freqtrack: generate signal: %w", err)
	}
	return e.EstimateSignal(ctx, x)
}

// EstimateSignal runs the grid search and the adaptive loop on the first
// N+1 samples of x.
func (e *Estimator) EstimateSignal(ctx context.Context, x []float64) (*Result, error) {
	if len(x) == 0 {
		return nil, ErrEmptySignal
	}
	if len(x) < e.cfg.SignalLength() {
		return nil, fmt.Errorf("%w: have %d samples, need %d", ErrSignalTooShort, len(x), e.cfg.SignalLength())
	}
	x = x[:e.cfg.SignalLength()]
	if ok, idx := core.AllFinite(x); !ok {
		return nil, &InstabilityError{Phase: "input", Iteration: idx, Quantity: "sample", Value: x[idx]}
	}

	start := time.Now()
	log := e.log.WithValues("fundamentalHz", e.cfg.FundamentalHz, "sampleRate", e.cfg.SampleRate)

	search, err := Search(ctx, e.bank, x, e.cfg.ThetaPoints, e.workers)
	if err != nil {
		return nil, fmt.Errorf("freqtrack: initial search: %w", err)
	}
	if search.Fallback {
		log.Info("capture range not found, using minimum MSE point",
			"index", search.Index, "theta", search.Theta)
	}
	log.V(1).Info("initial search done",
		"theta", search.Theta,
		"freqHz", core.ThetaToFreq(search.Theta, e.cfg.SampleRate),
		"captureCount", search.Count,
		"elapsed", time.Since(start))

	lms, err := RunLMS(ctx, e.bank, x, search.Theta, e.cfg.StepSize, e.cfg.NumSamples)
	if err != nil {
		return nil, fmt.Errorf("freqtrack: adaptive loop: %w", err)
	}
	log.V(1).Info("adaptive loop done",
		"theta", lms.Theta,
		"freqHz", core.ThetaToFreq(lms.Theta, e.cfg.SampleRate),
		"elapsed", time.Since(start))

	return &Result{
		Config:       e.cfg,
		Search:       search,
		InitialTheta: search.Theta,
		FinalTheta:   lms.Theta,
		ThetaHistory: lms.History,
		Input:        x,
		Outputs:      e.bank.Process(x, lms.Theta),
		Elapsed:      time.Since(start),
	}, nil
}

// Estimate is a one-shot estimation with the given configuration.
func Estimate(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return e.Estimate(ctx)
}

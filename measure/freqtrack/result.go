package freqtrack

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
	timestats "github.com/cwbudde/algo-freqtrack/stats/time"
)

// Result is the outcome of one estimation run.
type Result struct {
	Config       Config
	Search       *SearchResult
	InitialTheta float64
	FinalTheta   float64
	ThetaHistory []float64      // θ after each adaptive iteration
	Input        []float64      // the N+1 samples processed
	Outputs      *notch.Outputs // cascade outputs at FinalTheta
	Elapsed      time.Duration
}

// CaptureFallback reports whether the initial estimate came from the MSE
// minimum because no grid point was inside the capture range.
func (r *Result) CaptureFallback() bool { return r.Search.Fallback }

// InitialFreq returns the initial estimate in Hz.
func (r *Result) InitialFreq() float64 {
	return core.ThetaToFreq(r.InitialTheta, r.Config.SampleRate)
}

// FinalFreq returns the final estimate in Hz.
func (r *Result) FinalFreq() float64 {
	return core.ThetaToFreq(r.FinalTheta, r.Config.SampleRate)
}

// FreqHistory returns the adaptive trajectory in Hz.
func (r *Result) FreqHistory() []float64 {
	return core.ThetasToFreqs(r.ThetaHistory, r.Config.SampleRate)
}

// ErrorHz returns |final - true| in Hz.
func (r *Result) ErrorHz() float64 {
	return math.Abs(r.FinalFreq() - r.Config.FundamentalHz)
}

// ErrorPercent returns ErrorHz relative to the true frequency, in percent.
func (r *Result) ErrorPercent() float64 {
	return 100 * r.ErrorHz() / r.Config.FundamentalHz
}

// InitialMSE returns the final- and first-stage MSE at the initial estimate.
func (r *Result) InitialMSE() (total, first float64) {
	i := r.Search.Index
	return r.Search.MSE[i], r.Search.MSEFirst[i]
}

// FinalMSE returns the final- and first-stage MSE at the final estimate.
func (r *Result) FinalMSE() (total, first float64) {
	return r.Outputs.MeanSquare(r.Outputs.Rows() - 1), r.Outputs.MeanSquare(1)
}

// CurveStats summarizes one MSE curve.
type CurveStats struct {
	Min  float64
	Mean float64
	Max  float64
}

func curveStats(v []float64) CurveStats {
	if len(v) == 0 {
		return CurveStats{}
	}
	return CurveStats{Min: floats.Min(v), Mean: stat.Mean(v, nil), Max: floats.Max(v)}
}

// Summary collects the figures of a run report.
type Summary struct {
	TrueHz          float64
	InitialHz       float64
	InitialTheta    float64
	FinalHz         float64
	FinalTheta      float64
	ErrorHz         float64
	ErrorPercent    float64
	FrequencyChange float64
	Iterations      int
	CaptureFallback bool
	CaptureCount    int
	MSE             CurveStats
	MSEFirst        CurveStats
	Input           timestats.Stats
	Residual        timestats.Stats
	RejectionDB     float64 // input power over final-stage power
	Elapsed         time.Duration
}

// Summary computes the report figures for r.
func (r *Result) Summary() Summary {
	s := Summary{
		TrueHz:          r.Config.FundamentalHz,
		InitialHz:       r.InitialFreq(),
		InitialTheta:    r.InitialTheta,
		FinalHz:         r.FinalFreq(),
		FinalTheta:      r.FinalTheta,
		ErrorHz:         r.ErrorHz(),
		ErrorPercent:    r.ErrorPercent(),
		Iterations:      len(r.ThetaHistory),
		CaptureFallback: r.CaptureFallback(),
		CaptureCount:    r.Search.Count,
		MSE:             curveStats(r.Search.MSE),
		MSEFirst:        curveStats(r.Search.MSEFirst),
		Input:           timestats.Calculate(r.Input),
		Residual:        timestats.Calculate(r.Outputs.Final()),
		Elapsed:         r.Elapsed,
	}
	if n := len(r.ThetaHistory); n > 0 {
		hist := r.FreqHistory()
		s.FrequencyChange = hist[n-1] - hist[0]
	}
	s.RejectionDB = rejectionDB(s.Input.Power, s.Residual.Power)
	return s
}

// rejectionDB returns input over residual power in dB, bounded to
// ±|core.MagnitudeFloorDB|. Two silent signals give 0 dB.
func rejectionDB(input, residual float64) float64 {
	limit := -core.MagnitudeFloorDB
	switch {
	case input <= 0 && residual <= 0:
		return 0
	case residual <= 0:
		return limit
	case input <= 0:
		return -limit
	}
	return math.Max(-limit, math.Min(limit, core.LinearPowerToDB(input/residual)))
}

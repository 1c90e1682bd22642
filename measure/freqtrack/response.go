package freqtrack

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-freqtrack/dsp/core"
	"github.com/cwbudde/algo-freqtrack/dsp/filter/notch"
)

// Response is the cascade frequency response at one θ.
type Response struct {
	Theta    float64
	Omega    []float64      // angular frequency grid, rad/sample
	FreqHz   []float64      // Omega in Hz
	Total    []complex128   // normalized cascade response
	Stages   [][]complex128 // normalized per-stage responses
	TotalDB  []float64      // |Total| in dB, floored at core.MagnitudeFloorDB
	StagesDB [][]float64
}

// ResponseGrid returns 3·points angular frequencies evenly spaced over
// [-π, π]. The normalization reference index is then points.
func ResponseGrid(points int) []float64 {
	if points <= 0 {
		return nil
	}
	return floats.Span(make([]float64, 3*points), -math.Pi, math.Pi)
}

// AnalyzeResponse evaluates the cascade response on omega. Magnitudes are
// normalized per stage and for the product at index len(omega)/3 (see
// notch.Bank.Response).
func AnalyzeResponse(bank *notch.Bank, theta float64, omega []float64, sampleRate float64) *Response {
	total, stages := bank.Response(theta, omega)

	r := &Response{
		Theta:    theta,
		Omega:    omega,
		FreqHz:   core.ThetasToFreqs(omega, sampleRate),
		Total:    total,
		Stages:   stages,
		TotalDB:  magnitudeDB(total),
		StagesDB: make([][]float64, len(stages)),
	}
	for i, h := range stages {
		r.StagesDB[i] = magnitudeDB(h)
	}
	return r
}

// NotchDepthDB returns the total response level at ±mθ for harmonics
// m = 1..stages, nearest grid point.
func (r *Response) NotchDepthDB(stages int) []float64 {
	if len(r.Omega) == 0 || len(r.TotalDB) != len(r.Omega) {
		return nil
	}
	out := make([]float64, 0, stages)
	for m := 1; m <= stages; m++ {
		target := float64(m) * r.Theta
		best := 0
		for i, w := range r.Omega {
			if math.Abs(w-target) < math.Abs(r.Omega[best]-target) {
				best = i
			}
		}
		out = append(out, r.TotalDB[best])
	}
	return out
}

func magnitudeDB(h []complex128) []float64 {
	re := make([]float64, len(h))
	im := make([]float64, len(h))
	for i, v := range h {
		re[i], im[i] = real(v), imag(v)
	}
	mag := make([]float64, len(h))
	vecmath.Magnitude(mag, re, im)
	return core.MagnitudesToDB(mag, mag)
}

// Response evaluates the cascade response at the final estimate on the
// default grid (3·ThetaPoints samples over [-π, π]).
func (r *Result) Response() (*Response, error) {
	bank, err := notch.NewBank(r.Config.NumStages, r.Config.PoleRadius)
	if err != nil {
		return nil, fmt.Errorf("freqtrack: build filter bank: %w", err)
	}
	return AnalyzeResponse(bank, r.FinalTheta, ResponseGrid(r.Config.ThetaPoints), r.Config.SampleRate), nil
}

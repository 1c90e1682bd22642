// Package freqtrack estimates the fundamental frequency of a harmonic signal
// with an adaptive cascaded notch filter.
//
// Estimation runs in two phases. [Search] scans θ over [0, π/M] and picks an
// initial estimate inside the capture range of the mean-squared-error
// surface. [RunLMS] then refines θ sample by sample with the update
//
//	θ ← θ - 2μ·y_M(n)·β(n)
//
// where y_M is the final cascade output and β its sensitivity to θ (see
// dsp/filter/notch). [Estimator] wires both phases to a signal source and
// returns a [Result]; [AnalyzeResponse] evaluates the cascade's frequency
// response at any θ for diagnostics.
//
// A run is deterministic: the grid scan may evaluate points concurrently,
// but selection and the adaptive loop are sequential.
package freqtrack

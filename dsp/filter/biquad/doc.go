// Package biquad provides second-order IIR section primitives.
//
// A [Section] runs Direct Form II Transposed recursion over a single
// second-order section defined by [Coefficients]. With zero initial state
// this is the same input/output map as the direct-form difference equation
//
//	y[n] = B0 x[n] + B1 x[n-1] + B2 x[n-2] - A1 y[n-1] - A2 y[n-2]
//
// Coefficient design lives with the filters that need it (see
// dsp/filter/notch).
package biquad

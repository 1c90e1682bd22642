// Package notch implements cascaded second-order IIR notch filters whose
// centre frequencies are tied to a single normalized fundamental θ.
//
// Stage m of a [Bank] places a zero pair on the unit circle at ±mθ and a pole
// pair at radius r on the same angle:
//
//	H_m(z) = (1 - 2cos(mθ) z^-1 + z^-2) / (1 - 2r cos(mθ) z^-1 + r² z^-2)
//
// so the cascade removes the fundamental and its first M-1 harmonics when θ
// matches the signal. [Bank.Process] returns every intermediate stage output
// as an [Outputs] arena; [Bank.Sensitivity] and [Bank.FinalSensitivity]
// compute ∂y/∂θ along the cascade, which an adaptive loop uses as its
// gradient.
//
// Every call starts from zero filter state. Nothing is carried between calls,
// so a Bank is safe for concurrent use.
package notch

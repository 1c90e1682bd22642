package biquad

import (
	"math"
	"math/cmplx"
)

// ResponseAt evaluates H(e^{jw}) at the normalized angular frequency w
// (radians per sample):
//
//	H = (B0 + B1 e^{-jw} + B2 e^{-2jw}) / (1 + A1 e^{-jw} + A2 e^{-2jw})
func (c *Coefficients) ResponseAt(w float64) complex128 {
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(c.B0, 0) + complex(c.B1, 0)*z1 + complex(c.B2, 0)*z2
	den := complex(1, 0) + complex(c.A1, 0)*z1 + complex(c.A2, 0)*z2
	return num / den
}

// Response computes the complex frequency response at the given frequency
// (Hz) and sample rate (Hz).
func (c *Coefficients) Response(freqHz, sampleRate float64) complex128 {
	return c.ResponseAt(2 * math.Pi * freqHz / sampleRate)
}

// ResponseGrid evaluates the response at every angular frequency in omega,
// writing into dst when it has room.
func (c *Coefficients) ResponseGrid(dst []complex128, omega []float64) []complex128 {
	if cap(dst) < len(omega) {
		dst = make([]complex128, len(omega))
	}
	dst = dst[:len(omega)]
	for i, w := range omega {
		dst[i] = c.ResponseAt(w)
	}
	return dst
}

// MagnitudeSquared returns |H(e^{jw})|^2 at the angular frequency w using a
// closed-form expression (no complex exponentials).
func (c *Coefficients) MagnitudeSquared(w float64) float64 {
	cw := 2 * math.Cos(w)
	b0, b1, b2 := c.B0, c.B1, c.B2
	a1, a2 := c.A1, c.A2

	num := (b0-b2)*(b0-b2) + b1*b1 + (b1*(b0+b2)+b0*b2*cw)*cw
	den := (1-a2)*(1-a2) + a1*a1 + (a1*(a2+1)+cw*a2)*cw
	return num / den
}

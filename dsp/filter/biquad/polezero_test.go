package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func unorderedRootsClose(got [2]complex128, a, b complex128, tol float64) bool {
	direct := cmplx.Abs(got[0]-a) <= tol && cmplx.Abs(got[1]-b) <= tol
	swapped := cmplx.Abs(got[0]-b) <= tol && cmplx.Abs(got[1]-a) <= tol
	return direct || swapped
}

func TestPolesZeros_SecondOrder(t *testing.T) {
	p1 := complex(0.72, 0.19)
	p2 := cmplx.Conj(p1)
	z1 := complex(0.31, 0.44)
	z2 := cmplx.Conj(z1)

	b0 := 2.3
	c := Coefficients{
		B0: b0,
		B1: -b0 * real(z1+z2),
		B2: b0 * real(z1*z2),
		A1: -real(p1 + p2),
		A2: real(p1 * p2),
	}

	if !unorderedRootsClose(c.Poles(), p1, p2, 1e-12) {
		t.Fatalf("unexpected poles: got=%v want={%v,%v}", c.Poles(), p1, p2)
	}
	if !unorderedRootsClose(c.Zeros(), z1, z2, 1e-12) {
		t.Fatalf("unexpected zeros: got=%v want={%v,%v}", c.Zeros(), z1, z2)
	}
}

func TestPoles_FirstOrder(t *testing.T) {
	c := Coefficients{B0: 1, B1: -0.3, A1: -0.8}
	if !unorderedRootsClose(c.Poles(), complex(0.8, 0), 0, 1e-12) {
		t.Fatalf("unexpected first-order poles: %v", c.Poles())
	}
	if !unorderedRootsClose(c.Zeros(), complex(0.3, 0), 0, 1e-12) {
		t.Fatalf("unexpected first-order zeros: %v", c.Zeros())
	}
}

func TestIsStable(t *testing.T) {
	tests := []struct {
		name   string
		c      Coefficients
		stable bool
		radius float64
	}{
		{name: "notch r=0.9", c: notchLike(), stable: true, radius: 0.9},
		{name: "real pole 1.2", c: Coefficients{B0: 1, A1: -1.2}, stable: false, radius: 1.2},
		{name: "passthrough", c: Coefficients{B0: 1}, stable: true, radius: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsStable(); got != tt.stable {
				t.Fatalf("IsStable() = %v, want %v", got, tt.stable)
			}
			if got := tt.c.MaxPoleRadius(); math.Abs(got-tt.radius) > 1e-12 {
				t.Fatalf("MaxPoleRadius() = %v, want %v", got, tt.radius)
			}
		})
	}
}

package biquad_test

import (
	"fmt"

	"github.com/cwbudde/algo-freqtrack/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	for i := range 6 {
		var x float64
		if i == 0 {
			x = 1
		}

		y := s.ProcessSample(x)
		fmt.Printf("y[%d] = %.6f\n", i, y)
	}
	// Output:
	// y[0] = 0.250000
	// y[1] = 0.550000
	// y[2] = 0.350000
	// y[3] = 0.048000
	// y[4] = -0.004400
	// y[5] = -0.002800
}

func ExampleCoefficients_Poles() {
	c := biquad.Coefficients{B0: 1, B1: -0.6, B2: 0.25, A1: -1.4, A2: 0.53}
	p := c.Poles()
	fmt.Printf("poles: %.2f%+.2fi, %.2f%+.2fi\n", real(p[0]), imag(p[0]), real(p[1]), imag(p[1]))
	fmt.Println("stable:", c.IsStable())
	// Output:
	// poles: 0.70+0.20i, 0.70-0.20i
	// stable: true
}

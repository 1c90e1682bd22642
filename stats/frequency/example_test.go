package frequency_test

import (
	"fmt"

	frequencystats "github.com/cwbudde/algo-freqtrack/stats/frequency"
)

func ExampleCalculate() {
	freq := []float64{0, 1000, 2000, 3000, 4000}
	power := []float64{0, 1, 2, 1, 0}
	s := frequencystats.Calculate(freq, power)
	fmt.Printf("centroid=%.0f spread=%.1f rolloff=%.0f\n", s.Centroid, s.Spread, s.Rolloff)

	// Output:
	// centroid=2000 spread=707.1 rolloff=3000
}

func ExampleFlatness() {
	flat := frequencystats.Flatness([]float64{1, 1, 1, 1})
	fmt.Printf("flatness=%.1f\n", flat)

	// Output:
	// flatness=1.0
}

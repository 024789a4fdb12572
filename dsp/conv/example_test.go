package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-gammaspec/dsp/conv"
)

func ExampleDirect() {
	counts := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(counts, kernel)

	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExampleConvolveMode() {
	counts := []float64{0, 0, 9, 0, 0}
	boxcar := []float64{1, 1, 1}

	sums, _ := conv.ConvolveMode(counts, boxcar, conv.ModeValid)
	fmt.Printf("%.0f\n", sums)

	// Output:
	// [9 9 9]
}

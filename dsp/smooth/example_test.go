package smooth_test

import (
	"fmt"

	"github.com/cwbudde/algo-gammaspec/dsp/smooth"
)

func ExampleSmooth() {
	counts := []float64{2, 4, 6, 8, 10, 8, 6}

	out, _ := smooth.Smooth(counts, 3)
	fmt.Printf("%.0f\n", out)

	// Output:
	// [0 4 6 8 9 8 0]
}

func ExampleNewMovingAverage() {
	counts := []float64{2, 4, 6, 8, 10, 8, 6}

	m, _ := smooth.NewMovingAverage(3, smooth.EdgeShrink)
	out, _ := m.Apply(counts)
	fmt.Printf("%.0f\n", out)

	// Output:
	// [3 4 6 8 9 8 7]
}

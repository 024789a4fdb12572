package peak_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gammaspec/measure/peak"
)

func ExampleAnalyzer_Analyze() {
	counts := make([]float64, 200)
	for i := range counts {
		d := (float64(i) - 100) / 8
		counts[i] = 10 + 1000*math.Exp(-0.5*d*d)
	}

	a, err := peak.NewAnalyzer(peak.WithWindow(5), peak.WithMinProminence(50), peak.WithBoundarySource(peak.Raw))
	if err != nil {
		panic(err)
	}
	report, err := a.Analyze(peak.ChannelSpectrum(counts))
	if err != nil {
		panic(err)
	}

	for _, p := range report.Peaks {
		fmt.Printf("peak %d bounds %v centroid %.2f\n", p.Index, p.Bounds, p.Centroid.Value)
	}
	// Output:
	// peak 100 bounds (70,100,130) centroid 100.00
}

func ExampleThresholdWindow() {
	y := []float64{10, 10, 20, 60, 100, 60, 20, 10, 10}

	w, err := peak.ThresholdWindow(y, peak.Bounds{Left: 0, Peak: 4, Right: 8}, peak.DefaultThresholdFraction)
	if err != nil {
		panic(err)
	}
	fmt.Printf("[%d,%d] background %.0f threshold %.0f\n", w.Lo, w.Hi, w.Background, w.Threshold)
	// Output:
	// [3,5] background 10 threshold 28
}

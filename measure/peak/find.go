package peak

import (
	"math"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
)

// DefaultWindow is the default smoothing window and edge guard.
const DefaultWindow = 5

// FindConfig controls peak detection.
type FindConfig struct {
	// EdgeGuard excludes peaks closer than this many samples to either end.
	EdgeGuard int
}

// FindOption mutates a FindConfig.
type FindOption func(*FindConfig)

// WithEdgeGuard sets the number of samples at each end in which no peak is
// reported. Zero disables the guard.
func WithEdgeGuard(n int) FindOption {
	return func(cfg *FindConfig) {
		if n >= 0 {
			cfg.EdgeGuard = n
		}
	}
}

// FindPeaks returns the ascending indices of local maxima of y whose
// prominence is at least minProminence. Plateaus report their middle
// sample. An empty result is not an error.
func FindPeaks(y, x []float64, minProminence float64, opts ...FindOption) ([]int, error) {
	const op = "find peaks"
	if err := core.ValidateSeries(op, x, y); err != nil {
		return nil, err
	}
	if math.IsNaN(minProminence) || minProminence < 0 {
		return nil, core.Invalidf(op, "minimum prominence must be >= 0, got %g", minProminence)
	}

	cfg := FindConfig{EdgeGuard: DefaultWindow}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	n := len(y)
	peaks := make([]int, 0, 8)
	for _, p := range localMaxima(y) {
		if p < cfg.EdgeGuard || n-1-p < cfg.EdgeGuard {
			continue
		}
		if Prominence(y, p) >= minProminence {
			peaks = append(peaks, p)
		}
	}
	return peaks, nil
}

// localMaxima finds samples strictly higher than their left neighbour and
// not lower than the right one, collapsing flat tops to their midpoint.
func localMaxima(y []float64) []int {
	var maxima []int
	n := len(y)
	for i := 1; i < n-1; {
		if !(y[i-1] < y[i]) {
			i++
			continue
		}
		ahead := i + 1
		for ahead < n-1 && y[ahead] == y[i] {
			ahead++
		}
		if y[ahead] < y[i] {
			maxima = append(maxima, (i+ahead-1)/2)
		}
		i = ahead
	}
	return maxima
}

// Prominence returns the height of y[i] above the higher of its two
// bounding valleys. Each valley is the minimum between i and the first
// strictly higher sample, a missing sample, or the end of the series.
// NaN is returned for an index out of range or a missing sample.
func Prominence(y []float64, i int) float64 {
	if i < 0 || i >= len(y) || math.IsNaN(y[i]) {
		return math.NaN()
	}
	h := y[i]

	leftMin := h
	for j := i - 1; j >= 0; j-- {
		if math.IsNaN(y[j]) || y[j] > h {
			break
		}
		leftMin = math.Min(leftMin, y[j])
	}

	rightMin := h
	for j := i + 1; j < len(y); j++ {
		if math.IsNaN(y[j]) || y[j] > h {
			break
		}
		rightMin = math.Min(rightMin, y[j])
	}

	return h - math.Max(leftMin, rightMin)
}

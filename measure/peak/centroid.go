package peak

import (
	"math"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"
)

// EstimateConfig holds the parameters shared by Centroid and FitGaussian.
type EstimateConfig struct {
	Fraction      float64
	MaxIterations int
	// InitialGuess is {amplitude, sigma, mu}; nil derives it from the data.
	InitialGuess []float64
}

// EstimateOption mutates an EstimateConfig.
type EstimateOption func(*EstimateConfig)

// DefaultMaxIterations bounds the Levenberg-Marquardt iterations.
const DefaultMaxIterations = 200

// DefaultEstimateConfig returns the defaults used by Centroid and
// FitGaussian.
func DefaultEstimateConfig() EstimateConfig {
	return EstimateConfig{
		Fraction:      DefaultThresholdFraction,
		MaxIterations: DefaultMaxIterations,
	}
}

// WithFraction sets the threshold fraction of the sub-window.
func WithFraction(f float64) EstimateOption {
	return func(cfg *EstimateConfig) {
		if f > 0 && f < 1 {
			cfg.Fraction = f
		}
	}
}

// WithIterations sets the fit iteration budget.
func WithIterations(n int) EstimateOption {
	return func(cfg *EstimateConfig) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// WithInitialGuess seeds the fit with the given parameters.
func WithInitialGuess(amplitude, sigma, mu float64) EstimateOption {
	return func(cfg *EstimateConfig) {
		cfg.InitialGuess = []float64{amplitude, sigma, mu}
	}
}

// ApplyEstimateOptions applies zero or more options to the default config.
func ApplyEstimateOptions(opts ...EstimateOption) EstimateConfig {
	cfg := DefaultEstimateConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// CentroidResult is the weighted-mean position of a peak.
type CentroidResult struct {
	Value float64
	// Uncertainty is the counting-statistics standard error of Value.
	Uncertainty float64
	Window      Window
}

// Centroid returns Σxᵢyᵢ / Σyᵢ over the thresholded sub-window of b.
func Centroid(x, y []float64, b Bounds, opts ...EstimateOption) (float64, error) {
	res, err := CentroidDetail(x, y, b, opts...)
	if err != nil {
		return 0, err
	}
	return res.Value, nil
}

// CentroidDetail is Centroid plus the window and the uncertainty
// sqrt(Σ yᵢ(xᵢ-c)²) / Σ yᵢ.
func CentroidDetail(x, y []float64, b Bounds, opts ...EstimateOption) (CentroidResult, error) {
	const op = "centroid"
	if err := core.ValidateSeries(op, x, y); err != nil {
		return CentroidResult{}, err
	}
	cfg := ApplyEstimateOptions(opts...)

	w, err := ThresholdWindow(y, b, cfg.Fraction)
	if err != nil {
		return CentroidResult{}, err
	}
	xs, ys := x[w.Lo:w.Hi+1], y[w.Lo:w.Hi+1]
	if core.HasNaN(ys) {
		return CentroidResult{}, core.Invalidf(op, "missing observation inside window [%d,%d]", w.Lo, w.Hi)
	}

	total := vecmath.Sum(ys)
	if !(total > 0) {
		return CentroidResult{}, &SignalError{Bounds: b, Reason: "non-positive counts in window"}
	}

	c := stat.Mean(xs, ys)
	var spread float64
	for i, v := range ys {
		d := xs[i] - c
		spread += v * d * d
	}

	return CentroidResult{
		Value:       c,
		Uncertainty: math.Sqrt(math.Max(spread, 0)) / total,
		Window:      w,
	}, nil
}

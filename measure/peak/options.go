package peak

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/cwbudde/algo-gammaspec/dsp/smooth"
	"github.com/rs/zerolog"
)

// BoundarySource selects the curve the boundary walk runs on.
type BoundarySource int

const (
	// Smoothed walks the smoothed counts.
	Smoothed BoundarySource = iota
	// Raw walks the unsmoothed counts.
	Raw
)

func (s BoundarySource) String() string {
	if s == Raw {
		return "raw"
	}
	return "smoothed"
}

// ParseBoundarySource maps "smoothed" (or "") and "raw" to a BoundarySource.
func ParseBoundarySource(s string) (BoundarySource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "smoothed":
		return Smoothed, nil
	case "raw":
		return Raw, nil
	default:
		return Smoothed, fmt.Errorf("peak: unknown boundary source %q", s)
	}
}

// Config defines the analyzer pipeline.
type Config struct {
	Window        int
	EdgePolicy    smooth.EdgePolicy
	MinProminence float64
	// EdgeGuard is the number of samples at each end without peaks. A
	// negative value means the smoothing window; zero disables the guard.
	EdgeGuard      int
	Bounds         BoundsConfig
	Fraction       float64
	MaxIterations  int
	BoundarySource BoundarySource
	Workers        int
	Logger         zerolog.Logger
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		Window:         DefaultWindow,
		EdgePolicy:     smooth.EdgeZero,
		MinProminence:  50,
		EdgeGuard:      -1,
		Bounds:         DefaultBoundsConfig(),
		Fraction:       DefaultThresholdFraction,
		MaxIterations:  DefaultMaxIterations,
		BoundarySource: Smoothed,
		Workers:        runtime.GOMAXPROCS(0),
		Logger:         zerolog.Nop(),
	}
}

// WithWindow sets the moving-average window.
func WithWindow(window int) Option {
	return func(cfg *Config) {
		if window > 0 {
			cfg.Window = window
		}
	}
}

// WithEdgePolicy sets how undefined smoothed samples are materialized.
func WithEdgePolicy(p smooth.EdgePolicy) Option {
	return func(cfg *Config) {
		cfg.EdgePolicy = p
	}
}

// WithMinProminence sets the minimum peak prominence.
func WithMinProminence(p float64) Option {
	return func(cfg *Config) {
		if p >= 0 {
			cfg.MinProminence = p
		}
	}
}

// WithEdgeExclusion overrides the samples at each end excluded from peak
// detection. Zero reports peaks up to the ends.
func WithEdgeExclusion(n int) Option {
	return func(cfg *Config) {
		if n >= 0 {
			cfg.EdgeGuard = n
		}
	}
}

// WithTolerance sets the boundary slope tolerance.
func WithTolerance(tol float64) Option {
	return func(cfg *Config) {
		if tol > 0 {
			cfg.Bounds.Tolerance = tol
		}
	}
}

// WithGuardBands sets the left and right boundary guard bands.
func WithGuardBands(left, right int) Option {
	return func(cfg *Config) {
		if left > 0 && right > 0 {
			cfg.Bounds.LeftGuard = left
			cfg.Bounds.RightGuard = right
		}
	}
}

// WithThresholdFraction sets the sub-window threshold fraction.
func WithThresholdFraction(f float64) Option {
	return func(cfg *Config) {
		if f > 0 && f < 1 {
			cfg.Fraction = f
		}
	}
}

// WithMaxIterations sets the fit iteration budget.
func WithMaxIterations(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxIterations = n
		}
	}
}

// WithBoundarySource selects the curve used by the boundary walk.
func WithBoundarySource(s BoundarySource) Option {
	return func(cfg *Config) {
		cfg.BoundarySource = s
	}
}

// WithWorkers bounds the number of peaks processed concurrently.
func WithWorkers(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	}
}

// WithLogger sets the logger for per-peak events.
func WithLogger(l zerolog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

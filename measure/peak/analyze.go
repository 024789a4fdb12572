package peak

import (
	"errors"
	"sync"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/cwbudde/algo-gammaspec/dsp/smooth"
)

// PeakResult is the outcome for one detected peak. Bounds, Centroid and Fit
// are set when the matching stage succeeded; otherwise the stage's error is
// recorded. A failed fit does not invalidate the centroid.
type PeakResult struct {
	Index      int
	X          float64
	Prominence float64

	Bounds   Bounds
	Centroid *CentroidResult
	Fit      *FitResult

	BoundsErr   error
	CentroidErr error
	FitErr      error
}

// OK reports whether every stage succeeded.
func (r PeakResult) OK() bool {
	return r.BoundsErr == nil && r.CentroidErr == nil && r.FitErr == nil
}

// Err joins the stage errors, or returns nil.
func (r PeakResult) Err() error {
	return errors.Join(r.BoundsErr, r.CentroidErr, r.FitErr)
}

// Report is the result of analyzing one spectrum.
type Report struct {
	Smoothed []float64
	Peaks    []PeakResult
}

// Failed returns the number of peaks with at least one failed stage.
func (r Report) Failed() int {
	n := 0
	for _, p := range r.Peaks {
		if !p.OK() {
			n++
		}
	}
	return n
}

// Analyzer runs smoothing, peak finding, boundary location and per-peak
// estimation over a spectrum.
type Analyzer struct {
	cfg      Config
	bounds   BoundsConfig
	smoother *smooth.MovingAverage
}

// NewAnalyzer builds an analyzer from the default config and opts.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	return NewAnalyzerFromConfig(ApplyOptions(opts...))
}

// NewAnalyzerFromConfig builds an analyzer from a complete config.
func NewAnalyzerFromConfig(cfg Config) (*Analyzer, error) {
	const op = "analyzer"
	if cfg.EdgeGuard < 0 {
		cfg.EdgeGuard = cfg.Window
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if !(cfg.Fraction > 0 && cfg.Fraction < 1) {
		return nil, core.Invalidf(op, "threshold fraction must be in (0,1), got %g", cfg.Fraction)
	}
	if !(cfg.Bounds.Tolerance > 0) || cfg.Bounds.LeftGuard < 1 || cfg.Bounds.RightGuard < 1 {
		return nil, core.Invalidf(op, "bounds config %+v", cfg.Bounds)
	}
	if cfg.MinProminence < 0 || cfg.MaxIterations < 1 {
		return nil, core.Invalidf(op, "min prominence %g, max iterations %d", cfg.MinProminence, cfg.MaxIterations)
	}
	sm, err := smooth.NewMovingAverage(cfg.Window, cfg.EdgePolicy)
	if err != nil {
		return nil, err
	}

	// The moving average is undefined within half a window of either end,
	// whatever the edge policy fills in there, so a walk on the smoothed
	// curve may not stop inside that band.
	bounds := cfg.Bounds
	if cfg.BoundarySource == Smoothed {
		bounds.LeftMargin = max(bounds.LeftMargin, cfg.Window/2)
		bounds.RightMargin = max(bounds.RightMargin, cfg.Window-1-cfg.Window/2)
	}
	return &Analyzer{cfg: cfg, bounds: bounds, smoother: sm}, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze processes s. Only malformed input is returned as an error;
// per-peak failures are recorded in the report.
func (a *Analyzer) Analyze(s Spectrum) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}
	log := a.cfg.Logger

	smoothed, err := a.smoother.Apply(s.Y)
	if err != nil {
		return Report{}, err
	}
	peaks, err := FindPeaks(smoothed, s.X, a.cfg.MinProminence, WithEdgeGuard(a.cfg.EdgeGuard))
	if err != nil {
		return Report{}, err
	}
	log.Debug().Int("samples", s.Len()).Int("peaks", len(peaks)).Msg("peak search done")

	curve := smoothed
	if a.cfg.BoundarySource == Raw {
		curve = s.Y
	}

	results := make([]PeakResult, len(peaks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(a.cfg.Workers, len(peaks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.analyzePeak(s, smoothed, curve, peaks[i])
			}
		}()
	}
	for i := range peaks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return Report{Smoothed: smoothed, Peaks: results}, nil
}

func (a *Analyzer) analyzePeak(s Spectrum, smoothed, curve []float64, idx int) PeakResult {
	log := a.cfg.Logger.With().Int("peak", idx).Logger()
	res := PeakResult{Index: idx, X: s.X[idx], Prominence: Prominence(smoothed, idx)}

	b, err := LocateBounds(s.X, curve, idx, a.bounds)
	if err != nil {
		res.BoundsErr = err
		log.Warn().Err(err).Msg("no bounds")
		return res
	}
	res.Bounds = b
	log = log.With().Int("left", b.Left).Int("right", b.Right).Logger()

	opts := []EstimateOption{WithFraction(a.cfg.Fraction), WithIterations(a.cfg.MaxIterations)}

	c, err := CentroidDetail(s.X, s.Y, b, opts...)
	if err != nil {
		res.CentroidErr = err
		log.Warn().Err(err).Msg("centroid failed")
	} else {
		res.Centroid = &c
	}

	fit, err := FitGaussian(s.X, s.Y, b, opts...)
	if err != nil {
		res.FitErr = err
		log.Warn().Err(err).Msg("fit failed")
	} else {
		res.Fit = &fit
	}

	log.Debug().Bool("ok", res.OK()).Msg("peak analyzed")
	return res
}

package peak

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/maorshutman/lm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	sqrt2Pi   = 2.5066282746310002
	fwhmSigma = 2.3548200450309493 // 2*sqrt(2*ln 2)

	// Largest cosine between the residual and any Jacobian column accepted
	// as a stationary point.
	gradientTol = 1e-3
	// Residual norm, relative to the data norm, treated as an exact fit.
	exactFitTol = 1e-6
)

// Gaussian evaluates A/(σ√(2π)) · exp(-(x-μ)²/(2σ²)).
func Gaussian(x, amplitude, sigma, mu float64) float64 {
	d := (x - mu) / sigma
	return amplitude / (sigma * sqrt2Pi) * math.Exp(-0.5*d*d)
}

// FitResult holds the fitted Gaussian parameters and their standard errors.
// Amplitude is the area under the curve; Sigma is always positive.
type FitResult struct {
	Amplitude float64
	Sigma     float64
	Mu        float64

	AmplitudeErr float64
	SigmaErr     float64
	MuErr        float64

	RSquared    float64
	Points      int
	Evaluations int
}

// FWHM returns the full width at half maximum.
func (r FitResult) FWHM() float64 { return r.Sigma * fwhmSigma }

// Height returns the peak value of the fitted curve.
func (r FitResult) Height() float64 { return r.Amplitude / (r.Sigma * sqrt2Pi) }

// At evaluates the fitted curve.
func (r FitResult) At(x float64) float64 { return Gaussian(x, r.Amplitude, r.Sigma, r.Mu) }

func (r FitResult) String() string {
	return fmt.Sprintf("A=%.4g±%.2g σ=%.4g±%.2g μ=%.6g±%.2g", r.Amplitude, r.AmplitudeErr,
		r.Sigma, r.SigmaErr, r.Mu, r.MuErr)
}

// FitGaussian fits Gaussian to the thresholded sub-window of b by
// Levenberg-Marquardt least squares. Standard errors are the square roots
// of the diagonal of s²(JᵀJ)⁻¹ with s² = SSR/(n-3). The fit fails when
// the Jacobian is singular at the initial guess, at any point the optimizer
// evaluates it, or at the solution.
//
// The fit runs on x centred on the peak and scaled by the window
// half-width, and y scaled by its maximum, then maps back.
func FitGaussian(x, y []float64, b Bounds, opts ...EstimateOption) (FitResult, error) {
	const op = "fit gaussian"
	if err := core.ValidateSeries(op, x, y); err != nil {
		return FitResult{}, err
	}
	cfg := ApplyEstimateOptions(opts...)
	if cfg.InitialGuess != nil && len(cfg.InitialGuess) != 3 {
		return FitResult{}, core.Invalidf(op, "initial guess needs 3 parameters, got %d", len(cfg.InitialGuess))
	}

	w, err := ThresholdWindow(y, b, cfg.Fraction)
	if err != nil {
		return FitResult{}, err
	}
	n := w.Len()
	if n < 4 {
		return FitResult{}, &FitError{Bounds: b, Reason: fmt.Sprintf("%d points in window, need at least 4", n)}
	}
	xs, ys := x[w.Lo:w.Hi+1], y[w.Lo:w.Hi+1]
	if core.HasNaN(ys) {
		return FitResult{}, core.Invalidf(op, "missing observation inside window [%d,%d]", w.Lo, w.Hi)
	}

	center := x[b.Peak]
	scale := 0.5 * (xs[n-1] - xs[0])
	yMax := floats.Max(ys)
	if !(scale > 0) || !(yMax > 0) {
		return FitResult{}, &FitError{Bounds: b, Reason: "degenerate window"}
	}

	u := make([]float64, n)
	v := make([]float64, n)
	for i := range xs {
		u[i] = (xs[i] - center) / scale
		v[i] = ys[i] / yMax
	}

	guess := cfg.InitialGuess
	if guess == nil {
		sigma := scale / math.Sqrt(-2*math.Log(cfg.Fraction))
		guess = []float64{y[b.Peak] * sigma * sqrt2Pi, sigma, center}
	}
	p0 := []float64{
		guess[0] / (scale * yMax),
		guess[1] / scale,
		(guess[2] - center) / scale,
	}
	if !allFinite(p0) || p0[1] == 0 {
		return FitResult{}, core.Invalidf(op, "initial guess %v not usable", guess)
	}

	jac := mat.NewDense(n, 3, nil)
	gaussJacobian(jac, u, p0)
	if singular(jac) {
		return FitResult{}, &FitError{Bounds: b, Reason: "singular Jacobian at initial guess"}
	}

	// The numerical Jacobian evaluates residual from several goroutines.
	var evals atomic.Int64
	residual := func(dst, p []float64) {
		evals.Add(1)
		for i, ui := range u {
			dst[i] = Gaussian(ui, p[0], p[1], p[2]) - v[i]
		}
	}
	nj := &lm.NumJac{Func: residual}
	watch := &singularWatch{jac: nj.Jac}
	problem := lm.LMProblem{
		Dim:        3,
		Size:       n,
		Func:       residual,
		Jac:        watch.Jac,
		InitParams: p0,
		Tau:        1e-6,
		Eps1:       1e-10,
		Eps2:       1e-10,
	}
	settings := &lm.Settings{Iterations: cfg.MaxIterations, ObjectiveTol: 1e-16}

	result, err := solve(problem, settings)
	if err != nil {
		return FitResult{}, &FitError{Bounds: b, Reason: "optimizer failed", Err: err}
	}
	if watch.seen {
		return FitResult{}, &FitError{Bounds: b, Reason: "singular Jacobian at an evaluated point"}
	}
	p := append([]float64(nil), result.X...)
	if len(p) != 3 || !allFinite(p) {
		return FitResult{}, &FitError{Bounds: b, Reason: "non-finite parameters"}
	}
	if p[1] == 0 || p[0] == 0 {
		return FitResult{}, &FitError{Bounds: b, Reason: "zero width or amplitude"}
	}
	if p[1] < 0 {
		p[0], p[1] = -p[0], -p[1]
	}

	r := make([]float64, n)
	residual(r, p)
	gaussJacobian(jac, u, p)
	if reason := stationary(jac, r, v); reason != "" {
		return FitResult{}, &FitError{Bounds: b, Reason: reason}
	}

	var jtj, cov mat.Dense
	jtj.Mul(jac.T(), jac)
	if err := cov.Inverse(&jtj); err != nil {
		return FitResult{}, &FitError{Bounds: b, Reason: "singular Jacobian at solution", Err: err}
	}
	ssr := floats.Dot(r, r)
	cov.Scale(ssr/float64(n-3), &cov)

	res := FitResult{
		Amplitude:    p[0] * scale * yMax,
		Sigma:        p[1] * scale,
		Mu:           center + p[2]*scale,
		AmplitudeErr: math.Sqrt(math.Max(cov.At(0, 0), 0)) * scale * yMax,
		SigmaErr:     math.Sqrt(math.Max(cov.At(1, 1), 0)) * scale,
		MuErr:        math.Sqrt(math.Max(cov.At(2, 2), 0)) * scale,
		Points:       n,
		Evaluations:  int(evals.Load()),
	}

	mean := stat.Mean(v, nil)
	var sst float64
	for _, vi := range v {
		sst += (vi - mean) * (vi - mean)
	}
	if sst > 0 {
		res.RSquared = 1 - ssr/sst
	}

	return res, nil
}

// singularWatch wraps a Jacobian function and records whether any
// evaluation was singular.
type singularWatch struct {
	jac  func(dst *mat.Dense, p []float64)
	seen bool
}

func (w *singularWatch) Jac(dst *mat.Dense, p []float64) {
	w.jac(dst, p)
	if !w.seen && singular(dst) {
		w.seen = true
	}
}

// solve runs the optimizer, turning its panic on a singular damped system
// into an error.
func solve(problem lm.LMProblem, settings *lm.Settings) (res *lm.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lm: %v", r)
		}
	}()
	return lm.LM(problem, settings)
}

// gaussJacobian fills dst with ∂Gaussian/∂(A, σ, μ) at each u.
func gaussJacobian(dst *mat.Dense, u, p []float64) {
	a, sigma, mu := p[0], p[1], p[2]
	for i, ui := range u {
		d := ui - mu
		base := math.Exp(-0.5*d*d/(sigma*sigma)) / (sigma * sqrt2Pi)
		dst.Set(i, 0, base)
		dst.Set(i, 1, a*base*(d*d/(sigma*sigma*sigma)-1/sigma))
		dst.Set(i, 2, a*base*d/(sigma*sigma))
	}
}

func singular(jac *mat.Dense) bool {
	_, c := jac.Dims()
	for j := 0; j < c; j++ {
		if floats.Norm(mat.Col(nil, j, jac), 2) == 0 {
			return true
		}
	}
	var jtj, inv mat.Dense
	jtj.Mul(jac.T(), jac)
	return inv.Inverse(&jtj) != nil
}

// stationary applies the MINPACK orthogonality test: the residual must be
// nearly orthogonal to every Jacobian column. It returns a failure reason
// or the empty string.
func stationary(jac *mat.Dense, r, v []float64) string {
	rNorm := floats.Norm(r, 2)
	if rNorm <= exactFitTol*floats.Norm(v, 2) {
		return ""
	}
	_, c := jac.Dims()
	col := make([]float64, len(r))
	for j := 0; j < c; j++ {
		mat.Col(col, j, jac)
		colNorm := floats.Norm(col, 2)
		if colNorm == 0 {
			return "singular Jacobian at solution"
		}
		if math.Abs(floats.Dot(col, r))/(colNorm*rNorm) > gradientTol {
			return "iteration budget exhausted before the gradient vanished"
		}
	}
	return ""
}

func allFinite(p []float64) bool {
	for _, v := range p {
		if !core.IsFinite(v) {
			return false
		}
	}
	return true
}

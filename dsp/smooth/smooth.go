package smooth

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-gammaspec/dsp/conv"
	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// EdgePolicy selects how samples without a defined average are materialized.
type EdgePolicy int

const (
	// EdgeZero replaces undefined averages with 0.
	EdgeZero EdgePolicy = iota
	// EdgeShrink averages the available samples of the clipped window.
	EdgeShrink
	// EdgeMissing leaves undefined averages as NaN.
	EdgeMissing
)

func (p EdgePolicy) String() string {
	switch p {
	case EdgeZero:
		return "zero"
	case EdgeShrink:
		return "shrink"
	case EdgeMissing:
		return "missing"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(p))
	}
}

// ParseEdgePolicy maps "zero", "shrink" or "missing" to an EdgePolicy.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zero":
		return EdgeZero, nil
	case "shrink":
		return EdgeShrink, nil
	case "missing", "nan":
		return EdgeMissing, nil
	default:
		return EdgeZero, core.Invalidf("smooth", "unknown edge policy %q", s)
	}
}

// MovingAverage is a centered simple moving average of fixed width.
// It holds no per-call state and may be shared between goroutines.
type MovingAverage struct {
	window int
	policy EdgePolicy
	kernel []float64
}

// NewMovingAverage returns a smoother averaging window samples.
func NewMovingAverage(window int, policy EdgePolicy) (*MovingAverage, error) {
	if window < 1 {
		return nil, core.Invalidf("smooth", "window must be >= 1: %d", window)
	}
	if policy < EdgeZero || policy > EdgeMissing {
		return nil, core.Invalidf("smooth", "unknown edge policy %d", int(policy))
	}

	kernel := make([]float64, window)
	for i := range kernel {
		kernel[i] = 1
	}

	return &MovingAverage{window: window, policy: policy, kernel: kernel}, nil
}

// Smooth is a one-shot moving average with the EdgeZero policy.
func Smooth(y []float64, window int) ([]float64, error) {
	m, err := NewMovingAverage(window, EdgeZero)
	if err != nil {
		return nil, err
	}
	return m.Apply(y)
}

// Window returns the averaging width in samples.
func (m *MovingAverage) Window() int { return m.window }

// Policy returns the edge policy.
func (m *MovingAverage) Policy() EdgePolicy { return m.policy }

// Apply returns the smoothed series. y is not modified.
func (m *MovingAverage) Apply(y []float64) ([]float64, error) {
	return m.ApplyTo(nil, y)
}

// ApplyTo is like Apply but reuses dst's capacity when possible.
func (m *MovingAverage) ApplyTo(dst, y []float64) ([]float64, error) {
	n := len(y)
	if n == 0 {
		return nil, core.Invalidf("smooth", "empty series")
	}
	if m.window > n {
		return nil, core.Invalidf("smooth", "window %d larger than series length %d", m.window, n)
	}

	clean := make([]float64, n)
	missing := make([]int, n+1) // prefix count of NaN samples
	for i, v := range y {
		missing[i+1] = missing[i]
		if math.IsNaN(v) {
			missing[i+1]++
			continue
		}
		clean[i] = v
	}

	// sums[k] holds clean[k] + ... + clean[k+w-1].
	sums, err := conv.ConvolveMode(clean, m.kernel, conv.ModeValid)
	if err != nil {
		return nil, fmt.Errorf("smooth: %w", err)
	}

	w := m.window
	half := w / 2
	out := core.EnsureLen(dst, n)

	for i := range out {
		start := i - half
		end := start + w - 1
		if start >= 0 && end < n && missing[end+1]-missing[start] == 0 {
			out[i] = sums[start] / float64(w)
			continue
		}
		out[i] = m.undefined(clean, missing, start, end)
	}

	return out, nil
}

func (m *MovingAverage) undefined(clean []float64, missing []int, start, end int) float64 {
	switch m.policy {
	case EdgeMissing:
		return math.NaN()
	case EdgeShrink:
		lo := core.ClampInt(start, 0, len(clean)-1)
		hi := core.ClampInt(end, 0, len(clean)-1)
		count := hi - lo + 1 - (missing[hi+1] - missing[lo])
		if count <= 0 {
			return 0
		}
		return vecmath.Sum(clean[lo:hi+1]) / float64(count)
	default:
		return 0
	}
}

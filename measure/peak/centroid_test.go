package peak

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-gammaspec/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentroidSymmetric(t *testing.T) {
	y := []float64{10, 10, 20, 60, 100, 60, 20, 10, 10}
	x := testutil.Channels(len(y))

	res, err := CentroidDetail(x, y, Bounds{Left: 0, Peak: 4, Right: 8})
	require.NoError(t, err)
	assert.InDelta(t, 4, res.Value, 1e-12)
	assert.InDelta(t, math.Sqrt(120)/220, res.Uncertainty, 1e-12)
	assert.Equal(t, 3, res.Window.Lo)
	assert.Equal(t, 5, res.Window.Hi)
}

func TestCentroidAsymmetric(t *testing.T) {
	y := []float64{0, 0, 50, 100, 80, 0, 0}
	x := testutil.Channels(len(y))

	c, err := Centroid(x, y, Bounds{Left: 0, Peak: 3, Right: 6})
	require.NoError(t, err)
	assert.InDelta(t, 720.0/230.0, c, 1e-12)
}

func TestCentroidIdempotent(t *testing.T) {
	x := testutil.Channels(200)
	y := testutil.AddNoise(testutil.GaussianCounts(200, 1000, 10, 100.3, 8), 11, 3)
	b := Bounds{Left: 70, Peak: 100, Right: 130}
	yCopy := append([]float64(nil), y...)

	first, err := Centroid(x, y, b)
	require.NoError(t, err)
	second, err := Centroid(x, y, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, yCopy, y)
}

func TestCentroidBoundedByWindow(t *testing.T) {
	const n = 41
	for seed := int64(1); seed <= 20; seed++ {
		steps := testutil.DeterministicNoise(seed, 1, n)
		weights := testutil.DeterministicNoise(seed+100, 50, n)

		x := make([]float64, n)
		y := make([]float64, n)
		acc := 0.0
		for i := range x {
			acc += 1 + math.Abs(steps[i])
			x[i] = acc
			y[i] = 1 + math.Abs(weights[i])
		}
		y[0], y[n/2], y[n-1] = 0.5, 100, 0.5

		res, err := CentroidDetail(x, y, Bounds{Left: 0, Peak: n / 2, Right: n - 1})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Value, x[res.Window.Lo]-1e-9)
		assert.LessOrEqual(t, res.Value, x[res.Window.Hi]+1e-9)
	}
}

func TestCentroidCleanPeak(t *testing.T) {
	x := testutil.Channels(200)
	y := testutil.GaussianCounts(200, 1000, 10, 100, 8)

	c, err := Centroid(x, y, Bounds{Left: 70, Peak: 100, Right: 130})
	require.NoError(t, err)
	assert.InDelta(t, 100, c, 0.5)
}

func TestCentroidFailures(t *testing.T) {
	x := testutil.Channels(5)

	_, err := Centroid(x, []float64{-10, -10, -2, -10, -10}, Bounds{Left: 0, Peak: 2, Right: 4})
	require.ErrorIs(t, err, ErrInsufficientSignal)

	_, err = Centroid(x, []float64{3, 3, 3, 3, 3}, Bounds{Left: 0, Peak: 2, Right: 4})
	var se *SignalError
	require.True(t, errors.As(err, &se))

	nan := math.NaN()
	_, err = Centroid(testutil.Channels(6), []float64{0, 50, nan, 100, 50, 0}, Bounds{Left: 0, Peak: 3, Right: 5})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = Centroid(x, []float64{1, 2}, Bounds{Left: 0, Peak: 1, Right: 2})
	require.ErrorIs(t, err, ErrInvalidInput)
}

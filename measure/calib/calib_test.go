package calib

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearRoundTrip(t *testing.T) {
	l := Linear{Gain: 0.75, Offset: -3.5}

	assert.InDelta(t, 746.5, l.Energy(1000), 1e-12)
	assert.InDelta(t, 1000, l.Channel(l.Energy(1000)), 1e-9)
	assert.Equal(t, []float64{-3.5, -2.75, -2}, l.Apply([]float64{0, 1, 2}))
	assert.Equal(t, 42.0, Identity.Energy(42))
}

func TestFitLinear(t *testing.T) {
	// Cs-137, Co-60 and Na-22 lines on a 0.5 keV/channel detector.
	energies := []float64{661.657, 1173.228, 1332.492, 511.0}
	channels := make([]float64, len(energies))
	for i, e := range energies {
		channels[i] = (e - 2) / 0.5
	}

	l, err := FitLinear(channels, energies)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, l.Gain, 1e-9)
	assert.InDelta(t, 2, l.Offset, 1e-6)
}

func TestFitLinearInvalid(t *testing.T) {
	_, err := FitLinear([]float64{1}, []float64{2})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = FitLinear([]float64{1, 2}, []float64{2})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = FitLinear([]float64{1, 2, 3}, []float64{5, 5, 5})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = FitLinear([]float64{1, math.NaN()}, []float64{5, 6})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestLinearValidate(t *testing.T) {
	require.NoError(t, Linear{Gain: 2}.Validate())
	require.ErrorIs(t, Linear{}.Validate(), core.ErrInvalidInput)
	require.ErrorIs(t, Linear{Gain: 1, Offset: math.Inf(1)}.Validate(), core.ErrInvalidInput)
}

func TestComptonEnergy(t *testing.T) {
	const cs137 = 661.657

	assert.InDelta(t, cs137, ComptonEnergy(cs137, 0), 1e-12)

	// Backscatter peak and the 90 degree line of Cs-137.
	assert.InDelta(t, 184.32, ComptonEnergy(cs137, math.Pi), 0.01)
	assert.InDelta(t, 288.33, ComptonEnergy(cs137, math.Pi/2), 0.01)

	prev := cs137
	for deg := 10; deg <= 180; deg += 10 {
		e := ComptonEnergy(cs137, float64(deg)*math.Pi/180)
		assert.Less(t, e, prev)
		prev = e
	}
}

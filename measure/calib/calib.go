package calib

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-gammaspec/dsp/core"
	"gonum.org/v1/gonum/stat"
)

// ElectronRestEnergy is mₑc² in keV.
const ElectronRestEnergy = 510.99895

// Linear is the calibration E = Gain*channel + Offset.
type Linear struct {
	Gain   float64
	Offset float64
}

// Identity leaves channel numbers unchanged.
var Identity = Linear{Gain: 1}

// Energy converts a channel (possibly fractional, e.g. a centroid) to
// energy.
func (l Linear) Energy(channel float64) float64 {
	return l.Gain*channel + l.Offset
}

// Channel inverts Energy.
func (l Linear) Channel(energy float64) float64 {
	return (energy - l.Offset) / l.Gain
}

// Apply returns the energies of channels. For a positive gain the result
// stays monotonic.
func (l Linear) Apply(channels []float64) []float64 {
	out := make([]float64, len(channels))
	for i, c := range channels {
		out[i] = l.Energy(c)
	}
	return out
}

// Validate rejects a zero or non-finite gain and a non-finite offset.
func (l Linear) Validate() error {
	if !core.IsFinite(l.Gain) || l.Gain == 0 {
		return core.Invalidf("calibration", "gain must be finite and non-zero, got %g", l.Gain)
	}
	if !core.IsFinite(l.Offset) {
		return core.Invalidf("calibration", "offset must be finite, got %g", l.Offset)
	}
	return nil
}

func (l Linear) String() string {
	return fmt.Sprintf("E = %.6g*ch %+.6g", l.Gain, l.Offset)
}

// FitLinear fits a calibration to (channel, energy) reference pairs by
// ordinary least squares.
func FitLinear(channels, energies []float64) (Linear, error) {
	const op = "fit calibration"
	if len(channels) != len(energies) {
		return Linear{}, core.Invalidf(op, "length mismatch: %d channels, %d energies", len(channels), len(energies))
	}
	if len(channels) < 2 {
		return Linear{}, core.Invalidf(op, "need at least 2 reference points, got %d", len(channels))
	}
	for i := range channels {
		if !core.IsFinite(channels[i]) || !core.IsFinite(energies[i]) {
			return Linear{}, core.Invalidf(op, "reference point %d is not finite", i)
		}
	}

	offset, gain := stat.LinearRegression(channels, energies, nil, false)
	l := Linear{Gain: gain, Offset: offset}
	if err := l.Validate(); err != nil {
		return Linear{}, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// ComptonEnergy returns the energy of a photon of energy e0 (keV) after
// scattering through angle theta (radians).
func ComptonEnergy(e0, theta float64) float64 {
	return e0 / (1 + e0/ElectronRestEnergy*(1-math.Cos(theta)))
}

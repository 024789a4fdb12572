package peak

import "github.com/cwbudde/algo-gammaspec/dsp/core"

// Spectrum is an index-aligned series of positions (channel or energy) and
// counts. NaN counts mark channels without an observation.
type Spectrum struct {
	X []float64
	Y []float64
}

// NewSpectrum validates x and y and wraps them without copying.
func NewSpectrum(x, y []float64) (Spectrum, error) {
	s := Spectrum{X: x, Y: y}
	if err := s.Validate(); err != nil {
		return Spectrum{}, err
	}
	return s, nil
}

// ChannelSpectrum uses the channel index as position.
func ChannelSpectrum(counts []float64) Spectrum {
	x := make([]float64, len(counts))
	for i := range x {
		x[i] = float64(i)
	}
	return Spectrum{X: x, Y: counts}
}

// Len returns the number of channels.
func (s Spectrum) Len() int { return len(s.Y) }

// Validate checks that the spectrum is non-empty with equal lengths and
// finite, non-decreasing positions.
func (s Spectrum) Validate() error {
	return core.ValidateSeries("spectrum", s.X, s.Y)
}

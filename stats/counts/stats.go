// Package counts summarizes a pulse-height spectrum's count series.
//
// Missing channels (NaN) are skipped and reported separately, so a summary
// of a partially exported spectrum describes only the channels that carry
// data.
package counts

import "math"

// Summary holds whole-spectrum statistics of a count series.
type Summary struct {
	Channels int // total number of channels, including missing ones
	Missing  int // channels holding NaN
	Total    float64
	Mean     float64
	Variance float64 // population variance
	Skewness float64
	Max      float64
	MaxPos   int
	Min      float64
	MinPos   int
}

// Valid returns the number of channels that carry data.
func (s Summary) Valid() int { return s.Channels - s.Missing }

// Dispersion returns the variance-to-mean ratio. Poisson counting data
// without structure gives a value near 1.
func (s Summary) Dispersion() float64 {
	if s.Mean == 0 {
		return math.NaN()
	}

	return s.Variance / s.Mean
}

// Summarize computes a Summary in a single pass using Welford's online
// update for the moments and Kahan summation for the total.
func Summarize(counts []float64) Summary {
	s := Summary{
		Channels: len(counts),
		Max:      math.NaN(),
		Min:      math.NaN(),
		MaxPos:   -1,
		MinPos:   -1,
	}

	var (
		n, mean, m2, m3 float64
		sum, c          float64
	)

	for i, x := range counts {
		if math.IsNaN(x) {
			s.Missing++
			continue
		}

		n++
		delta := x - mean
		deltaN := delta / n
		term1 := delta * deltaN * (n - 1)

		// M3 must be updated before M2.
		m3 += term1*deltaN*(n-2) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t

		if s.MaxPos < 0 || x > s.Max {
			s.Max, s.MaxPos = x, i
		}
		if s.MinPos < 0 || x < s.Min {
			s.Min, s.MinPos = x, i
		}
	}

	if n == 0 {
		s.Mean = math.NaN()
		s.Variance = math.NaN()
		s.Skewness = math.NaN()
		return s
	}

	s.Total = sum
	s.Mean = mean
	s.Variance = m2 / n
	if s.Variance > 0 {
		s.Skewness = (m3 / n) / (s.Variance * math.Sqrt(s.Variance))
	}

	return s
}

// Total returns the sum of all non-missing counts.
func Total(counts []float64) float64 {
	var sum, c float64
	for _, x := range counts {
		if math.IsNaN(x) {
			continue
		}
		y := x - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum
}

package testutil

import (
	"math"
	"math/rand"
)

// Channels returns the channel axis 0, 1, ..., n-1.
func Channels(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// GaussianCounts samples height*exp(-(i-mu)^2/(2 sigma^2)) + background at
// integer channels 0..n-1.
func GaussianCounts(n int, height, background, mu, sigma float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		d := (float64(i) - mu) / sigma
		out[i] = background + height*math.Exp(-0.5*d*d)
	}
	return out
}

// NormalizedGaussian evaluates a*exp(-(x-mu)^2/(2 sigma^2)) / (sigma*sqrt(2 pi))
// at every x.
func NormalizedGaussian(x []float64, a, sigma, mu float64) []float64 {
	out := make([]float64, len(x))
	norm := a / (sigma * math.Sqrt(2*math.Pi))
	for i, xi := range x {
		d := (xi - mu) / sigma
		out[i] = norm * math.Exp(-0.5*d*d)
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude] with
// a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// AddNoise returns y plus seeded uniform noise; y is not modified.
func AddNoise(y []float64, seed int64, amplitude float64) []float64 {
	noise := DeterministicNoise(seed, amplitude, len(y))
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] + noise[i]
	}
	return out
}

// DC generates a constant-valued series.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

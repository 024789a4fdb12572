// Package interp provides interpolation of sampled spectra.
//
// [Linear] is the piecewise-linear interpolant through (x[i], y[i]). Its
// [Linear.Slope] is what the peak boundary search tests against a tolerance:
// inside a segment it is the segment slope, on a knot it is the mean of the
// two adjacent segment slopes, and outside the sampled range it is zero.
package interp

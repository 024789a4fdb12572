// Package smooth provides the centered moving-average smoother applied to
// pulse-height spectra before peak search.
//
// A sample is smoothed over the window i-w/2 .. i-w/2+w-1. Samples too close
// to either end to form a full window, and windows that contain a missing
// observation (NaN), have no defined average. What happens to them is an
// explicit [EdgePolicy]:
//
//   - [EdgeZero] writes 0 (the default, lossy but deterministic)
//   - [EdgeShrink] averages whatever non-missing samples the clipped window holds
//   - [EdgeMissing] writes NaN so later stages can skip or reject the sample
//
// The output always has the same length and index alignment as the input.
package smooth

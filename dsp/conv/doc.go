// Package conv provides linear convolution of real-valued series.
//
// Two strategies are available:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for short kernels
//   - Overlap-add (OLA): FFT-based block convolution for longer kernels
//
// # Usage
//
//	result, err := conv.Convolve(counts, kernel)            // auto-selects
//	sums, err := conv.ConvolveMode(counts, kernel, conv.ModeValid) // fully overlapping part
//
// For repeated convolution with the same kernel, create a reusable convolver:
//
//	c, err := conv.NewOverlapAdd(kernel, blockSize)
//	result, err := c.Process(counts)
//
// # Algorithm Selection
//
// [Convolve] uses direct convolution for kernels of up to 64 samples and
// FFT-based overlap-add above that. Both produce the full linear convolution
// of length len(a)+len(b)-1.
package conv

// Package peak locates and quantifies peaks in pulse-height spectra.
//
// The pipeline runs in stages that are also exported individually:
//
//   - [FindPeaks]: local maxima of the smoothed counts above a prominence
//   - [LocateBounds]: left and right edges where the interpolated slope
//     flattens below a tolerance, after skipping a guard band
//   - [ThresholdWindow]: the sub-window rising above a fraction of the
//     peak height over the linear background
//   - [Centroid] and [FitGaussian]: the weighted-mean position and a
//     three-parameter Gaussian fitted over that same sub-window
//
// [Analyzer] chains the stages for a whole [Spectrum] and records per-peak
// failures in the [Report] instead of aborting.
//
// # Usage
//
//	a, err := peak.NewAnalyzer(peak.WithWindow(5), peak.WithMinProminence(50))
//	report, err := a.Analyze(peak.ChannelSpectrum(counts))
//	for _, p := range report.Peaks {
//		fmt.Println(p.Index, p.Centroid, p.Fit)
//	}
package peak

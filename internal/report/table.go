// Package report renders analysis results as text tables and PNG plots.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-gammaspec/measure/peak"
)

// WriteTable writes one row per peak. Failed stages print "-" and the
// joined failure reasons go to the status column.
func WriteTable(w io.Writer, r peak.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "#\tPeak\tX\tBounds\tCentroid\tMu\tSigma\tFWHM\tArea\tR2\tStatus\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "-\t----\t-\t------\t--------\t--\t-----\t----\t----\t--\t------\n"); err != nil {
		return err
	}

	for i, p := range r.Peaks {
		bounds, centroid := "-", "-"
		mu, sigma, fwhm, area, r2 := "-", "-", "-", "-", "-"
		if p.BoundsErr == nil {
			bounds = p.Bounds.String()
		}
		if c := p.Centroid; c != nil {
			centroid = fmt.Sprintf("%.3f ± %.3f", c.Value, c.Uncertainty)
		}
		if f := p.Fit; f != nil {
			mu = fmt.Sprintf("%.3f ± %.3f", f.Mu, f.MuErr)
			sigma = fmt.Sprintf("%.3f ± %.3f", f.Sigma, f.SigmaErr)
			fwhm = fmt.Sprintf("%.3f", f.FWHM())
			area = fmt.Sprintf("%.4g ± %.2g", f.Amplitude, f.AmplitudeErr)
			r2 = fmt.Sprintf("%.4f", f.RSquared)
		}
		status := "ok"
		if err := p.Err(); err != nil {
			status = oneLine(err)
		}

		if _, err := fmt.Fprintf(tw, "%d\t%d\t%.3f\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, p.Index, p.X, bounds, centroid, mu, sigma, fwhm, area, r2, status); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func oneLine(err error) string {
	b := []byte(err.Error())
	for i, c := range b {
		if c == '\n' {
			b[i] = ';'
		}
	}
	return string(b)
}

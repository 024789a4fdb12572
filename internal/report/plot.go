package report

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/cwbudde/algo-gammaspec/measure/peak"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 6 * vg.Inch
)

var (
	rawColor      = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	smoothedColor = color.RGBA{B: 200, A: 255}
	fitColor      = color.RGBA{R: 220, A: 255}
	centroidColor = color.RGBA{G: 150, A: 255}
)

// Plot builds the spectrum plot: raw counts, the smoothed series, each
// fitted Gaussian over its window and a marker line at each centroid.
func Plot(title string, s peak.Spectrum, r peak.Report) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Channel / energy"
	p.Y.Label.Text = "Counts"

	raw, err := plotter.NewScatter(finitePoints(s.X, s.Y))
	if err != nil {
		return nil, fmt.Errorf("report: raw counts: %w", err)
	}
	raw.GlyphStyle.Color = rawColor
	raw.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(raw)
	p.Legend.Add("counts", raw)

	if len(r.Smoothed) == s.Len() {
		smoothed, err := plotter.NewLine(finitePoints(s.X, r.Smoothed))
		if err != nil {
			return nil, fmt.Errorf("report: smoothed series: %w", err)
		}
		smoothed.LineStyle.Color = smoothedColor
		smoothed.LineStyle.Width = vg.Points(1)
		p.Add(smoothed)
		p.Legend.Add("smoothed", smoothed)
	}

	yMax := maxFinite(s.Y)
	fitLegend := false
	for _, pk := range r.Peaks {
		if f := pk.Fit; f != nil && pk.BoundsErr == nil {
			fn := plotter.NewFunction(f.At)
			fn.XMin = s.X[pk.Bounds.Left]
			fn.XMax = s.X[pk.Bounds.Right]
			fn.Samples = 200
			fn.LineStyle.Color = fitColor
			fn.LineStyle.Width = vg.Points(1.5)
			p.Add(fn)
			if !fitLegend {
				p.Legend.Add("gaussian fit", fn)
				fitLegend = true
			}
		}
		if c := pk.Centroid; c != nil {
			marker, err := plotter.NewLine(plotter.XYs{{X: c.Value, Y: 0}, {X: c.Value, Y: yMax}})
			if err != nil {
				return nil, fmt.Errorf("report: centroid marker: %w", err)
			}
			marker.LineStyle.Color = centroidColor
			marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
			p.Add(marker)
		}
	}

	return p, nil
}

// WritePNG renders the plot as PNG to w.
func WritePNG(w io.Writer, title string, s peak.Spectrum, r peak.Report) error {
	p, err := Plot(title, s, r)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// PlotPNG saves the plot to path; the format follows the extension.
func PlotPNG(path, title string, s peak.Spectrum, r peak.Report) error {
	p, err := Plot(title, s, r)
	if err != nil {
		return err
	}
	return p.Save(plotWidth, plotHeight, path)
}

func finitePoints(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(y))
	for i := range y {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}
	return pts
}

func maxFinite(y []float64) float64 {
	m := 0.0
	for _, v := range y {
		if !math.IsNaN(v) && v > m {
			m = v
		}
	}
	return m
}

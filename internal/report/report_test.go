package report_test

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-gammaspec/internal/report"
	"github.com/cwbudde/algo-gammaspec/internal/testutil"
	"github.com/cwbudde/algo-gammaspec/measure/peak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func analyzed(t *testing.T) (peak.Spectrum, peak.Report) {
	t.Helper()
	counts := testutil.GaussianCounts(200, 1000, 10, 100, 8)
	counts[3] = math.NaN()
	s := peak.ChannelSpectrum(counts)

	a, err := peak.NewAnalyzer()
	require.NoError(t, err)
	r, err := a.Analyze(s)
	require.NoError(t, err)
	require.Len(t, r.Peaks, 1)
	return s, r
}

func TestWriteTable(t *testing.T) {
	r := peak.Report{Peaks: []peak.PeakResult{
		{
			Index:    100,
			X:        100,
			Bounds:   peak.Bounds{Left: 70, Peak: 100, Right: 130},
			Centroid: &peak.CentroidResult{Value: 100.0004, Uncertainty: 0.0521},
			Fit:      &peak.FitResult{Amplitude: 20417, Sigma: 8.07, Mu: 100, MuErr: 0.002, RSquared: 0.9991},
		},
		{
			Index:     190,
			X:         190,
			BoundsErr: &peak.BoundaryError{Peak: 190, Direction: peak.Right, Tolerance: 0.5},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, r))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Centroid")
	assert.Contains(t, lines[2], "(70,100,130)")
	assert.Contains(t, lines[2], "100.000 ± 0.052")
	assert.Contains(t, lines[2], "8.070")
	assert.True(t, strings.HasSuffix(lines[2], "ok"))
	assert.Contains(t, lines[3], "no right boundary for peak 190")
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, peak.Report{}))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 2)
}

func TestWritePNG(t *testing.T) {
	s, r := analyzed(t)

	var buf bytes.Buffer
	require.NoError(t, report.WritePNG(&buf, "cs137", s, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPlotPNG(t *testing.T) {
	s, r := analyzed(t)
	path := filepath.Join(t.TempDir(), "spectrum.png")

	require.NoError(t, report.PlotPNG(path, "cs137", s, r))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

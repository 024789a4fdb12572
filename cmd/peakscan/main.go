// Command peakscan finds and quantifies peaks in a pulse-height spectrum.
//
// Usage:
//
//	peakscan [flags] <spectrum-file>
//
// The spectrum is read from a text export (one or more delimited columns),
// optionally calibrated to energy, analyzed, and printed as a table. Results
// can also be stored in SQLite and plotted to PNG.
//
// Examples:
//
//	peakscan cs137.txt
//	peakscan -w 7 --min-prominence 100 --tolerance 0.3 cs137.csv
//	peakscan --gain 0.662 --offset -1.5 --plot cs137.png --database runs.db cs137.txt
//	peakscan --calib-point 100:661.66 --calib-point 233:1460.8 --source-energy 661.66 k40.txt
//	PEAKSCAN_EDGE_POLICY=shrink peakscan --config peakscan.toml cs137.txt
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-gammaspec/internal/config"
	"github.com/cwbudde/algo-gammaspec/internal/logger"
	"github.com/cwbudde/algo-gammaspec/internal/report"
	"github.com/cwbudde/algo-gammaspec/internal/spectrumio"
	"github.com/cwbudde/algo-gammaspec/internal/store"
	"github.com/cwbudde/algo-gammaspec/measure/calib"
	"github.com/cwbudde/algo-gammaspec/measure/peak"
	"github.com/cwbudde/algo-gammaspec/stats/counts"
	"github.com/spf13/pflag"
)

var errUsage = errors.New("usage: peakscan [flags] <spectrum-file>")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if len(cfg.Args) != 1 {
		return errUsage
	}
	source := cfg.Args[0]

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Console: !cfg.LogJSON})
	if err != nil {
		return err
	}

	spectrum, err := spectrumio.ReadFile(source, cfg.ReaderOptions())
	if err != nil {
		return err
	}
	summary := counts.Summarize(spectrum.Y)
	log.Debug().Str("file", source).Int("samples", spectrum.Len()).Int("missing", summary.Missing).
		Float64("total", summary.Total).Float64("max", summary.Max).Int("max_pos", summary.MaxPos).
		Float64("dispersion", summary.Dispersion()).Float64("skewness", summary.Skewness).Msg("spectrum read")

	cal, err := cfg.Calibration()
	if err != nil {
		return err
	}
	if cal != calib.Identity {
		if cal.Gain < 0 {
			return fmt.Errorf("calibration %v reverses the spectrum", cal)
		}
		spectrum.X = cal.Apply(spectrum.X)
		log.Debug().Stringer("calibration", cal).Msg("calibration applied")
	}

	pc := cfg.AnalyzerConfig()
	pc.Logger = log
	analyzer, err := peak.NewAnalyzerFromConfig(pc)
	if err != nil {
		return err
	}
	rep, err := analyzer.Analyze(spectrum)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	log.Info().Int("peaks", len(rep.Peaks)).Int("failed", rep.Failed()).Msg("analysis done")

	if err := report.WriteTable(stdout, rep); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	if cfg.SourceEnergy > 0 {
		if err := writeCompton(stdout, cfg.SourceEnergy, cfg.ScatterAngle); err != nil {
			return fmt.Errorf("failed to write Compton estimates: %w", err)
		}
	}

	if cfg.Plot != "" {
		if err := report.PlotPNG(cfg.Plot, filepath.Base(source), spectrum, rep); err != nil {
			return fmt.Errorf("failed to plot: %w", err)
		}
		log.Info().Str("path", cfg.Plot).Msg("plot written")
	}

	if cfg.Database != "" {
		if err := save(ctx, cfg.Database, cal, source, spectrum, rep, analyzer.Config()); err != nil {
			return err
		}
	}

	return nil
}

// writeCompton prints where Compton scattering of a source line lands:
// the energy scattered through angle degrees and the Compton edge.
func writeCompton(w io.Writer, e0, angle float64) error {
	scattered := calib.ComptonEnergy(e0, angle*math.Pi/180)
	edge := e0 - calib.ComptonEnergy(e0, math.Pi)
	_, err := fmt.Fprintf(w, "\nCompton %.2f keV: scattered at %g deg %.2f keV, edge %.2f keV\n", e0, angle, scattered, edge)
	return err
}

func save(ctx context.Context, path string, cal calib.Linear, source string, s peak.Spectrum, rep peak.Report, pc peak.Config) (err error) {
	st, err := store.Open(store.Config{Path: path}, pc.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = st.SaveReport(ctx, store.Run{
		Source:        source,
		Samples:       s.Len(),
		TotalCounts:   counts.Total(s.Y),
		Window:        pc.Window,
		MinProminence: pc.MinProminence,
		Tolerance:     pc.Bounds.Tolerance,
		Gain:          cal.Gain,
		Offset:        cal.Offset,
	}, rep)
	return err
}

// Package spectrumio reads pulse-height spectra from text exports.
//
// Accepted files hold one value per line (counts, channel taken from the
// line order) or several delimited columns. Comma, semicolon, tab and
// whitespace separators are recognized. Lines starting with '#' or ';' are
// skipped, as are lines before the first numeric row (vendor headers).
// Once data has started, every row must parse. In single-column files a
// missing marker or a blank line between counts is a missing channel;
// trailing blank lines are ignored.
package spectrumio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-gammaspec/measure/peak"
)

// ErrNoData is returned when a file holds no numeric rows.
var ErrNoData = errors.New("spectrumio: no data rows")

// Options selects the columns of a multi-column file. Columns are
// zero-based.
type Options struct {
	XColumn int
	YColumn int
}

// DefaultOptions reads channel from column 0 and counts from column 1.
func DefaultOptions() Options {
	return Options{XColumn: 0, YColumn: 1}
}

// ParseError locates a malformed line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("spectrumio: line %d: %s", e.Line, e.Reason)
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string, opts Options) (peak.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return peak.Spectrum{}, err
	}
	defer f.Close()

	s, err := Read(f, opts)
	if err != nil {
		return peak.Spectrum{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read parses a spectrum. Missing count markers ("", "nan", "na", "-")
// become NaN; positions must be numeric and non-decreasing.
func Read(r io.Reader, opts Options) (peak.Spectrum, error) {
	if opts.XColumn < 0 || opts.YColumn < 0 {
		return peak.Spectrum{}, fmt.Errorf("spectrumio: negative column in %+v", opts)
	}

	var (
		xs, ys  []float64
		columns int
		blanks  int // blank lines inside a single-column block
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text != "" && (text[0] == '#' || text[0] == ';') {
			continue
		}
		if text == "" {
			if columns == 1 {
				blanks++
			}
			continue
		}
		fields := splitFields(text)

		if columns == 0 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				continue
			}
			columns = len(fields)
			if columns > 1 && max(opts.XColumn, opts.YColumn) >= columns {
				return peak.Spectrum{}, &ParseError{Line: line,
					Reason: fmt.Sprintf("columns %d and %d requested, row has %d", opts.XColumn, opts.YColumn, columns)}
			}
		}

		if columns == 1 {
			if len(fields) != 1 {
				return peak.Spectrum{}, &ParseError{Line: line, Reason: fmt.Sprintf("expected 1 field, got %d", len(fields))}
			}
			y, err := parseCount(fields[0])
			if err != nil {
				return peak.Spectrum{}, &ParseError{Line: line, Reason: err.Error()}
			}
			// Channel numbers come from line order, so a blank line
			// between counts is a missing channel.
			for ; blanks > 0; blanks-- {
				xs = append(xs, float64(len(xs)))
				ys = append(ys, math.NaN())
			}
			xs = append(xs, float64(len(xs)))
			ys = append(ys, y)
			continue
		}

		if len(fields) <= max(opts.XColumn, opts.YColumn) {
			return peak.Spectrum{}, &ParseError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", columns, len(fields))}
		}
		x, err := strconv.ParseFloat(fields[opts.XColumn], 64)
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			return peak.Spectrum{}, &ParseError{Line: line, Reason: fmt.Sprintf("position %q is not a finite number", fields[opts.XColumn])}
		}
		y, err := parseCount(fields[opts.YColumn])
		if err != nil {
			return peak.Spectrum{}, &ParseError{Line: line, Reason: err.Error()}
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if err := sc.Err(); err != nil {
		return peak.Spectrum{}, fmt.Errorf("spectrumio: %w", err)
	}
	if len(ys) == 0 {
		return peak.Spectrum{}, ErrNoData
	}

	return peak.NewSpectrum(xs, ys)
}

// splitFields splits on the first of ';', ',' or tab present in text and
// on runs of whitespace otherwise. Empty cells are kept.
func splitFields(text string) []string {
	for _, sep := range []string{";", ",", "\t"} {
		if strings.Contains(text, sep) {
			parts := strings.Split(text, sep)
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return strings.Fields(text)
}

func parseCount(field string) (float64, error) {
	switch strings.ToLower(field) {
	case "", "nan", "na", "-":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("count %q is not a number", field)
	}
	return v, nil
}

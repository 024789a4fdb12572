// Package logger builds the zerolog loggers used by the command line tools.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the log level and output format.
type Options struct {
	Level   string
	Console bool
	Out     io.Writer
}

// New returns a logger writing to opts.Out (stderr when nil). Console
// output is human-readable; otherwise one JSON object per line.
func New(opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel accepts zerolog level names; the empty string means warn.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("logger: unknown level %q", s)
	}
	return level, nil
}

// Package config loads peakscan settings from flags, an optional config
// file and PEAKSCAN_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-gammaspec/dsp/smooth"
	"github.com/cwbudde/algo-gammaspec/internal/spectrumio"
	"github.com/cwbudde/algo-gammaspec/measure/calib"
	"github.com/cwbudde/algo-gammaspec/measure/peak"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PEAKSCAN"

// Config holds every peakscan setting.
type Config struct {
	ConfigFile string `mapstructure:"config"`

	Window         int     `mapstructure:"window"`
	EdgePolicy     string  `mapstructure:"edge-policy"`
	MinProminence  float64 `mapstructure:"min-prominence"`
	EdgeGuard      int     `mapstructure:"edge-guard"`
	Tolerance      float64 `mapstructure:"tolerance"`
	LeftGuard      int     `mapstructure:"left-guard"`
	RightGuard     int     `mapstructure:"right-guard"`
	Fraction       float64 `mapstructure:"fraction"`
	MaxIterations  int     `mapstructure:"max-iterations"`
	BoundarySource string  `mapstructure:"boundary-source"`
	Workers        int     `mapstructure:"workers"`

	XColumn int     `mapstructure:"x-column"`
	YColumn int     `mapstructure:"y-column"`
	Gain    float64 `mapstructure:"gain"`
	Offset  float64 `mapstructure:"offset"`
	// CalibPoints are "channel:energy" reference pairs. Two or more
	// replace Gain and Offset with a least-squares fit.
	CalibPoints []string `mapstructure:"calib-point"`

	// SourceEnergy, when positive, adds the Compton scattering energies
	// of a line at this energy (keV) to the output.
	SourceEnergy float64 `mapstructure:"source-energy"`
	ScatterAngle float64 `mapstructure:"scatter-angle"` // degrees

	Database string `mapstructure:"database"`
	Plot     string `mapstructure:"plot"`
	LogLevel string `mapstructure:"log-level"`
	LogJSON  bool   `mapstructure:"log-json"`

	// Args holds the positional arguments.
	Args []string `mapstructure:"-"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	pc := peak.DefaultConfig()
	return Config{
		Window:         pc.Window,
		EdgePolicy:     pc.EdgePolicy.String(),
		MinProminence:  pc.MinProminence,
		EdgeGuard:      pc.EdgeGuard,
		Tolerance:      pc.Bounds.Tolerance,
		LeftGuard:      pc.Bounds.LeftGuard,
		RightGuard:     pc.Bounds.RightGuard,
		Fraction:       pc.Fraction,
		MaxIterations:  pc.MaxIterations,
		BoundarySource: pc.BoundarySource.String(),
		Workers:        pc.Workers,
		XColumn:        0,
		YColumn:        1,
		Gain:           1,
		ScatterAngle:   180,
		LogLevel:       "warn",
	}
}

// NewFlagSet declares the peakscan flags with their defaults.
func NewFlagSet(name string) *pflag.FlagSet {
	d := Default()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "config file (toml, yaml or json)")
	fs.IntP("window", "w", d.Window, "moving-average window in samples")
	fs.String("edge-policy", d.EdgePolicy, "undefined smoothed samples: zero, shrink or missing")
	fs.Float64P("min-prominence", "p", d.MinProminence, "minimum peak prominence in counts")
	fs.Int("edge-guard", d.EdgeGuard, "samples at each end without peaks (-1: window, 0: none)")
	fs.Float64P("tolerance", "t", d.Tolerance, "boundary slope tolerance in counts per x unit")
	fs.Int("left-guard", d.LeftGuard, "samples skipped left of a peak before testing the slope")
	fs.Int("right-guard", d.RightGuard, "samples skipped right of a peak before testing the slope")
	fs.Float64("fraction", d.Fraction, "sub-window threshold as a fraction of height above background")
	fs.Int("max-iterations", d.MaxIterations, "Gaussian fit iteration budget")
	fs.String("boundary-source", d.BoundarySource, "curve for the boundary walk: smoothed or raw")
	fs.Int("workers", d.Workers, "peaks analyzed concurrently")
	fs.Int("x-column", d.XColumn, "zero-based position column of multi-column input")
	fs.Int("y-column", d.YColumn, "zero-based counts column of multi-column input")
	fs.Float64("gain", d.Gain, "calibration gain (energy per channel)")
	fs.Float64("offset", d.Offset, "calibration offset (energy at channel 0)")
	fs.StringSlice("calib-point", nil, "channel:energy reference pair, repeatable; two or more override gain and offset")
	fs.Float64("source-energy", d.SourceEnergy, "source line energy in keV for Compton scattering estimates")
	fs.Float64("scatter-angle", d.ScatterAngle, "Compton scattering angle in degrees")
	fs.String("database", d.Database, "SQLite file to store results in")
	fs.String("plot", d.Plot, "PNG file to plot the spectrum and fits to")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn or error")
	fs.Bool("log-json", d.LogJSON, "log JSON lines instead of console output")
	return fs
}

// Load parses args and merges the config file and environment.
func Load(args []string) (*Config, error) {
	fs := NewFlagSet("peakscan")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Args = fs.Args()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Window >= 1, "window must be >= 1, got %d", c.Window)
	check(c.MinProminence >= 0, "min-prominence must be >= 0, got %g", c.MinProminence)
	check(c.EdgeGuard >= -1, "edge-guard must be >= -1, got %d", c.EdgeGuard)
	check(c.Tolerance > 0, "tolerance must be > 0, got %g", c.Tolerance)
	check(c.LeftGuard >= 1 && c.RightGuard >= 1, "guard bands must be >= 1, got %d and %d", c.LeftGuard, c.RightGuard)
	check(c.Fraction > 0 && c.Fraction < 1, "fraction must be in (0,1), got %g", c.Fraction)
	check(c.MaxIterations >= 1, "max-iterations must be >= 1, got %d", c.MaxIterations)
	check(c.Workers >= 1, "workers must be >= 1, got %d", c.Workers)
	check(c.XColumn >= 0 && c.YColumn >= 0, "columns must be >= 0")
	if _, err := smooth.ParseEdgePolicy(c.EdgePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := peak.ParseBoundarySource(c.BoundarySource); err != nil {
		errs = append(errs, err)
	}
	check(c.SourceEnergy >= 0, "source-energy must be >= 0, got %g", c.SourceEnergy)
	check(c.ScatterAngle >= 0 && c.ScatterAngle <= 180, "scatter-angle must be in [0,180], got %g", c.ScatterAngle)
	if _, err := c.Calibration(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// AnalyzerConfig converts the settings into an analyzer config. Call it
// only on a validated Config.
func (c *Config) AnalyzerConfig() peak.Config {
	pc := peak.DefaultConfig()
	pc.Window = c.Window
	pc.EdgePolicy, _ = smooth.ParseEdgePolicy(c.EdgePolicy)
	pc.MinProminence = c.MinProminence
	pc.EdgeGuard = c.EdgeGuard
	pc.Bounds = peak.BoundsConfig{Tolerance: c.Tolerance, LeftGuard: c.LeftGuard, RightGuard: c.RightGuard}
	pc.Fraction = c.Fraction
	pc.MaxIterations = c.MaxIterations
	pc.BoundarySource, _ = peak.ParseBoundarySource(c.BoundarySource)
	pc.Workers = c.Workers
	return pc
}

// Calibration returns the channel-to-energy mapping: a fit to the
// reference points when at least two are given, gain and offset otherwise.
func (c *Config) Calibration() (calib.Linear, error) {
	if len(c.CalibPoints) == 0 {
		l := calib.Linear{Gain: c.Gain, Offset: c.Offset}
		return l, l.Validate()
	}

	channels := make([]float64, 0, len(c.CalibPoints))
	energies := make([]float64, 0, len(c.CalibPoints))
	for _, p := range c.CalibPoints {
		ch, e, ok := strings.Cut(p, ":")
		if !ok {
			return calib.Linear{}, fmt.Errorf("calib-point %q: want channel:energy", p)
		}
		chv, err := strconv.ParseFloat(strings.TrimSpace(ch), 64)
		if err != nil {
			return calib.Linear{}, fmt.Errorf("calib-point %q: %w", p, err)
		}
		ev, err := strconv.ParseFloat(strings.TrimSpace(e), 64)
		if err != nil {
			return calib.Linear{}, fmt.Errorf("calib-point %q: %w", p, err)
		}
		channels = append(channels, chv)
		energies = append(energies, ev)
	}
	return calib.FitLinear(channels, energies)
}

// ReaderOptions returns the input column selection.
func (c *Config) ReaderOptions() spectrumio.Options {
	return spectrumio.Options{XColumn: c.XColumn, YColumn: c.YColumn}
}

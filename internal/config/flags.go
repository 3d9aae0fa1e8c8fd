package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Only flags the user actually set are
// applied on top of the file config.
type Flags struct {
	fs *pflag.FlagSet

	ConfigFile      string
	Debug           bool
	LogLevel        string
	LogFile         string
	Output          string
	NoColor         bool
	Verbose         bool
	Workers         int
	FileTimeout     time.Duration
	CenterTolerance float64
	MaxDimension    float64
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.ConfigFile, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
	fs.StringVarP(&f.Output, "format", "f", "", "Report format (text, json, yaml)")
	fs.BoolVar(&f.NoColor, "no-color", false, "Disable colored output")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Show stats for every file")
	fs.IntVarP(&f.Workers, "workers", "j", 0, "Files validated in parallel (0 = CPU count)")
	fs.DurationVar(&f.FileTimeout, "timeout", 0, "Per-file validation timeout (0 = none)")
	fs.Float64Var(&f.CenterTolerance, "center-tolerance", 0, "Max distance of the bounds center from the origin per axis")
	fs.Float64Var(&f.MaxDimension, "max-dimension", 0, "Max bounding box extent")
	return f
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.ConfigFile
}

func (f *Flags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-level") {
		cfg.Logging.Level = f.LogLevel
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.changed("format") {
		cfg.Output.Format = f.Output
	}
	if f.NoColor {
		cfg.Output.Color = false
	}
	if f.Verbose {
		cfg.Output.Verbose = true
	}
	if f.changed("workers") {
		cfg.Batch.Workers = f.Workers
	}
	if f.changed("timeout") {
		cfg.Batch.FileTimeout = f.FileTimeout
	}
	if f.changed("center-tolerance") {
		cfg.Validation.CenterTolerance = f.CenterTolerance
	}
	if f.changed("max-dimension") {
		cfg.Validation.MaxDimension = f.MaxDimension
	}
}

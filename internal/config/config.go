// Package config handles meshlint configuration loading and management.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all meshlint settings.
type Config struct {
	Validation ValidationConfig `yaml:"validation" toml:"validation"`
	Formats    FormatsConfig    `yaml:"formats" toml:"formats"`
	Batch      BatchConfig      `yaml:"batch" toml:"batch"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
}

// ValidationConfig holds check thresholds.
type ValidationConfig struct {
	CenterTolerance float64 `yaml:"center_tolerance" toml:"center_tolerance"`
	MaxDimension    float64 `yaml:"max_dimension" toml:"max_dimension"`
	WarnVertices    int     `yaml:"warn_vertices" toml:"warn_vertices"` // 0 disables
	MaxVertices     int     `yaml:"max_vertices" toml:"max_vertices"`   // 0 disables
}

// FormatsConfig maps file extensions to formats.
type FormatsConfig struct {
	Text        []string `yaml:"text" toml:"text"`
	JSONScene   []string `yaml:"json_scene" toml:"json_scene"`
	BinaryScene []string `yaml:"binary_scene" toml:"binary_scene"`
}

// BatchConfig holds concurrency settings.
type BatchConfig struct {
	Workers     int           `yaml:"workers" toml:"workers"`           // 0 = NumCPU
	FileTimeout time.Duration `yaml:"file_timeout" toml:"file_timeout"` // 0 = none
}

// OutputConfig holds report rendering settings.
type OutputConfig struct {
	Format  string `yaml:"format" toml:"format"` // text, json or yaml
	Color   bool   `yaml:"color" toml:"color"`
	Verbose bool   `yaml:"verbose" toml:"verbose"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Validation: ValidationConfig{
			CenterTolerance: 0.1,
			MaxDimension:    2.0,
			WarnVertices:    10000,
			MaxVertices:     65535,
		},
		Formats: FormatsConfig{
			Text:        []string{".obj"},
			JSONScene:   []string{".gltf"},
			BinaryScene: []string{".glb"},
		},
		Batch: BatchConfig{
			Workers:     0,
			FileTimeout: 0,
		},
		Output: OutputConfig{
			Format:  OutputText,
			Color:   true,
			Verbose: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Output.Format) {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output.format: unknown format %q (want text, json or yaml)", c.Output.Format)
	}
	if c.Validation.CenterTolerance <= 0 {
		return fmt.Errorf("validation.center_tolerance must be positive, got %v", c.Validation.CenterTolerance)
	}
	if c.Validation.MaxDimension <= 0 {
		return fmt.Errorf("validation.max_dimension must be positive, got %v", c.Validation.MaxDimension)
	}
	if c.Validation.WarnVertices < 0 || c.Validation.MaxVertices < 0 {
		return fmt.Errorf("validation: vertex limits must not be negative")
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must not be negative, got %d", c.Batch.Workers)
	}
	if c.Batch.FileTimeout < 0 {
		return fmt.Errorf("batch.file_timeout must not be negative, got %v", c.Batch.FileTimeout)
	}

	seen := make(map[string]string)
	for name, exts := range map[string][]string{
		"text":         c.Formats.Text,
		"json_scene":   c.Formats.JSONScene,
		"binary_scene": c.Formats.BinaryScene,
	} {
		for _, ext := range exts {
			key := normalizeExt(ext)
			if prev, ok := seen[key]; ok && prev != name {
				return fmt.Errorf("formats: extension %q listed for both %s and %s", ext, prev, name)
			}
			seen[key] = name
		}
	}
	return nil
}

// normalizeExt lower-cases an extension and adds the leading dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

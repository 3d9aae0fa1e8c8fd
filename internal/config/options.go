package config

import "github.com/Faultbox/meshlint/internal/validate"

// ValidateOptions converts the config into validator options.
func (c *Config) ValidateOptions() validate.Options {
	return validate.Options{
		CenterTolerance: c.Validation.CenterTolerance,
		MaxDimension:    c.Validation.MaxDimension,
		WarnVertices:    c.Validation.WarnVertices,
		MaxVertices:     c.Validation.MaxVertices,
		FileTimeout:     c.Batch.FileTimeout,
		Workers:         c.Batch.Workers,
		Extensions:      c.Extensions(),
	}
}

// Extensions returns the extension table used for format detection.
func (c *Config) Extensions() map[string]validate.Format {
	m := make(map[string]validate.Format)
	for _, ext := range c.Formats.Text {
		m[normalizeExt(ext)] = validate.FormatText
	}
	for _, ext := range c.Formats.JSONScene {
		m[normalizeExt(ext)] = validate.FormatJSONScene
	}
	for _, ext := range c.Formats.BinaryScene {
		m[normalizeExt(ext)] = validate.FormatBinaryScene
	}
	return m
}

// Package validate checks mesh and scene files and produces per-file reports.
package validate

import (
	"fmt"
	"time"
)

// Severity is the weight of a finding.
type Severity int

// Severities. Only Error findings fail a file.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Format is the container format of a file.
type Format int

// Supported formats.
const (
	FormatUnknown     Format = iota
	FormatText               // Wavefront OBJ
	FormatJSONScene          // glTF
	FormatBinaryScene        // GLB
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "obj"
	case FormatJSONScene:
		return "gltf"
	case FormatBinaryScene:
		return "glb"
	default:
		return "unknown"
	}
}

// MarshalText encodes the format by name.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Finding codes.
const (
	CodeFileUnreadable    = "FileUnreadable"
	CodeUnsupportedFormat = "UnsupportedFormat"
	CodeTimeout           = "Timeout"
	CodeInternalError     = "InternalError"

	// Text format.
	CodeMalformedVertex       = "MalformedVertex"
	CodeMalformedNumber       = "MalformedNumber"
	CodeMalformedFace         = "MalformedFace"
	CodeMalformedIndex        = "MalformedIndex"
	CodeInvalidIndexReference = "InvalidIndexReference"
	CodeUndecodableText       = "UndecodableText"
	CodeNoVertices            = "NoVertices"
	CodeTooManyVertices       = "TooManyVertices"
	CodeHighVertexCount       = "HighVertexCount"
	CodeNotCentered           = "NotCentered"
	CodeNotNormalized         = "NotNormalized"

	// JSON scene.
	CodeMalformedJSON              = "MalformedJSON"
	CodeMissingAssetBlock          = "MissingAssetBlock"
	CodeNoRenderablePrimitives     = "NoRenderablePrimitives"
	CodeBufferFileMissing          = "BufferFileMissing"
	CodeBufferSizeMismatch         = "BufferSizeMismatch"
	CodeInvalidBufferReference     = "InvalidBufferReference"
	CodeInvalidBufferViewReference = "InvalidBufferViewReference"

	// Binary scene.
	CodeBadMagic                = "BadMagic"
	CodeTruncatedHeader         = "TruncatedHeader"
	CodeUnsupportedVersion      = "UnsupportedVersion"
	CodeLengthMismatch          = "LengthMismatch"
	CodeFirstChunkNotJSON       = "FirstChunkNotJson"
	CodeTruncatedChunk          = "TruncatedChunk"
	CodeUnexpectedChunk         = "UnexpectedChunk"
	CodeBufferChunkSizeMismatch = "BufferChunkSizeMismatch"
	CodeMissingBinaryPayload    = "MissingBinaryPayload"
)

// Finding is a single validation result.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Message  string   `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s: %s", f.Severity, f.Code, f.Message)
}

// Stats holds descriptive counts gathered while validating. Fields that do
// not apply to a format stay zero.
type Stats struct {
	Vertices   int `json:"vertices,omitempty" yaml:"vertices,omitempty"`
	Lines      int `json:"lines,omitempty" yaml:"lines,omitempty"`
	Faces      int `json:"faces,omitempty" yaml:"faces,omitempty"`
	Edges      int `json:"edges,omitempty" yaml:"edges,omitempty"`
	Meshes     int `json:"meshes,omitempty" yaml:"meshes,omitempty"`
	Primitives int `json:"primitives,omitempty" yaml:"primitives,omitempty"`
	Buffers    int `json:"buffers,omitempty" yaml:"buffers,omitempty"`

	AssetVersion string `json:"asset_version,omitempty" yaml:"asset_version,omitempty"`
	JSONChunk    uint32 `json:"json_chunk,omitempty" yaml:"json_chunk,omitempty"`
	BinaryChunk  uint32 `json:"binary_chunk,omitempty" yaml:"binary_chunk,omitempty"`

	Bounds *BoundsStats `json:"bounds,omitempty" yaml:"bounds,omitempty"`
}

// BoundsStats is the bounding box of a text mesh.
type BoundsStats struct {
	Min          [3]float64 `json:"min" yaml:"min"`
	Max          [3]float64 `json:"max" yaml:"max"`
	Center       [3]float64 `json:"center" yaml:"center"`
	Size         [3]float64 `json:"size" yaml:"size"`
	MaxDimension float64    `json:"max_dimension" yaml:"max_dimension"`
}

// Report is the outcome of validating one file.
type Report struct {
	File     string        `json:"file" yaml:"file"`
	Format   Format        `json:"format" yaml:"format"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Findings []Finding     `json:"findings" yaml:"findings"`
	Stats    Stats         `json:"stats" yaml:"stats"`
	Duration time.Duration `json:"duration_ns" yaml:"duration"`
}

func newReport(file string, format Format) *Report {
	return &Report{File: file, Format: format, Findings: []Finding{}}
}

func (r *Report) errorf(code, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) warnf(code, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (r *Report) add(findings ...Finding) {
	r.Findings = append(r.Findings, findings...)
}

// finish derives Passed from the findings.
func (r *Report) finish() Report {
	r.Passed = r.ErrorCount() == 0
	return *r
}

// ErrorCount returns the number of Error findings.
func (r *Report) ErrorCount() int {
	return r.count(SeverityError)
}

// WarningCount returns the number of Warning findings.
func (r *Report) WarningCount() int {
	return r.count(SeverityWarning)
}

func (r *Report) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Has reports whether a finding with the given code exists.
func (r *Report) Has(code string) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

package validate

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/pkg/bounds"
)

// Default vertex limits for text meshes.
const (
	DefaultWarnVertices = 10000
	DefaultMaxVertices  = 65535 // 16-bit index buffers
)

// Options configures a Validator.
type Options struct {
	CenterTolerance float64
	MaxDimension    float64
	WarnVertices    int // 0 disables the warning
	MaxVertices     int // 0 disables the limit

	FileTimeout time.Duration // 0 means no timeout
	Workers     int           // 0 means runtime.NumCPU()

	// Extensions maps a lower-case extension including the dot to a format.
	Extensions map[string]Format
}

// DefaultExtensions returns the built-in extension table.
func DefaultExtensions() map[string]Format {
	return map[string]Format{
		".obj":  FormatText,
		".gltf": FormatJSONScene,
		".glb":  FormatBinaryScene,
	}
}

// DefaultOptions returns options with the standard thresholds.
func DefaultOptions() Options {
	return Options{
		CenterTolerance: bounds.DefaultCenterTolerance,
		MaxDimension:    bounds.DefaultMaxDimension,
		WarnVertices:    DefaultWarnVertices,
		MaxVertices:     DefaultMaxVertices,
		Extensions:      DefaultExtensions(),
	}
}

// Validator validates files. It holds no per-file state and is safe for
// concurrent use.
type Validator struct {
	opts Options
	log  *zap.Logger
}

// New creates a Validator. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Extensions == nil {
		opts.Extensions = DefaultExtensions()
	}
	return &Validator{opts: opts, log: log}
}

// Options returns the validator's options.
func (v *Validator) Options() Options {
	return v.opts
}

// FormatFromPath maps a file extension to a format. Matching ignores case.
func FormatFromPath(path string, extensions map[string]Format) Format {
	if extensions == nil {
		extensions = DefaultExtensions()
	}
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// ValidateFile reads and validates one file. It never panics and never
// returns an error: every failure is a finding in the report.
func (v *Validator) ValidateFile(ctx context.Context, path string) Report {
	start := time.Now()
	r := v.validateFile(ctx, path)
	r.Duration = time.Since(start)

	v.log.Debug("validated file",
		zap.String("file", path),
		zap.Stringer("format", r.Format),
		zap.Bool("passed", r.Passed),
		zap.Int("errors", r.ErrorCount()),
		zap.Int("warnings", r.WarningCount()),
		zap.Duration("duration", r.Duration))
	return r
}

func (v *Validator) validateFile(ctx context.Context, path string) Report {
	format := FormatFromPath(path, v.opts.Extensions)
	if format == FormatUnknown {
		r := newReport(path, format)
		r.errorf(CodeUnsupportedFormat, "unrecognized extension %q", filepath.Ext(path))
		return r.finish()
	}

	if err := ctx.Err(); err != nil {
		r := newReport(path, format)
		r.errorf(CodeTimeout, "not validated: %v", err)
		return r.finish()
	}

	if v.opts.FileTimeout <= 0 {
		return v.safeValidate(path, format)
	}

	ctx, cancel := context.WithTimeout(ctx, v.opts.FileTimeout)
	defer cancel()

	// Buffered so the worker can finish after a timeout without blocking.
	done := make(chan Report, 1)
	go func() {
		done <- v.safeValidate(path, format)
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		v.log.Warn("file validation timed out", zap.String("file", path), zap.Duration("timeout", v.opts.FileTimeout))
		r := newReport(path, format)
		r.errorf(CodeTimeout, "validation did not finish within %s", v.opts.FileTimeout)
		return r.finish()
	}
}

// safeValidate reads the file and dispatches, converting panics to findings.
func (v *Validator) safeValidate(path string, format Format) (report Report) {
	defer func() {
		if p := recover(); p != nil {
			v.log.Error("panic during validation",
				zap.String("file", path),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
			r := newReport(path, format)
			r.errorf(CodeInternalError, "internal error: %v", p)
			report = r.finish()
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		r := newReport(path, format)
		r.errorf(CodeFileUnreadable, "%v", err)
		return r.finish()
	}
	return v.ValidateBytes(path, format, data, filepath.Dir(path))
}

// ValidateBytes validates in-memory file contents of the given format.
// baseDir resolves external buffer URIs of scene files.
func (v *Validator) ValidateBytes(file string, format Format, data []byte, baseDir string) Report {
	switch format {
	case FormatText:
		return v.ValidateOBJ(file, data)
	case FormatJSONScene:
		return v.ValidateGLTF(file, data, baseDir)
	case FormatBinaryScene:
		return v.ValidateGLB(file, data, baseDir)
	default:
		r := newReport(file, format)
		r.errorf(CodeUnsupportedFormat, "unsupported format %s", format)
		return r.finish()
	}
}

// Package report renders validation reports for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshlint/internal/validate"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options controls rendering.
type Options struct {
	Format  string
	Color   bool
	Verbose bool // include stats for every file
}

// Document is the machine-readable output.
type Document struct {
	Summary validate.Summary  `json:"summary" yaml:"summary"`
	Reports []validate.Report `json:"reports" yaml:"reports"`
}

// Write renders reports to w in the requested format.
func Write(w io.Writer, reports []validate.Report, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return WriteText(w, reports, opts.Color, opts.Verbose)
	case FormatJSON:
		return WriteJSON(w, reports)
	case FormatYAML:
		return WriteYAML(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

func newDocument(reports []validate.Report) Document {
	if reports == nil {
		reports = []validate.Report{}
	}
	return Document{Summary: validate.Summarize(reports), Reports: reports}
}

// WriteJSON writes reports as an indented JSON document.
func WriteJSON(w io.Writer, reports []validate.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(reports))
}

// WriteYAML writes reports as a YAML document.
func WriteYAML(w io.Writer, reports []validate.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(reports)); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText writes a console listing: one status line per file, its
// findings indented below, and a summary box.
func WriteText(w io.Writer, reports []validate.Report, color, verbose bool) error {
	st := newStyles(w, color)
	var b strings.Builder

	for i := range reports {
		r := &reports[i]
		status := st.pass.Render("PASS")
		if !r.Passed {
			status = st.fail.Render("FAIL")
		}
		fmt.Fprintf(&b, "%s %s %s\n", status, r.File, st.muted.Render("("+r.Format.String()+")"))

		for _, f := range r.Findings {
			sev := st.fail.Render("error  ")
			if f.Severity == validate.SeverityWarning {
				sev = st.warn.Render("warning")
			}
			fmt.Fprintf(&b, "    %s %s %s\n", sev, st.code.Render(f.Code), f.Message)
		}

		if verbose {
			for _, line := range statsLines(r) {
				fmt.Fprintf(&b, "    %s\n", st.muted.Render(line))
			}
		}
	}

	s := validate.Summarize(reports)
	line := fmt.Sprintf("%d files: %s, %s (%d errors, %d warnings)",
		s.Files,
		st.pass.Render(fmt.Sprintf("%d passed", s.Passed)),
		st.fail.Render(fmt.Sprintf("%d failed", s.Failed)),
		s.Errors, s.Warnings)
	b.WriteString(st.summary.Render(line))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// statsLines describes the stats that apply to the report's format.
func statsLines(r *validate.Report) []string {
	s := r.Stats
	var lines []string
	switch r.Format {
	case validate.FormatText:
		if s.Vertices == 0 {
			break
		}
		lines = append(lines, fmt.Sprintf("vertices %d, lines %d, faces %d, edges ~%d",
			s.Vertices, s.Lines, s.Faces, s.Edges))
		if bb := s.Bounds; bb != nil {
			lines = append(lines,
				fmt.Sprintf("bounds min %s max %s", vec(bb.Min), vec(bb.Max)),
				fmt.Sprintf("center %s size %s (max %.4f)", vec(bb.Center), vec(bb.Size), bb.MaxDimension))
		}
	case validate.FormatJSONScene, validate.FormatBinaryScene:
		if s.AssetVersion != "" {
			lines = append(lines, "asset version "+s.AssetVersion)
		}
		lines = append(lines, fmt.Sprintf("meshes %d, primitives %d, buffers %d", s.Meshes, s.Primitives, s.Buffers))
		if r.Format == validate.FormatBinaryScene && s.JSONChunk > 0 {
			lines = append(lines, fmt.Sprintf("chunks JSON %d bytes, BIN %d bytes", s.JSONChunk, s.BinaryChunk))
		}
	}
	lines = append(lines, "took "+r.Duration.String())
	return lines
}

func vec(v [3]float64) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v[0], v[1], v[2])
}

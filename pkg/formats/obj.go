// Package formats provides parsers for 3D asset file formats.
// OBJ (Wavefront text mesh) parser and writer for the v/l/f subset.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshlint/pkg/encoding"
)

// OBJ format errors.
var (
	ErrMalformedVertex       = errors.New("malformed vertex: expected 'v x y z'")
	ErrMalformedNumber       = errors.New("malformed numeric literal")
	ErrMalformedFace         = errors.New("malformed face: fewer than 3 indices")
	ErrMalformedIndex        = errors.New("malformed index")
	ErrInvalidIndexReference = errors.New("invalid index reference")
)

// ParseError reports the line an OBJ parse failure occurred on.
// Kind is one of the OBJ sentinel errors.
type ParseError struct {
	Line   int
	Kind   error
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Kind)
	}
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Kind, e.Detail)
}

// Unwrap returns the sentinel kind so errors.Is works.
func (e *ParseError) Unwrap() error {
	return e.Kind
}

// Geometry is an in-memory mesh shared by all format parsers.
// Indices are 0-based.
type Geometry struct {
	Vertices [][3]float64 // Vertex positions
	Lines    [][]int      // Polylines as vertex index sequences
	Faces    [][]int      // Polygons, at least 3 indices each
}

// EdgeCount returns an approximate edge count: two per polyline plus one
// per face corner.
func (g *Geometry) EdgeCount() int {
	edges := len(g.Lines) * 2
	for _, face := range g.Faces {
		edges += len(face)
	}
	return edges
}

// Clone returns a deep copy of the geometry.
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{}
	if g.Vertices != nil {
		out.Vertices = append([][3]float64(nil), g.Vertices...)
	}
	if g.Lines != nil {
		out.Lines = make([][]int, len(g.Lines))
		for i, l := range g.Lines {
			out.Lines[i] = append([]int(nil), l...)
		}
	}
	if g.Faces != nil {
		out.Faces = make([][]int, len(g.Faces))
		for i, f := range g.Faces {
			out.Faces[i] = append([]int(nil), f...)
		}
	}
	return out
}

// ParseOBJ parses OBJ text from raw bytes.
func ParseOBJ(data []byte) (*Geometry, error) {
	text, err := encoding.DecodeText(data)
	if err != nil {
		return nil, err
	}

	g := &Geometry{}
	// Line number of each line/face, for reporting out-of-range indices.
	var lineNos, faceNos []int

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVertex(fields)
			if err != nil {
				return nil, withLine(lineNo, err)
			}
			g.Vertices = append(g.Vertices, v)

		case "l":
			indices, err := parseIndices(fields[1:])
			if err != nil {
				return nil, withLine(lineNo, err)
			}
			g.Lines = append(g.Lines, indices)
			lineNos = append(lineNos, lineNo)

		case "f":
			indices, err := parseIndices(fields[1:])
			if err != nil {
				return nil, withLine(lineNo, err)
			}
			if len(indices) < 3 {
				return nil, &ParseError{Line: lineNo, Kind: ErrMalformedFace,
					Detail: fmt.Sprintf("got %d", len(indices))}
			}
			g.Faces = append(g.Faces, indices)
			faceNos = append(faceNos, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	// Forward references are legal, so the upper bound is checked once every
	// vertex is known.
	n := len(g.Vertices)
	for i, l := range g.Lines {
		if err := checkRange(l, n); err != nil {
			return nil, withLine(lineNos[i], err)
		}
	}
	for i, f := range g.Faces {
		if err := checkRange(f, n); err != nil {
			return nil, withLine(faceNos[i], err)
		}
	}

	return g, nil
}

func parseVertex(fields []string) ([3]float64, error) {
	var v [3]float64
	if len(fields) < 4 {
		return v, &ParseError{Kind: ErrMalformedVertex, Detail: fmt.Sprintf("got %d tokens", len(fields))}
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return v, &ParseError{Kind: ErrMalformedNumber, Detail: strconv.Quote(fields[i+1])}
		}
		v[i] = f
	}
	return v, nil
}

// parseIndices converts 1-based index tokens to 0-based indices. Only the
// segment before the first '/' is the vertex index.
func parseIndices(tokens []string) ([]int, error) {
	indices := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		seg, _, _ := strings.Cut(tok, "/")
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, &ParseError{Kind: ErrMalformedIndex, Detail: strconv.Quote(tok)}
		}
		idx := n - 1
		if idx < 0 {
			return nil, &ParseError{Kind: ErrInvalidIndexReference,
				Detail: fmt.Sprintf("index %d (relative indices are not supported)", n)}
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func checkRange(indices []int, vertexCount int) error {
	for _, idx := range indices {
		if idx >= vertexCount {
			return &ParseError{Kind: ErrInvalidIndexReference,
				Detail: fmt.Sprintf("index %d exceeds vertex count %d", idx+1, vertexCount)}
		}
	}
	return nil
}

func withLine(line int, err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Line = line
		return pe
	}
	return fmt.Errorf("line %d: %w", line, err)
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// WriteOBJ writes g as OBJ text. Vertices use six decimals and indices are
// written 1-based in stored order.
func WriteOBJ(w io.Writer, g *Geometry) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("# Vertices\n")
	for _, v := range g.Vertices {
		bw.WriteString("v ")
		bw.WriteString(strconv.FormatFloat(v[0], 'f', 6, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v[1], 'f', 6, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v[2], 'f', 6, 64))
		bw.WriteByte('\n')
	}

	if len(g.Lines) > 0 {
		bw.WriteString("\n# Lines\n")
		for _, l := range g.Lines {
			writeIndices(bw, "l", l)
		}
	}

	if len(g.Faces) > 0 {
		bw.WriteString("\n# Faces\n")
		for _, f := range g.Faces {
			writeIndices(bw, "f", f)
		}
	}

	return bw.Flush()
}

func writeIndices(bw *bufio.Writer, directive string, indices []int) {
	bw.WriteString(directive)
	for _, idx := range indices {
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(idx + 1))
	}
	bw.WriteByte('\n')
}

// MarshalText returns the OBJ encoding of g.
func (g *Geometry) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOBJFile writes g to path.
func WriteOBJFile(path string, g *Geometry) error {
	data, err := g.MarshalText()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

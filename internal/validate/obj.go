package validate

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/pkg/bounds"
	"github.com/Faultbox/meshlint/pkg/encoding"
	"github.com/Faultbox/meshlint/pkg/formats"
)

// parseErrorCodes maps OBJ parse sentinels to finding codes.
var parseErrorCodes = []struct {
	err  error
	code string
}{
	{formats.ErrMalformedVertex, CodeMalformedVertex},
	{formats.ErrMalformedNumber, CodeMalformedNumber},
	{formats.ErrMalformedFace, CodeMalformedFace},
	{formats.ErrMalformedIndex, CodeMalformedIndex},
	{formats.ErrInvalidIndexReference, CodeInvalidIndexReference},
}

func parseErrorCode(err error) string {
	for _, pc := range parseErrorCodes {
		if errors.Is(err, pc.err) {
			return pc.code
		}
	}
	return CodeUndecodableText
}

// ValidateOBJ validates a text mesh: it must parse, have vertices, and stay
// within the vertex limit. Bounds and density problems are warnings.
func (v *Validator) ValidateOBJ(file string, data []byte) Report {
	r := newReport(file, FormatText)
	if encoding.HasBOM(data) {
		v.log.Debug("text mesh starts with a byte order mark", zap.String("file", file))
	}

	g, err := formats.ParseOBJ(data)
	if err != nil {
		r.errorf(parseErrorCode(err), "%v", err)
		return r.finish()
	}

	r.Stats.Vertices = len(g.Vertices)
	r.Stats.Lines = len(g.Lines)
	r.Stats.Faces = len(g.Faces)
	r.Stats.Edges = g.EdgeCount()

	box, err := bounds.Compute(g)
	if err != nil {
		r.errorf(CodeNoVertices, "no 'v' directives found")
		return r.finish()
	}
	r.Stats.Bounds = boundsStats(box)

	n := len(g.Vertices)
	switch {
	case v.opts.MaxVertices > 0 && n > v.opts.MaxVertices:
		r.errorf(CodeTooManyVertices, "%d vertices exceeds the limit of %d", n, v.opts.MaxVertices)
	case v.opts.WarnVertices > 0 && n >= v.opts.WarnVertices:
		r.warnf(CodeHighVertexCount, "%d vertices; consider simplifying below %d", n, v.opts.WarnVertices)
	}

	if !bounds.IsCentered(box, v.opts.CenterTolerance) {
		c := box.Center()
		r.warnf(CodeNotCentered, "center (%.3f, %.3f, %.3f) is not within %.3f of the origin",
			c.X, c.Y, c.Z, v.opts.CenterTolerance)
	}
	if !bounds.IsNormalized(box, v.opts.MaxDimension) {
		r.warnf(CodeNotNormalized, "max dimension %.3f exceeds %.3f", box.MaxDimension(), v.opts.MaxDimension)
	}

	return r.finish()
}

func boundsStats(b bounds.Box) *BoundsStats {
	c, s := b.Center(), b.Size()
	return &BoundsStats{
		Min:          [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
		Max:          [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
		Center:       [3]float64{c.X, c.Y, c.Z},
		Size:         [3]float64{s.X, s.Y, s.Z},
		MaxDimension: b.MaxDimension(),
	}
}

// Package bounds computes axis-aligned bounding boxes for meshes and the
// center-and-scale normalization transform.
package bounds

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/meshlint/pkg/formats"
)

// ErrEmptyModel is returned when a box is requested for a mesh without vertices.
var ErrEmptyModel = errors.New("empty model: no vertices to bound")

// Default thresholds.
const (
	DefaultCenterTolerance = 0.1
	DefaultMaxDimension    = 2.0
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

// Center returns the midpoint of the box.
func (b Box) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Size returns the extent along each axis.
func (b Box) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// MaxDimension returns the largest extent.
func (b Box) MaxDimension() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Degenerate reports whether every vertex coincides.
func (b Box) Degenerate() bool {
	return b.MaxDimension() == 0
}

// Compute returns the bounding box of g's vertices.
func Compute(g *formats.Geometry) (Box, error) {
	if g == nil || len(g.Vertices) == 0 {
		return Box{}, ErrEmptyModel
	}

	first := toVec(g.Vertices[0])
	box := Box{Min: first, Max: first}
	for _, v := range g.Vertices[1:] {
		box.Min.X = math.Min(box.Min.X, v[0])
		box.Min.Y = math.Min(box.Min.Y, v[1])
		box.Min.Z = math.Min(box.Min.Z, v[2])
		box.Max.X = math.Max(box.Max.X, v[0])
		box.Max.Y = math.Max(box.Max.Y, v[1])
		box.Max.Z = math.Max(box.Max.Z, v[2])
	}
	return box, nil
}

// IsCentered reports whether |center| < tolerance on every axis.
func IsCentered(b Box, tolerance float64) bool {
	c := b.Center()
	return math.Abs(c.X) < tolerance && math.Abs(c.Y) < tolerance && math.Abs(c.Z) < tolerance
}

// IsNormalized reports whether the largest extent is at most maxDimension.
func IsNormalized(b Box, maxDimension float64) bool {
	return b.MaxDimension() <= maxDimension
}

// Normalize returns a copy of g translated so its box is centered on the
// origin and scaled uniformly so the largest extent is 2. Degenerate and
// empty models are returned unchanged. Topology is never modified.
func Normalize(g *formats.Geometry) *formats.Geometry {
	out := g.Clone()

	box, err := Compute(g)
	if err != nil || box.Degenerate() {
		return out
	}

	center := box.Center()
	scale := 2 / box.MaxDimension()
	for i, v := range g.Vertices {
		p := r3.Scale(scale, r3.Sub(toVec(v), center))
		out.Vertices[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

func toVec(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

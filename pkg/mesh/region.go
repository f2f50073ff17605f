// Package mesh implements closed triangle-soup regions and the plane
// bisection used to subdivide them.
package mesh

import (
	"errors"

	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

// DefaultTextureScale maps one world unit to a quarter of a texture tile.
const DefaultTextureScale = 0.25

// Errors returned by region validation and splitting.
var (
	ErrEmptyRegion     = errors.New("region has no faces")
	ErrMalformedRegion = errors.New("region has non-finite or repeated vertices")
	ErrOpenSurface     = errors.New("region is not a closed surface")
	ErrDegeneratePlane = errors.New("degenerate split plane")
	ErrPlaneMisses     = errors.New("split plane does not cross region")
)

// Triangle is one face of a region. Cut marks faces created by a bisection,
// as opposed to faces of the original exterior surface.
type Triangle struct {
	V      [3]pmath.Vec3
	UV     [3]pmath.Vec2
	Normal pmath.Vec3
	Cut    bool
}

// NewTriangle builds a face with a regenerated normal and UVs projected onto
// the face's own tangent basis.
func NewTriangle(a, b, c pmath.Vec3, textureScale float32, cut bool) Triangle {
	edge := b.Sub(a)
	normal := edge.Cross(c.Sub(a)).Normalize()
	tangent := edge.Normalize()
	bitangent := normal.Cross(tangent)

	project := func(p pmath.Vec3) pmath.Vec2 {
		d := p.Sub(a)
		return pmath.Vec2{X: d.Dot(tangent), Y: d.Dot(bitangent)}.Scale(textureScale)
	}

	return Triangle{
		V:      [3]pmath.Vec3{a, b, c},
		UV:     [3]pmath.Vec2{project(a), project(b), project(c)},
		Normal: normal,
		Cut:    cut,
	}
}

// Center returns the centroid of the face.
func (t Triangle) Center() pmath.Vec3 {
	return t.V[0].Add(t.V[1]).Add(t.V[2]).Scale(1.0 / 3.0)
}

// Region is a closed triangle set. Regions are shared between tree nodes and
// must not be modified once built; use Clone for a private copy.
type Region struct {
	Triangles []Triangle
}

// NewRegion wraps a triangle list.
func NewRegion(tris []Triangle) *Region {
	return &Region{Triangles: tris}
}

// Len returns the number of faces.
func (r *Region) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Triangles)
}

// IsEmpty reports whether the region has no faces.
func (r *Region) IsEmpty() bool {
	return r.Len() == 0
}

// Clone returns a deep copy.
func (r *Region) Clone() *Region {
	if r == nil {
		return nil
	}
	tris := make([]Triangle, len(r.Triangles))
	copy(tris, r.Triangles)
	return &Region{Triangles: tris}
}

// Bounds returns the axis-aligned bounding box of all vertices.
func (r *Region) Bounds() AABB {
	if r.IsEmpty() {
		return AABB{}
	}
	box := AABB{
		Min: pmath.Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)},
		Max: pmath.Vec3{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)},
	}
	for _, t := range r.Triangles {
		for _, v := range t.V {
			box.Min = box.Min.Min(v)
			box.Max = box.Max.Max(v)
		}
	}
	return box
}

// CutCount returns how many faces were created by bisection.
func (r *Region) CutCount() int {
	n := 0
	for _, t := range r.Triangles {
		if t.Cut {
			n++
		}
	}
	return n
}

// Combine concatenates regions into a new one. Nil inputs are skipped.
func Combine(regions ...*Region) *Region {
	total := 0
	for _, r := range regions {
		total += r.Len()
	}
	tris := make([]Triangle, 0, total)
	for _, r := range regions {
		if r != nil {
			tris = append(tris, r.Triangles...)
		}
	}
	return &Region{Triangles: tris}
}

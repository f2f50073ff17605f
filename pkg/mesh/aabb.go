package mesh

import (
	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max pmath.Vec3
}

// Center returns the midpoint of the box.
func (b AABB) Center() pmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extents along each axis.
func (b AABB) Size() pmath.Vec3 {
	return b.Max.Sub(b.Min)
}

// Volume returns the box volume.
func (b AABB) Volume() float32 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// MaxExtent returns the largest axis extent.
func (b AABB) MaxExtent() float32 {
	s := b.Size()
	return math32.Max(s.X, math32.Max(s.Y, s.Z))
}

// Grow expands the box by amount on every side.
func (b AABB) Grow(amount float32) AABB {
	d := pmath.Vec3{X: amount, Y: amount, Z: amount}
	return AABB{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Intersects reports whether two boxes overlap, touching included.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Contains reports whether p lies inside the box.
func (b AABB) Contains(p pmath.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the box enclosing all eight transformed corners.
func (b AABB) Transform(t pmath.Transform) AABB {
	corners := [8]pmath.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
	m := t.Matrix()
	first := m.TransformVec3(corners[0])
	out := AABB{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := m.TransformVec3(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

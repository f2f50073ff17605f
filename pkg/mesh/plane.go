package mesh

import (
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Plane is the set of points p with Normal·p = D.
type Plane struct {
	Normal pmath.Vec3
	D      float32
}

// BisectorPlane returns the plane halfway between two sites, with its normal
// pointing from a towards b.
func BisectorPlane(a, b pmath.Vec3) (Plane, error) {
	n := b.Sub(a).Normalize()
	if n == (pmath.Vec3{}) {
		return Plane{}, ErrDegeneratePlane
	}
	mid := a.Add(b).Scale(0.5)
	return Plane{Normal: n, D: n.Dot(mid)}, nil
}

// Distance returns the signed distance of p from the plane.
func (p Plane) Distance(v pmath.Vec3) float32 {
	return p.Normal.Dot(v) - p.D
}

// Above reports whether v is strictly on the normal side.
func (p Plane) Above(v pmath.Vec3) bool {
	return p.Distance(v) > 0
}

// Invert returns the same plane facing the other way.
func (p Plane) Invert() Plane {
	return Plane{Normal: p.Normal.Negate(), D: -p.D}
}

// intersect returns where segment a-b crosses the plane. The endpoints are
// put in a canonical order first so both faces sharing an edge produce the
// exact same point. An endpoint lying on the plane is returned as is.
func (p Plane) intersect(a, b pmath.Vec3) pmath.Vec3 {
	if b.Less(a) {
		a, b = b, a
	}
	da, db := p.Distance(a), p.Distance(b)
	switch {
	case da == 0:
		return a
	case db == 0:
		return b
	}
	t := da / (da - db)
	return a.Add(b.Sub(a).Scale(t))
}

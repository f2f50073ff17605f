package mesh

import (
	"math"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

const rayEpsilon = 1e-6

// RayHit returns the distance along dir at which the ray from origin meets
// the triangle, using the Möller-Trumbore test.
func (t Triangle) RayHit(origin, dir pmath.Vec3) (float32, bool) {
	e1 := t.V[1].Sub(t.V[0])
	e2 := t.V[2].Sub(t.V[0])
	h := dir.Cross(e2)
	det := e1.Dot(h)
	if math32.Abs(det) < rayEpsilon {
		return 0, false
	}
	inv := 1 / det
	s := origin.Sub(t.V[0])
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := inv * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	dist := inv * e2.Dot(q)
	if dist <= rayEpsilon {
		return 0, false
	}
	return dist, true
}

// Crossings counts faces hit by the ray from origin along dir.
func (r *Region) Crossings(origin, dir pmath.Vec3) int {
	n := 0
	for _, t := range r.Triangles {
		if _, ok := t.RayHit(origin, dir); ok {
			n++
		}
	}
	return n
}

// Contains reports whether p is inside the closed region by ray parity.
func (r *Region) Contains(p, dir pmath.Vec3) bool {
	return r.Crossings(p, dir)%2 == 1
}

func toR3(v pmath.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Area returns the total surface area.
func (t Triangle) Area() float64 {
	a := toR3(t.V[0])
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(toR3(t.V[1]), a), r3.Sub(toR3(t.V[2]), a)))
}

// Area returns the total surface area of the region.
func (r *Region) Area() float64 {
	var sum float64
	for _, t := range r.Triangles {
		sum += t.Area()
	}
	return sum
}

// Volume returns the enclosed volume of a closed, consistently wound region.
func (r *Region) Volume() float64 {
	var sum float64
	for _, t := range r.Triangles {
		sum += r3.Dot(toR3(t.V[0]), r3.Cross(toR3(t.V[1]), toR3(t.V[2])))
	}
	return math.Abs(sum) / 6
}

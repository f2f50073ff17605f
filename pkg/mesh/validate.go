package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

type edgeKey struct {
	a, b pmath.Vec3
}

func makeEdge(a, b pmath.Vec3) edgeKey {
	if b.Less(a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func finite(v pmath.Vec3) bool {
	return !math32.IsNaN(v.X) && !math32.IsNaN(v.Y) && !math32.IsNaN(v.Z) &&
		!math32.IsInf(v.X, 0) && !math32.IsInf(v.Y, 0) && !math32.IsInf(v.Z, 0)
}

// Validate checks that r is a single closed triangulated surface: every edge
// is shared by exactly two faces.
func (r *Region) Validate() error {
	if r.IsEmpty() {
		return ErrEmptyRegion
	}

	edges := make(map[edgeKey]int, len(r.Triangles)*3/2)
	for i, t := range r.Triangles {
		for _, v := range t.V {
			if !finite(v) {
				return fmt.Errorf("%w: face %d", ErrMalformedRegion, i)
			}
		}
		if t.V[0] == t.V[1] || t.V[1] == t.V[2] || t.V[2] == t.V[0] {
			return fmt.Errorf("%w: face %d", ErrMalformedRegion, i)
		}
		for j := 0; j < 3; j++ {
			edges[makeEdge(t.V[j], t.V[(j+1)%3])]++
		}
	}

	for e, n := range edges {
		if n != 2 {
			return fmt.Errorf("%w: edge %v-%v used by %d faces", ErrOpenSurface, e.a, e.b, n)
		}
	}
	return nil
}

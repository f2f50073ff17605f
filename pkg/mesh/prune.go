package mesh

import (
	pmath "github.com/Faultbox/shatter/pkg/math"
)

const pruneOffset = 1e-4

// PruneInterior drops faces that are enclosed from both sides: a ray from the
// face centre along its normal and one against it both hit other faces. This
// removes the coincident cap faces left between combined pieces.
func PruneInterior(r *Region) *Region {
	if r.IsEmpty() {
		return r
	}
	kept := make([]Triangle, 0, len(r.Triangles))
	for i, t := range r.Triangles {
		if !(hitsOther(r, i, t.Normal) && hitsOther(r, i, t.Normal.Negate())) {
			kept = append(kept, t)
		}
	}
	return &Region{Triangles: kept}
}

func hitsOther(r *Region, self int, dir pmath.Vec3) bool {
	origin := r.Triangles[self].Center().Add(dir.Scale(pruneOffset))
	for j, t := range r.Triangles {
		if j == self {
			continue
		}
		if _, ok := t.RayHit(origin, dir); ok {
			return true
		}
	}
	return false
}

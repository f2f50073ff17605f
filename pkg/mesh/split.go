package mesh

import (
	"fmt"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

// SplitOptions controls face synthesis during a split.
type SplitOptions struct {
	TextureScale float32
}

func (o SplitOptions) textureScale() float32 {
	if o.TextureScale <= 0 {
		return DefaultTextureScale
	}
	return o.TextureScale
}

// Bisect splits r along the bisector plane of two interior sites. The first
// result holds the part on the side of sites[1], the second the part on the
// side of sites[0].
func Bisect(r *Region, sites []pmath.Vec3, opts SplitOptions) (*Region, *Region, error) {
	if len(sites) < 2 {
		return nil, nil, fmt.Errorf("%w: need 2 sites, got %d", ErrDegeneratePlane, len(sites))
	}
	plane, err := BisectorPlane(sites[0], sites[1])
	if err != nil {
		return nil, nil, err
	}
	return Split(r, plane, opts)
}

// Split cuts a closed convex region by a plane into two closed regions. The
// first result is the part above the plane.
func Split(r *Region, plane Plane, opts SplitOptions) (*Region, *Region, error) {
	if r.IsEmpty() {
		return nil, nil, ErrEmptyRegion
	}
	if plane.Normal == (pmath.Vec3{}) {
		return nil, nil, ErrDegeneratePlane
	}

	scale := opts.textureScale()
	above := clip(r, plane, scale)
	below := clip(r, plane.Invert(), scale)
	if above.IsEmpty() || below.IsEmpty() {
		return nil, nil, ErrPlaneMisses
	}
	return above, below, nil
}

// clip keeps the part of r above the plane and seals it with a cap.
func clip(r *Region, plane Plane, scale float32) *Region {
	out := make([]Triangle, 0, len(r.Triangles))
	// Cut boundary segments, two points per segment, in the winding of the
	// kept faces.
	var boundary []pmath.Vec3
	emit := func(a, b, c pmath.Vec3, cut bool) {
		// Vertices on the plane come back from intersect unchanged, which
		// can collapse a triangle onto an edge.
		if a == b || b == c || a == c {
			return
		}
		out = append(out, NewTriangle(a, b, c, scale, cut))
	}

	for _, t := range r.Triangles {
		var up [3]bool
		count := 0
		for i, v := range t.V {
			if plane.Above(v) {
				up[i] = true
				count++
			}
		}

		switch count {
		case 0:
			continue

		case 3:
			out = append(out, t)

		case 1:
			lone := 0
			for i := range up {
				if up[i] {
					lone = i
				}
			}
			v := t.V[lone]
			next := t.V[(lone+1)%3]
			prev := t.V[(lone+2)%3]
			after := plane.intersect(v, next)
			before := plane.intersect(v, prev)

			emit(v, after, before, t.Cut)
			boundary = append(boundary, after, before)

		case 2:
			rest := 0
			for i := range up {
				if !up[i] {
					rest = i
				}
			}
			// Keep the face winding: rest -> a0 -> a1 -> rest.
			rv := t.V[rest]
			a0 := t.V[(rest+1)%3]
			a1 := t.V[(rest+2)%3]
			iAfter := plane.intersect(a1, rv)
			iBefore := plane.intersect(a0, rv)

			// Triangulate the quad a0, a1, iAfter, iBefore along its shorter diagonal.
			if a0.Distance(iAfter) <= a1.Distance(iBefore) {
				emit(a0, a1, iAfter, t.Cut)
				emit(iAfter, iBefore, a0, t.Cut)
			} else {
				emit(a0, a1, iBefore, t.Cut)
				emit(iAfter, iBefore, a1, t.Cut)
			}
			boundary = append(boundary, iAfter, iBefore)
		}
	}

	return &Region{Triangles: append(out, capFaces(boundary, scale)...)}
}

// capFaces fans the cut boundary around its centroid. Segments are reversed so
// the cap faces away from the kept side.
func capFaces(boundary []pmath.Vec3, scale float32) []Triangle {
	if len(boundary) < 2 {
		return nil
	}
	var center pmath.Vec3
	for _, p := range boundary {
		center = center.Add(p)
	}
	center = center.Scale(1 / float32(len(boundary)))

	tris := make([]Triangle, 0, len(boundary)/2)
	for i := 0; i+1 < len(boundary); i += 2 {
		a, b := boundary[i], boundary[i+1]
		if a == b {
			continue
		}
		tris = append(tris, NewTriangle(b, a, center, scale, true))
	}
	return tris
}

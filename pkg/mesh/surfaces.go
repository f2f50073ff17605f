package mesh

import (
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Interior is the surface index reported for faces created by a cut.
const Interior = -1

const sameDirection = 0.999

// SurfaceRegistry maps exterior face directions of an original region to
// surface indices so that a material collaborator can texture fragments.
type SurfaceRegistry struct {
	normals []pmath.Vec3
}

// NewSurfaceRegistry records one surface per distinct face normal of r.
func NewSurfaceRegistry(r *Region) *SurfaceRegistry {
	s := &SurfaceRegistry{}
	for _, t := range r.Triangles {
		if t.Cut || s.lookup(t.Normal) != Interior {
			continue
		}
		s.normals = append(s.normals, t.Normal)
	}
	return s
}

// Len returns the number of distinct exterior surfaces.
func (s *SurfaceRegistry) Len() int {
	return len(s.normals)
}

func (s *SurfaceRegistry) lookup(n pmath.Vec3) int {
	for i, m := range s.normals {
		if m.Dot(n) >= sameDirection {
			return i
		}
	}
	return Interior
}

// Classify returns the exterior surface a face belongs to, or Interior.
func (s *SurfaceRegistry) Classify(t Triangle) int {
	if t.Cut {
		return Interior
	}
	return s.lookup(t.Normal)
}

// Assign classifies every face of r.
func (s *SurfaceRegistry) Assign(r *Region) []int {
	out := make([]int, len(r.Triangles))
	for i, t := range r.Triangles {
		out[i] = s.Classify(t)
	}
	return out
}

package vst

import (
	"errors"
	"fmt"
	"math/rand/v2"

	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// DefaultMaxTries bounds the rejection sampling per site.
const DefaultMaxTries = 5000

// ErrSamplingExhausted is returned when no interior point was found within
// the retry bound.
var ErrSamplingExhausted = errors.New("site sampling exhausted")

// Sampler draws interior points of a region by rejection sampling its
// bounding box with a ray parity test.
type Sampler struct {
	rng      *rand.Rand
	maxTries int
	dir      pmath.Vec3
}

// NewSampler returns a deterministic sampler for the given seed.
func NewSampler(seed uint64, maxTries int) *Sampler {
	if maxTries <= 0 {
		maxTries = DefaultMaxTries
	}
	return &Sampler{
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		maxTries: maxTries,
		dir:      pmath.Up,
	}
}

// Sites returns two points inside r.
func (s *Sampler) Sites(r *mesh.Region) ([]pmath.Vec3, error) {
	if r.IsEmpty() {
		return nil, mesh.ErrEmptyRegion
	}
	box := r.Bounds()
	size := box.Size()

	sites := make([]pmath.Vec3, 0, 2)
	for len(sites) < 2 {
		found := false
		for try := 0; try < s.maxTries; try++ {
			p := box.Min.Add(pmath.Vec3{
				X: s.rng.Float32() * size.X,
				Y: s.rng.Float32() * size.Y,
				Z: s.rng.Float32() * size.Z,
			})
			if r.Contains(p, s.dir) {
				sites = append(sites, p)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %d tries for site %d", ErrSamplingExhausted, s.maxTries, len(sites)+1)
		}
	}
	return sites, nil
}

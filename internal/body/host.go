package body

import (
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// Physics is the rigid-body world.
type Physics interface {
	// AddBody creates a rigid body with a convex shape built from b.Region.
	AddBody(b *Body) error
	RemoveBody(b *Body)
	ApplyImpulse(b *Body, impulse pmath.Vec3)
	// Overlapping returns the active bodies whose bounds reach the sphere.
	Overlapping(center pmath.Vec3, radius float32) []*Body
}

// Scene parents bodies under a container.
type Scene interface {
	Attach(b *Body)
	Detach(b *Body)
}

// Effects plays the disintegration of a fully consumed body.
type Effects interface {
	Disintegrate(b *Body)
}

// MassFor returns density times the volume of the region's bounds, floored at floor.
func MassFor(region *mesh.Region, density, floor float32) float32 {
	m := density * region.Bounds().Volume()
	if m < floor {
		return floor
	}
	return m
}

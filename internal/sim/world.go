// Package sim is a headless host for destructible objects: a small rigid
// body world, a scene container and a tick-driven transform animator.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/logger"
	pmath "github.com/Faultbox/shatter/pkg/math"
)

var (
	// ErrDuplicateBody is returned when a body is added twice.
	ErrDuplicateBody = errors.New("body already in world")

	// ErrNoMass is returned for bodies that cannot be simulated.
	ErrNoMass = errors.New("body has no mass")
)

type rigid struct {
	velocity pmath.Vec3
	attached bool
	// Exterior surface index per face, or mesh.Interior.
	surfaces []int
}

type tween struct {
	body     *body.Body
	from     pmath.Transform
	to       pmath.Transform
	duration time.Duration
	elapsed  time.Duration
	done     chan struct{}
}

// World tracks every body in the simulation. It is safe for concurrent use.
type World struct {
	mu            sync.Mutex
	damping       float32
	order         []*body.Body
	bodies        map[*body.Body]*rigid
	tweens        []*tween
	disintegrated []*body.Body
}

// NewWorld returns an empty world. Velocities lose damping of their
// magnitude per second.
func NewWorld(damping float32) *World {
	return &World{
		damping: damping,
		bodies:  make(map[*body.Body]*rigid),
	}
}

// AddBody puts b in the world at rest.
func (w *World) AddBody(b *body.Body) error {
	if b.Mass <= 0 {
		return fmt.Errorf("%w: %s", ErrNoMass, b.Name)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.bodies[b]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, b.Name)
	}
	w.bodies[b] = &rigid{}
	w.order = append(w.order, b)
	return nil
}

// RemoveBody takes b out of the world.
func (w *World) RemoveBody(b *body.Body) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.bodies[b]; !ok {
		return
	}
	delete(w.bodies, b)
	if i := slices.Index(w.order, b); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
}

// ApplyImpulse changes the velocity of b by impulse over its mass.
func (w *World) ApplyImpulse(b *body.Body, impulse pmath.Vec3) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.bodies[b]; ok {
		r.velocity = r.velocity.Add(impulse.Scale(1 / b.Mass))
	}
}

// Overlapping returns the active bodies whose world bounds, grown by
// radius, contain center. Bodies come back in the order they were added.
func (w *World) Overlapping(center pmath.Vec3, radius float32) []*body.Body {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []*body.Body
	for _, b := range w.order {
		if !b.Active() {
			continue
		}
		if b.Region.Bounds().Transform(b.Transform()).Grow(radius).Contains(center) {
			out = append(out, b)
		}
	}
	return out
}

// Attach shows b in the scene, texturing its faces by surface.
func (w *World) Attach(b *body.Body) {
	surfaces := b.Surfaces()

	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.bodies[b]; ok {
		r.attached = true
		r.surfaces = surfaces
	}
}

// Detach hides b.
func (w *World) Detach(b *body.Body) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.bodies[b]; ok {
		r.attached = false
	}
}

// Disintegrate records a fully consumed body.
func (w *World) Disintegrate(b *body.Body) {
	w.mu.Lock()
	w.disintegrated = append(w.disintegrated, b)
	w.mu.Unlock()
	logger.Debug("body disintegrated", zap.String("body", b.Name))
}

// Tween moves b to target over d, advancing with Tick. It blocks until the
// body arrives or ctx is done.
func (w *World) Tween(ctx context.Context, b *body.Body, target pmath.Transform, d time.Duration) error {
	if d <= 0 {
		b.SetTransform(target)
		return nil
	}

	tw := &tween{
		body:     b,
		from:     b.Transform(),
		to:       target,
		duration: d,
		done:     make(chan struct{}),
	}
	w.mu.Lock()
	w.tweens = append(w.tweens, tw)
	w.mu.Unlock()

	select {
	case <-tw.done:
		return nil
	case <-ctx.Done():
		w.mu.Lock()
		if i := slices.Index(w.tweens, tw); i >= 0 {
			w.tweens = slices.Delete(w.tweens, i, i+1)
		}
		w.mu.Unlock()
		return ctx.Err()
	}
}

// Tick advances the world by dt. Animated bodies follow their tween and
// ignore their velocity until it finishes.
func (w *World) Tick(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	animated := make(map[*body.Body]bool, len(w.tweens))
	running := w.tweens[:0]
	for _, tw := range w.tweens {
		tw.elapsed += dt
		alpha := float32(tw.elapsed) / float32(tw.duration)
		if alpha >= 1 {
			tw.body.SetTransform(tw.to)
			close(tw.done)
			continue
		}
		tw.body.SetTransform(tw.from.Interpolate(tw.to, alpha))
		animated[tw.body] = true
		running = append(running, tw)
	}
	clear(w.tweens[len(running):])
	w.tweens = running

	secs := float32(dt.Seconds())
	keep := max(0, 1-w.damping*secs)
	for _, b := range w.order {
		r := w.bodies[b]
		if animated[b] {
			r.velocity = pmath.Vec3{}
			continue
		}
		if r.velocity == (pmath.Vec3{}) {
			continue
		}
		t := b.Transform()
		t.Position = t.Position.Add(r.velocity.Scale(secs))
		b.SetTransform(t)
		r.velocity = r.velocity.Scale(keep)
	}
}

// Bodies returns the bodies in the world.
func (w *World) Bodies() []*body.Body {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.order)
}

// Visible returns the bodies attached to the scene.
func (w *World) Visible() []*body.Body {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []*body.Body
	for _, b := range w.order {
		if w.bodies[b].attached {
			out = append(out, b)
		}
	}
	return out
}

// Surfaces returns the surface assignment b was attached with.
func (w *World) Surfaces(b *body.Body) []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.bodies[b]; ok {
		return slices.Clone(r.surfaces)
	}
	return nil
}

// Velocity returns the current velocity of b.
func (w *World) Velocity(b *body.Body) pmath.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r, ok := w.bodies[b]; ok {
		return r.velocity
	}
	return pmath.Vec3{}
}

// Disintegrated returns the bodies handed to Disintegrate so far.
func (w *World) Disintegrated() []*body.Body {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.disintegrated)
}

// Animating returns the number of unfinished tweens.
func (w *World) Animating() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tweens)
}

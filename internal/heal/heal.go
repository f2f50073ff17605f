// Package heal reassembles fragmented bodies back into an ancestor node.
package heal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// ErrNotActive is returned when healing from a retired body.
var ErrNotActive = errors.New("body is not active")

// Interpolator moves a body toward a transform over time. Tween returns
// once the body has arrived or ctx is done.
type Interpolator interface {
	Tween(ctx context.Context, b *body.Body, target pmath.Transform, d time.Duration) error
}

// Options configures an Engine.
type Options struct {
	// LevelsUp is how far above the requesting body's node the heal reaches.
	LevelsUp int
	Duration time.Duration
}

// Result describes one heal.
type Result struct {
	Ancestor vst.NodeID
	Gathered []*body.Body
	Healed   *body.Body
}

// Engine heals bodies. Heals of bodies belonging to the same object must
// not run concurrently with each other or with explosions on that object.
type Engine struct {
	factory *body.Factory
	tweens  Interpolator
	opts    Options
}

// NewEngine returns an engine that animates through tweens and spawns
// through factory.
func NewEngine(factory *body.Factory, tweens Interpolator, opts Options) *Engine {
	if opts.LevelsUp < 0 {
		opts.LevelsUp = 0
	}
	return &Engine{factory: factory, tweens: tweens, opts: opts}
}

// Activate heals b toward target, or toward the identity transform when
// no target is given.
func (e *Engine) Activate(ctx context.Context, b *body.Body, target *pmath.Transform) (Result, error) {
	to := pmath.TransformIdentity()
	if target != nil {
		to = *target
	} else {
		logger.Warn("heal without target transform, using identity", zap.String("body", b.Name))
	}
	return e.Heal(ctx, b, to)
}

// Heal gathers every live body under the ancestor of b, animates them to
// target, then replaces them with one body for the ancestor. Nothing is
// mutated when ctx is cancelled before the animations finish.
func (e *Engine) Heal(ctx context.Context, b *body.Body, target pmath.Transform) (Result, error) {
	if !b.Active() {
		return Result{}, ErrNotActive
	}
	start := time.Now()

	tree := b.Object.Tree
	ancestor := tree.Ancestor(b.Root, e.opts.LevelsUp)
	res := Result{Ancestor: ancestor}

	gathered := b.Object.Registry.CollectSubtree(ancestor)
	if len(gathered) == 0 || e.intact(b, ancestor, gathered) {
		instrumentHeal(outcomeUnchanged, len(gathered), start)
		return res, nil
	}
	res.Gathered = gathered

	g, gctx := errgroup.WithContext(ctx)
	for _, piece := range gathered {
		g.Go(func() error {
			return e.tweens.Tween(gctx, piece, target, e.opts.Duration)
		})
	}
	if err := g.Wait(); err != nil {
		instrumentHeal(outcomeAbandoned, len(gathered), start)
		return res, fmt.Errorf("healing node %d: %w", ancestor, err)
	}
	if err := ctx.Err(); err != nil {
		instrumentHeal(outcomeAbandoned, len(gathered), start)
		return res, fmt.Errorf("healing node %d: %w", ancestor, err)
	}

	live := b.Live
	live.Reset(ancestor)
	for _, piece := range gathered {
		e.factory.Deactivate(piece)
	}

	healed, err := e.factory.Spawn(body.Spec{
		Object:    b.Object,
		Live:      live,
		Root:      ancestor,
		Region:    tree.Node(ancestor).Region,
		Transform: target,
		Kind:      body.KindHealed,
	})
	if err != nil {
		instrumentHeal(outcomeFailed, len(gathered), start)
		return res, fmt.Errorf("healing node %d: %w", ancestor, err)
	}
	res.Healed = healed
	instrumentHeal(outcomeHealed, len(gathered), start)

	logger.Debug("body healed",
		zap.String("body", healed.Name),
		zap.Uint32("node", uint32(ancestor)),
		zap.Int("gathered", len(gathered)))
	return res, nil
}

// intact reports whether b alone already represents the whole, unbroken
// ancestor.
func (e *Engine) intact(b *body.Body, ancestor vst.NodeID, gathered []*body.Body) bool {
	return len(gathered) == 1 && gathered[0] == b &&
		b.Root == ancestor && !b.Live.ChildrenChanged(ancestor)
}

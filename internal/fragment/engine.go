// Package fragment breaks bodies apart: it detaches the tree nodes caught in
// a blast, emits them as small fragments and regroups what is left.
package fragment

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// Outcome summarises what an explosion did to a body.
type Outcome int

// Explosion outcomes.
const (
	OutcomeUnchanged Outcome = iota
	OutcomeFragmented
	OutcomeConsumed
	OutcomeDisintegrated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFragmented:
		return "fragmented"
	case OutcomeConsumed:
		return "consumed"
	case OutcomeDisintegrated:
		return "disintegrated"
	default:
		return "unchanged"
	}
}

// Blast is a spherical explosion reaching RelativeDepth levels below the
// root of each body it hits.
type Blast struct {
	Center        pmath.Vec3
	Radius        float32
	RelativeDepth int
}

// Report describes the result of exploding one body.
type Report struct {
	Body      *body.Body
	Outcome   Outcome
	Removed   []vst.NodeID
	Fragments []*body.Body
	Remainder []*body.Body
	Anomalies int
}

// Options configures an Engine.
type Options struct {
	ApplyImpulse     bool
	ImpulseStrength  float32
	Adjacent         Estimator
	PruneInterior    bool
	StrictInvariants bool
	Seed             uint64
	Shallow          Pass
	Deep             Pass
}

// Engine applies explosions to bodies. It is not safe for concurrent use on
// bodies of the same object.
type Engine struct {
	factory *body.Factory
	physics body.Physics
	effects body.Effects
	opts    Options
	rng     *rand.Rand
}

// NewEngine returns an engine spawning bodies through factory.
func NewEngine(factory *body.Factory, effects body.Effects, opts Options) *Engine {
	if opts.Adjacent == nil {
		opts.Adjacent = OverlapEstimator(DefaultGrowth)
	}
	return &Engine{
		factory: factory,
		physics: factory.Physics,
		effects: effects,
		opts:    opts,
		rng:     rand.New(rand.NewPCG(opts.Seed, opts.Seed^0xda3e39cb94b95bdb)),
	}
}

// Explode applies one blast to one body.
func (e *Engine) Explode(b *body.Body, blast Blast) (Report, error) {
	report := Report{Body: b}
	if !b.Active() {
		return report, ErrInactiveBody
	}
	if blast.RelativeDepth < 1 {
		return report, fmt.Errorf("%w: got %d", ErrInvalidDepth, blast.RelativeDepth)
	}
	start := time.Now()

	tree := b.Object.Tree
	live := b.Live
	root := b.Root
	depth := blast.RelativeDepth + tree.Node(root).Level

	if deepest, ok := live.DeepestEndpointLevel(root); !ok || depth > deepest {
		e.disintegrate(b)
		report.Outcome = OutcomeDisintegrated
		instrumentExplosion(report.Outcome, 0, start)
		return report, nil
	}

	removed, anomalies, err := e.selectNodes(b, depth, blast)
	report.Anomalies = anomalies
	if err != nil {
		return report, err
	}
	if len(removed) == 0 {
		instrumentExplosion(report.Outcome, 0, start)
		return report, nil
	}
	report.Removed = removed

	for _, id := range removed {
		live.Orphan(id)
		live.MarkAncestorsDirty(id)
	}

	at := b.Transform()
	for _, id := range removed {
		frag, err := e.factory.Spawn(body.Spec{
			Object:    b.Object,
			Live:      live,
			Root:      id,
			Region:    e.regionUnder(live, id),
			Transform: at,
			Kind:      body.KindFragment,
		})
		if err != nil {
			logger.Warn("fragment not spawned", zap.Uint32("node", uint32(id)), zap.Error(err))
			continue
		}
		if e.opts.ApplyImpulse {
			e.physics.ApplyImpulse(frag, e.randomDirection().Scale(e.opts.ImpulseStrength))
		}
		report.Fragments = append(report.Fragments, frag)
	}

	if live.LiveChildCount(root) == 0 {
		e.disintegrate(b)
		report.Outcome = OutcomeConsumed
		instrumentExplosion(report.Outcome, len(removed), start)
		return report, nil
	}

	if !live.ChildrenChanged(root) {
		report.Anomalies++
		if err := e.anomaly("clean root after removal", root); err != nil {
			return report, err
		}
		live.SetChildrenChanged(root, true)
	}

	remainder, ok := e.regroup(b, at)
	report.Remainder = remainder
	if !ok {
		report.Anomalies++
		if err := e.anomaly("dirty root without clean pieces", root); err != nil {
			return report, err
		}
	}

	e.factory.Deactivate(b)
	report.Outcome = OutcomeFragmented
	instrumentExplosion(report.Outcome, len(removed), start)

	logger.Debug("body fragmented",
		zap.String("body", b.Name),
		zap.Int("depth", depth),
		zap.Int("removed", len(removed)),
		zap.Int("fragments", len(report.Fragments)),
		zap.Int("remainder", len(report.Remainder)))
	return report, nil
}

// selectNodes returns the removable nodes at depth within the blast.
func (e *Engine) selectNodes(b *body.Body, depth int, blast Blast) ([]vst.NodeID, int, error) {
	tree := b.Object.Tree
	live := b.Live

	var removed []vst.NodeID
	anomalies := 0
	for _, id := range live.NodesAtLevel(b.Root, depth) {
		children := live.LiveChildCount(id)
		if tree.Node(id).EndPoint {
			if children > 0 {
				anomalies++
				if err := e.anomaly("endpoint with live children", id); err != nil {
					return nil, anomalies, err
				}
				continue
			}
		} else if children < 2 {
			// Fully removed, or already split below this depth.
			continue
		}

		if b.WorldCenter(id).Distance(blast.Center) < blast.Radius {
			removed = append(removed, id)
		}
	}
	return removed, anomalies, nil
}

// regroup clusters the surviving pieces and spawns one body per cluster. It
// reports false when there was nothing to regroup.
func (e *Engine) regroup(b *body.Body, at pmath.Transform) ([]*body.Body, bool) {
	tree := b.Object.Tree
	live := b.Live
	root := b.Root

	clean := live.DeepestClean(root)
	if len(clean) == 0 {
		return nil, false
	}

	groups := Cluster(clean, func(id vst.NodeID) mesh.AABB {
		return tree.Node(id).Region.Bounds()
	}, e.opts.Adjacent)

	var out []*body.Body
	for gi := range groups {
		others := make(map[vst.NodeID]struct{})
		for gj, g := range groups {
			if gj == gi {
				continue
			}
			for _, id := range g {
				others[id] = struct{}{}
			}
		}

		copied := live.CopySubtree(root)
		copied.OrphanAll(root, others)

		rb, err := e.factory.Spawn(body.Spec{
			Object:    b.Object,
			Live:      copied,
			Root:      root,
			Region:    e.regionUnder(copied, root),
			Transform: at,
			Kind:      body.KindRemainder,
			Name:      fmt.Sprintf("%s_part_%d", b.Name, gi),
		})
		if err != nil {
			logger.Warn("remainder not spawned", zap.Int("group", gi), zap.Error(err))
			continue
		}
		out = append(out, rb)
	}
	return out, true
}

// regionUnder returns the node's own region, or the union of its deepest
// clean pieces when the region is stale.
func (e *Engine) regionUnder(live *vst.Live, id vst.NodeID) *mesh.Region {
	tree := live.Tree()
	if !live.ChildrenChanged(id) {
		return tree.Node(id).Region
	}

	var parts []*mesh.Region
	for _, n := range live.DeepestClean(id) {
		parts = append(parts, tree.Node(n).Region)
	}
	combined := mesh.Combine(parts...)
	if e.opts.PruneInterior {
		combined = mesh.PruneInterior(combined)
	}
	return combined
}

func (e *Engine) disintegrate(b *body.Body) {
	if e.effects != nil {
		e.effects.Disintegrate(b)
	}
	e.factory.Deactivate(b)
}

// anomaly reports a broken tree state. In strict mode it becomes an error.
func (e *Engine) anomaly(what string, id vst.NodeID) error {
	instrumentAnomaly(what)
	if e.opts.StrictInvariants {
		return fmt.Errorf("%w: %s at node %d", ErrInvariant, what, id)
	}
	logger.Warn("repairing subdivision tree", zap.String("anomaly", what), zap.Uint32("node", uint32(id)))
	return nil
}

func (e *Engine) randomDirection() pmath.Vec3 {
	return pmath.Vec3{
		X: e.rng.Float32() - 0.5,
		Y: e.rng.Float32() - 0.5,
		Z: e.rng.Float32() - 0.5,
	}.Normalize()
}

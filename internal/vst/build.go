package vst

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// MaxHeight bounds the tree height so the id space fits the arena.
const MaxHeight = 20

// BuildOptions configures tree construction.
type BuildOptions struct {
	Height   int
	Seed     uint64
	MaxTries int
	Split    mesh.SplitOptions
}

// Build subdivides root Height times. Nodes whose sampling or bisection
// fails stay leaves and are flagged as endpoints. The root region is
// validated first; nothing is built if it is malformed.
func Build(root *mesh.Region, opts BuildOptions) (*Tree, error) {
	if opts.Height < 0 || opts.Height > MaxHeight {
		return nil, fmt.Errorf("vst: height %d out of range [0, %d]", opts.Height, MaxHeight)
	}
	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("vst: invalid root region: %w", err)
	}
	start := time.Now()

	t := newTree(opts.Height)
	sampler := NewSampler(opts.Seed, opts.MaxTries)

	t.insert(&Node{ID: RootID, Region: root, EndPoint: opts.Height == 0})
	instrumentNodeBuilt()

	frontier := []NodeID{RootID}
	for pass := 0; pass < opts.Height; pass++ {
		last := pass == opts.Height-1
		var next []NodeID
		for _, id := range frontier {
			left, right, ok := subdivide(t, sampler, id, last, opts.Split)
			if !ok {
				continue
			}
			next = append(next, left, right)
		}
		frontier = next
	}

	// Every structural leaf must be an endpoint, including failed nodes.
	for _, id := range t.Leaves() {
		t.nodes[id].EndPoint = true
	}

	t.primary = t.NewLive()
	vstBuildLatency.Observe(time.Since(start).Seconds())

	logger.Debug("subdivision tree built",
		zap.Int("height", opts.Height),
		zap.Int("nodes", t.Len()),
		zap.Int("endpoints", len(t.EndPoints())),
		zap.Duration("took", time.Since(start)))
	return t, nil
}

func subdivide(t *Tree, sampler *Sampler, id NodeID, last bool, opts mesh.SplitOptions) (NodeID, NodeID, bool) {
	node := t.nodes[id]

	sites, err := sampler.Sites(node.Region)
	if err != nil {
		logger.Warn("leaving node unsplit", zap.Uint32("node", uint32(id)), zap.Error(err))
		instrumentSplitFailure("sampling")
		return NoNode, NoNode, false
	}
	node.Sites = sites

	left, right, err := mesh.Bisect(node.Region, sites, opts)
	if err != nil {
		logger.Warn("leaving node unsplit", zap.Uint32("node", uint32(id)), zap.Error(err))
		instrumentSplitFailure("bisect")
		return NoNode, NoNode, false
	}

	t.insert(&Node{
		ID:         id.Left(),
		Level:      node.Level + 1,
		Laterality: LateralityLeft,
		Region:     left,
		EndPoint:   last,
	})
	t.insert(&Node{
		ID:         id.Right(),
		Level:      node.Level + 1,
		Laterality: LateralityRight,
		Region:     right,
		EndPoint:   last,
	})
	instrumentNodeBuilt()
	instrumentNodeBuilt()
	return id.Left(), id.Right(), true
}

package fragment

import (
	"fmt"

	"github.com/Faultbox/shatter/internal/vst"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// DefaultGrowth pads bounding boxes before the overlap test.
const DefaultGrowth = 0.05

// Estimator guesses whether two pieces touch from their bounds.
type Estimator func(a, b mesh.AABB) bool

// OverlapEstimator treats pieces as adjacent when their grown boxes intersect.
func OverlapEstimator(growth float32) Estimator {
	return func(a, b mesh.AABB) bool {
		return a.Grow(growth).Intersects(b.Grow(growth))
	}
}

// CenterEstimator treats pieces as adjacent when their centres are no
// further apart than half their largest extents combined.
func CenterEstimator() Estimator {
	return func(a, b mesh.AABB) bool {
		return a.Center().Distance(b.Center()) <= a.MaxExtent()/2+b.MaxExtent()/2
	}
}

// EstimatorByName returns the estimator configured as "overlap" or "center".
func EstimatorByName(name string, growth float32) (Estimator, error) {
	switch name {
	case "", "overlap":
		return OverlapEstimator(growth), nil
	case "center":
		return CenterEstimator(), nil
	default:
		return nil, fmt.Errorf("unknown adjacency estimator %q", name)
	}
}

// Cluster groups nodes in one greedy pass. A node joins every group holding
// a piece it is estimated to touch, merging those groups; otherwise it starts
// a new group.
func Cluster(ids []vst.NodeID, bounds func(vst.NodeID) mesh.AABB, adjacent Estimator) [][]vst.NodeID {
	var groups [][]vst.NodeID
	boxes := make(map[vst.NodeID]mesh.AABB, len(ids))

	for _, id := range ids {
		box := bounds(id)
		boxes[id] = box

		var hits []int
		for gi, group := range groups {
			for _, member := range group {
				if adjacent(box, boxes[member]) {
					hits = append(hits, gi)
					break
				}
			}
		}

		if len(hits) == 0 {
			groups = append(groups, []vst.NodeID{id})
			continue
		}

		first := hits[0]
		for i := len(hits) - 1; i > 0; i-- {
			gi := hits[i]
			groups[first] = append(groups[first], groups[gi]...)
			groups = append(groups[:gi], groups[gi+1:]...)
		}
		groups[first] = append(groups[first], id)
	}
	return groups
}

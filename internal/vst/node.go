// Package vst implements the Voronoi subdivision tree: an arena of
// immutable nodes holding mesh regions, a write-once structure table
// recording how the tree was built, and mutable live tables recording which
// parts are still attached.
package vst

import (
	"math/bits"

	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// NodeID is a heap index: the root is 1, children of n are 2n and 2n+1.
type NodeID uint32

// NoNode marks a null link.
const NoNode NodeID = 0

// RootID is the id of the whole object.
const RootID NodeID = 1

// Left returns the id of the left child slot.
func (id NodeID) Left() NodeID { return 2 * id }

// Right returns the id of the right child slot.
func (id NodeID) Right() NodeID { return 2*id + 1 }

// Parent returns the id of the parent slot, NoNode for the root.
func (id NodeID) Parent() NodeID { return id / 2 }

// Level returns the depth of the id below the root.
func (id NodeID) Level() int {
	return bits.Len32(uint32(id)) - 1
}

// Laterality tells which side of its parent a node hangs on.
type Laterality uint8

// Laterality values.
const (
	LateralityNone Laterality = iota
	LateralityLeft
	LateralityRight
)

func (l Laterality) String() string {
	switch l {
	case LateralityLeft:
		return "left"
	case LateralityRight:
		return "right"
	default:
		return "none"
	}
}

// Node is one piece of the subdivided object. All fields are fixed once the
// tree is built.
type Node struct {
	ID         NodeID
	Level      int
	Laterality Laterality
	Region     *mesh.Region
	EndPoint   bool
	Sites      []pmath.Vec3
}

// links holds the three tree pointers of one node.
type links struct {
	left, right, parent NodeID
}

func (l links) childCount() int {
	n := 0
	if l.left != NoNode {
		n++
	}
	if l.right != NoNode {
		n++
	}
	return n
}

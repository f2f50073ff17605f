package vst

// Live is the mutable view of which nodes are still attached, plus the
// dirty flags. Bodies built from the same explosion share one table; a body
// split off into its own group gets a copy.
type Live struct {
	tree  *Tree
	links []links
	dirty []bool
}

// Tree returns the tree this table describes.
func (l *Live) Tree() *Tree {
	return l.tree
}

func (l *Live) valid(id NodeID) bool {
	return l.tree.valid(id)
}

// Left returns the live left child.
func (l *Live) Left(id NodeID) NodeID {
	if !l.valid(id) {
		return NoNode
	}
	return l.links[id].left
}

// Right returns the live right child.
func (l *Live) Right(id NodeID) NodeID {
	if !l.valid(id) {
		return NoNode
	}
	return l.links[id].right
}

// Parent returns the live parent.
func (l *Live) Parent(id NodeID) NodeID {
	if !l.valid(id) {
		return NoNode
	}
	return l.links[id].parent
}

// Children returns the live children, left first.
func (l *Live) Children(id NodeID) []NodeID {
	if !l.valid(id) {
		return nil
	}
	var out []NodeID
	if c := l.links[id].left; c != NoNode {
		out = append(out, c)
	}
	if c := l.links[id].right; c != NoNode {
		out = append(out, c)
	}
	return out
}

// LiveChildCount returns how many children are still attached.
func (l *Live) LiveChildCount(id NodeID) int {
	if !l.valid(id) {
		return 0
	}
	return l.links[id].childCount()
}

// ChildrenChanged reports whether the node's region is stale.
func (l *Live) ChildrenChanged(id NodeID) bool {
	return l.valid(id) && l.dirty[id]
}

// SetChildrenChanged forces the dirty flag. Used to repair anomalies.
func (l *Live) SetChildrenChanged(id NodeID, v bool) {
	if l.valid(id) {
		l.dirty[id] = v
	}
}

// Orphan detaches id from its live parent. A parent left with no children
// is orphaned in turn. The node keeps its own parent link so that ancestors
// can still be reached from it.
func (l *Live) Orphan(id NodeID) {
	parent := l.Parent(id)
	if parent == NoNode {
		return
	}
	if l.tree.nodes[id].Laterality == LateralityLeft {
		l.links[parent].left = NoNode
	} else {
		l.links[parent].right = NoNode
	}
	if l.links[parent].childCount() == 0 {
		l.Orphan(parent)
	}
}

// MarkAncestorsDirty sets the dirty flag on every live ancestor of id.
func (l *Live) MarkAncestorsDirty(id NodeID) {
	for p := l.Parent(id); p != NoNode; p = l.links[p].parent {
		l.dirty[p] = true
	}
}

// Detach clears the parent link of id, making it the root of its own body.
func (l *Live) Detach(id NodeID) {
	if l.valid(id) {
		l.links[id].parent = NoNode
	}
}

// Reset restores the permanent links of id and its descendants and clears
// their dirty flags.
func (l *Live) Reset(id NodeID) {
	for _, n := range l.tree.Subtree(id) {
		l.links[n] = l.tree.structure[n]
		l.dirty[n] = false
	}
}

// CopySubtree returns a new table holding only the state of id's subtree,
// with id as a parentless root.
func (l *Live) CopySubtree(id NodeID) *Live {
	c := &Live{
		tree:  l.tree,
		links: make([]links, len(l.links)),
		dirty: make([]bool, len(l.dirty)),
	}
	for _, n := range l.tree.Subtree(id) {
		c.links[n] = l.links[n]
		c.dirty[n] = l.dirty[n]
	}
	c.Detach(id)
	return c
}

// Walk visits id and its live descendants in pre-order. Returning false from
// fn skips the node's children.
func (l *Live) Walk(id NodeID, fn func(NodeID) bool) {
	if !l.valid(id) || !fn(id) {
		return
	}
	// Read both links first; fn may orphan children.
	left, right := l.links[id].left, l.links[id].right
	if left != NoNode {
		l.Walk(left, fn)
	}
	if right != NoNode {
		l.Walk(right, fn)
	}
}

// NodesAtLevel returns the live descendants of root at the given level.
func (l *Live) NodesAtLevel(root NodeID, level int) []NodeID {
	var out []NodeID
	l.Walk(root, func(n NodeID) bool {
		if l.tree.nodes[n].Level == level {
			out = append(out, n)
			return false
		}
		return l.tree.nodes[n].Level < level
	})
	return out
}

// DeepestEndpointLevel returns the deepest level of an endpoint reachable
// from root through live links.
func (l *Live) DeepestEndpointLevel(root NodeID) (int, bool) {
	deepest, found := -1, false
	l.Walk(root, func(n NodeID) bool {
		node := l.tree.nodes[n]
		if node.EndPoint {
			found = true
			if node.Level > deepest {
				deepest = node.Level
			}
			return false
		}
		return true
	})
	return deepest, found
}

// DeepestClean returns the shallowest live nodes under root whose regions
// are still accurate: clean nodes and endpoints.
func (l *Live) DeepestClean(root NodeID) []NodeID {
	var out []NodeID
	l.Walk(root, func(n NodeID) bool {
		if !l.dirty[n] || l.tree.nodes[n].EndPoint {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// OrphanAll orphans every live node under root whose id is in ids, marking
// its ancestors dirty. Matching nodes are not descended into.
func (l *Live) OrphanAll(root NodeID, ids map[NodeID]struct{}) {
	l.Walk(root, func(n NodeID) bool {
		if _, ok := ids[n]; ok {
			l.Orphan(n)
			l.MarkAncestorsDirty(n)
			return false
		}
		return true
	})
}

package vst

import "fmt"

// Tree is the node arena plus the permanent structure table. Only the build
// step writes to it.
type Tree struct {
	nodes     []*Node
	structure []links
	height    int
	primary   *Live
}

func newTree(height int) *Tree {
	size := 1 << (height + 1)
	return &Tree{
		nodes:     make([]*Node, size),
		structure: make([]links, size),
		height:    height,
	}
}

// insert adds a node and its permanent links. Ids are write-once.
func (t *Tree) insert(n *Node) {
	if t.nodes[n.ID] != nil {
		panic(fmt.Sprintf("vst: node %d inserted twice", n.ID))
	}
	t.nodes[n.ID] = n
	if n.ID == RootID {
		return
	}
	parent := n.ID.Parent()
	t.structure[n.ID].parent = parent
	if n.Laterality == LateralityLeft {
		t.structure[parent].left = n.ID
	} else {
		t.structure[parent].right = n.ID
	}
}

func (t *Tree) valid(id NodeID) bool {
	return id != NoNode && int(id) < len(t.nodes) && t.nodes[id] != nil
}

// Node returns the node with the given id, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return t.nodes[id]
}

// Root returns the node covering the whole object.
func (t *Tree) Root() *Node {
	return t.nodes[RootID]
}

// Height returns the configured subdivision height.
func (t *Tree) Height() int {
	return t.height
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	n := 0
	for _, node := range t.nodes {
		if node != nil {
			n++
		}
	}
	return n
}

// Capacity returns one past the largest id the tree can hold.
func (t *Tree) Capacity() int {
	return len(t.nodes)
}

// PermanentLeft returns the left child as built.
func (t *Tree) PermanentLeft(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.structure[id].left
}

// PermanentRight returns the right child as built.
func (t *Tree) PermanentRight(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.structure[id].right
}

// PermanentParent returns the parent as built.
func (t *Tree) PermanentParent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.structure[id].parent
}

// Ancestor walks up to levels permanent parents from id, stopping at the root.
func (t *Tree) Ancestor(id NodeID, levels int) NodeID {
	for ; levels > 0; levels-- {
		p := t.PermanentParent(id)
		if p == NoNode {
			break
		}
		id = p
	}
	return id
}

// Subtree returns id and every permanent descendant in pre-order.
func (t *Tree) Subtree(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		out = append(out, n)
		if l := t.structure[n].left; l != NoNode {
			walk(l)
		}
		if r := t.structure[n].right; r != NoNode {
			walk(r)
		}
	}
	walk(id)
	return out
}

// Leaves returns the nodes without permanent children.
func (t *Tree) Leaves() []NodeID {
	var out []NodeID
	for id, n := range t.nodes {
		if n != nil && t.structure[id].childCount() == 0 {
			out = append(out, NodeID(id))
		}
	}
	return out
}

// EndPoints returns the nodes flagged as endpoints.
func (t *Tree) EndPoints() []NodeID {
	var out []NodeID
	for id, n := range t.nodes {
		if n != nil && n.EndPoint {
			out = append(out, NodeID(id))
		}
	}
	return out
}

// Primary returns the live table the object starts with.
func (t *Tree) Primary() *Live {
	return t.primary
}

// NewLive returns a live table matching the permanent structure.
func (t *Tree) NewLive() *Live {
	l := &Live{
		tree:  t,
		links: make([]links, len(t.structure)),
		dirty: make([]bool, len(t.structure)),
	}
	copy(l.links, t.structure)
	return l
}

// Package registry maps subdivision tree positions to the bodies currently
// representing them.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Faultbox/shatter/internal/vst"
)

// ErrUnknownNode is returned when registering against an id the tree does not have.
var ErrUnknownNode = errors.New("unknown tree node")

// Entry is anything that sits at one tree position.
type Entry interface {
	comparable
	NodeID() vst.NodeID
}

// Registry is a shadow of the tree, one slot per id, holding the live
// entries for that id.
type Registry[T Entry] struct {
	mu    sync.Mutex
	tree  *vst.Tree
	slots [][]T
}

// New builds a registry covering every id of tree.
func New[T Entry](tree *vst.Tree) *Registry[T] {
	return &Registry[T]{
		tree:  tree,
		slots: make([][]T, tree.Capacity()),
	}
}

// Register adds v at its node id.
func (r *Registry[T]) Register(v T) error {
	id := v.NodeID()
	if r.tree.Node(id) == nil {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = append(r.slots[id], v)
	return nil
}

// Unregister removes v. It reports whether v was registered.
func (r *Registry[T]) Unregister(v T) bool {
	id := v.NodeID()
	if r.tree.Node(id) == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.slots[id], v)
	if i < 0 {
		return false
	}
	r.slots[id] = slices.Delete(r.slots[id], i, i+1)
	return true
}

// At returns the entries registered at id.
func (r *Registry[T]) At(id vst.NodeID) []T {
	if r.tree.Node(id) == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.slots[id])
}

// CollectSubtree returns the entries at id and every descendant id.
func (r *Registry[T]) CollectSubtree(id vst.NodeID) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []T
	var walk func(vst.NodeID)
	walk = func(n vst.NodeID) {
		if int(n) >= len(r.slots) {
			return
		}
		out = append(out, r.slots[n]...)
		walk(n.Left())
		walk(n.Right())
	}
	if id != vst.NoNode {
		walk(id)
	}
	return out
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.slots {
		n += len(s)
	}
	return n
}

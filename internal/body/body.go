// Package body defines the live instances created from subdivision tree
// nodes and the collaborators that host them.
package body

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Faultbox/shatter/internal/registry"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// Kind records why a body was created.
type Kind string

// Body kinds.
const (
	KindInitial   Kind = "initial"
	KindFragment  Kind = "fragment"
	KindRemainder Kind = "remainder"
	KindHealed    Kind = "healed"
)

// Object is one destructible thing: its tree, the registry of bodies that
// currently show it, and the physical properties shared by every piece.
type Object struct {
	Name     string
	Tree     *vst.Tree
	Registry *registry.Registry[*Body]
	Surfaces *mesh.SurfaceRegistry
	Density  float32
}

// NewObject wraps a built tree.
func NewObject(name string, tree *vst.Tree, density float32) *Object {
	return &Object{
		Name:     name,
		Tree:     tree,
		Registry: registry.New[*Body](tree),
		Surfaces: mesh.NewSurfaceRegistry(tree.Root().Region),
		Density:  density,
	}
}

// Body is a piece of an object currently present in the simulation. Its
// region is a private copy in object-local coordinates.
type Body struct {
	ID     uuid.UUID
	Name   string
	Kind   Kind
	Object *Object
	Live   *vst.Live
	Root   vst.NodeID
	Region *mesh.Region
	Mass   float32

	mu        sync.RWMutex
	transform pmath.Transform
	active    bool
}

// NodeID returns the tree position the body stands for.
func (b *Body) NodeID() vst.NodeID {
	return b.Root
}

// Node returns the tree node the body stands for.
func (b *Body) Node() *vst.Node {
	return b.Object.Tree.Node(b.Root)
}

// Transform returns the body's world transform.
func (b *Body) Transform() pmath.Transform {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.transform
}

// SetTransform moves the body.
func (b *Body) SetTransform(t pmath.Transform) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transform = t
}

// Active reports whether the body is still in the simulation.
func (b *Body) Active() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.active
}

// WorldCenter returns the centre of a node's bounds in world space, placed
// by this body's transform.
func (b *Body) WorldCenter(id vst.NodeID) pmath.Vec3 {
	return b.Transform().Apply(b.Object.Tree.Node(id).Region.Bounds().Center())
}

// LocalPoint maps a world-space point into the body's mesh space.
func (b *Body) LocalPoint(p pmath.Vec3) pmath.Vec3 {
	return b.Transform().Matrix().Inverse().TransformVec3(p)
}

// Contains reports whether the world-space point lies inside the body.
func (b *Body) Contains(p pmath.Vec3) bool {
	return b.Region.Contains(b.LocalPoint(p), pmath.Up)
}

// Surfaces classifies each face of the body's region for texturing.
func (b *Body) Surfaces() []int {
	return b.Object.Surfaces.Assign(b.Region)
}

package body

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/shatter/internal/logger"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

// DefaultMinMass keeps tiny fragments simulable.
const DefaultMinMass = 0.01

// Factory creates and retires bodies against the host collaborators.
type Factory struct {
	Physics Physics
	Scene   Scene
	MinMass float32
}

// Spec describes a body to create.
type Spec struct {
	Object    *Object
	Live      *vst.Live
	Root      vst.NodeID
	Region    *mesh.Region
	Transform pmath.Transform
	Kind      Kind
	Name      string
}

// Spawn creates a body rooted at spec.Root. The root loses its live parent
// link: the new body is a tree of its own from now on.
func (f *Factory) Spawn(spec Spec) (*Body, error) {
	if spec.Region.IsEmpty() {
		return nil, fmt.Errorf("spawning node %d: %w", spec.Root, mesh.ErrEmptyRegion)
	}
	minMass := f.MinMass
	if minMass <= 0 {
		minMass = DefaultMinMass
	}

	spec.Live.Detach(spec.Root)

	b := &Body{
		ID:        uuid.New(),
		Name:      spec.Name,
		Kind:      spec.Kind,
		Object:    spec.Object,
		Live:      spec.Live,
		Root:      spec.Root,
		Region:    spec.Region.Clone(),
		Mass:      MassFor(spec.Region, spec.Object.Density, minMass),
		transform: spec.Transform,
		active:    true,
	}
	if b.Name == "" {
		b.Name = fmt.Sprintf("%s_%s_%d", spec.Object.Name, spec.Kind, spec.Root)
	}

	if err := f.Physics.AddBody(b); err != nil {
		return nil, fmt.Errorf("spawning node %d: %w", spec.Root, err)
	}
	f.Scene.Attach(b)
	if err := spec.Object.Registry.Register(b); err != nil {
		f.Scene.Detach(b)
		f.Physics.RemoveBody(b)
		return nil, fmt.Errorf("spawning node %d: %w", spec.Root, err)
	}

	instrumentSpawn(spec.Kind)
	logger.Debug("body spawned",
		zap.String("body", b.Name),
		zap.Stringer("id", b.ID),
		zap.Uint32("node", uint32(b.Root)),
		zap.Int("cut_faces", b.Region.CutCount()),
		zap.Float32("mass", b.Mass))
	return b, nil
}

// SpawnRoot creates the first body of an object from its whole region.
func (f *Factory) SpawnRoot(obj *Object, at pmath.Transform) (*Body, error) {
	return f.Spawn(Spec{
		Object:    obj,
		Live:      obj.Tree.Primary(),
		Root:      vst.RootID,
		Region:    obj.Tree.Root().Region,
		Transform: at,
		Kind:      KindInitial,
		Name:      obj.Name,
	})
}

// Deactivate removes a body from the simulation and the registry. It is a
// no-op for inactive bodies.
func (f *Factory) Deactivate(b *Body) {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return
	}
	b.active = false
	b.mu.Unlock()

	b.Object.Registry.Unregister(b)
	f.Scene.Detach(b)
	f.Physics.RemoveBody(b)

	instrumentDeactivate(b.Kind)
	logger.Debug("body deactivated", zap.String("body", b.Name), zap.Uint32("node", uint32(b.Root)))
}

package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/shatter/internal/body"
	"github.com/Faultbox/shatter/internal/fragment"
	"github.com/Faultbox/shatter/internal/heal"
	"github.com/Faultbox/shatter/internal/vst"
	pmath "github.com/Faultbox/shatter/pkg/math"
	"github.com/Faultbox/shatter/pkg/mesh"
)

const dt = 16 * time.Millisecond

type scene struct {
	world   *World
	factory *body.Factory
	object  *body.Object
	root    *body.Body
}

func newScene(t *testing.T, height int) *scene {
	t.Helper()
	return newSeededScene(t, height, 3)
}

func newSeededScene(t *testing.T, height int, seed uint64) *scene {
	t.Helper()
	tree, err := vst.Build(mesh.Box(pmath.Vec3{X: 2, Y: 2, Z: 2}, 0), vst.BuildOptions{Height: height, Seed: seed})
	require.NoError(t, err)

	w := NewWorld(0.5)
	f := &body.Factory{Physics: w, Scene: w}
	obj := body.NewObject("crate", tree, 1)
	root, err := f.SpawnRoot(obj, pmath.TransformIdentity())
	require.NoError(t, err)
	return &scene{world: w, factory: f, object: obj, root: root}
}

// newSplitScene returns a height 2 scene whose first split leaves the two
// halves with distinct bounds centres. A split through the middle of the
// box can give both halves the same centre, and then no blast can tell
// them apart.
func newSplitScene(t *testing.T) *scene {
	t.Helper()
	for seed := uint64(1); seed <= 64; seed++ {
		s := newSeededScene(t, 2, seed)
		if s.root.WorldCenter(2).Distance(s.root.WorldCenter(3)) > 0.1 {
			return s
		}
	}
	t.Fatal("no seed splits the box off-centre")
	return nil
}

func TestWorldBodies(t *testing.T) {
	s := newScene(t, 1)

	assert.ErrorIs(t, s.world.AddBody(s.root), ErrDuplicateBody)
	assert.ErrorIs(t, s.world.AddBody(&body.Body{Name: "ghost"}), ErrNoMass)
	assert.Equal(t, []*body.Body{s.root}, s.world.Visible())

	assert.Equal(t, []*body.Body{s.root}, s.world.Overlapping(pmath.Vec3{X: 1.5}, 0.6))
	assert.Empty(t, s.world.Overlapping(pmath.Vec3{X: 1.5}, 0.4))

	surfaces := s.world.Surfaces(s.root)
	require.Len(t, surfaces, s.root.Region.Len())
	for i, slot := range surfaces {
		assert.NotEqual(t, mesh.Interior, slot, "face %d of the uncut box", i)
	}

	s.factory.Deactivate(s.root)
	assert.Empty(t, s.world.Bodies())
	assert.Empty(t, s.world.Visible())
}

func TestWorldImpulse(t *testing.T) {
	s := newScene(t, 1)
	w := s.world

	w.ApplyImpulse(s.root, pmath.Vec3{X: s.root.Mass})
	assert.InDelta(t, 1, w.Velocity(s.root).X, 1e-5)

	w.Tick(time.Second / 2)
	assert.InDelta(t, 0.5, s.root.Transform().Position.X, 1e-5)
	assert.InDelta(t, 0.75, w.Velocity(s.root).X, 1e-5)
}

func TestWorldTween(t *testing.T) {
	s := newScene(t, 1)
	w := s.world
	target := pmath.TransformAt(pmath.Vec3{Y: 4})

	done := make(chan error, 1)
	go func() {
		done <- w.Tween(context.Background(), s.root, target, 4*dt)
	}()
	require.Eventually(t, func() bool { return w.Animating() == 1 }, time.Second, time.Millisecond)

	w.Tick(2 * dt)
	assert.InDelta(t, 2, s.root.Transform().Position.Y, 1e-4)
	w.Tick(2 * dt)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tween did not finish")
	}
	assert.Equal(t, target, s.root.Transform())
	assert.Zero(t, w.Animating())
}

func TestWorldTweenCancelled(t *testing.T) {
	s := newScene(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.world.Tween(ctx, s.root, pmath.TransformAt(pmath.Vec3{Y: 4}), time.Second)
	}()
	require.Eventually(t, func() bool { return s.world.Animating() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Zero(t, s.world.Animating())
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		want    Action
		wantErr bool
	}{
		{"fragment", ActionFragment, false},
		{"unfragment", ActionUnfragment, false},
		{"jump", ActionNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.name, got.String())
		})
	}
}

// newHost wires a host whose shallow pass takes node 2 off the root when
// aimed at its centre, and whose deep pass changes nothing.
func newHost(t *testing.T, s *scene) *Host {
	t.Helper()
	c2, c3 := s.root.WorldCenter(2), s.root.WorldCenter(3)

	frag := fragment.NewEngine(s.factory, s.world, fragment.Options{
		Shallow: fragment.Pass{Radius: c2.Distance(c3) / 2, Depth: 1},
		Deep:    fragment.Pass{Radius: 0, Depth: 1},
	})
	h := heal.NewEngine(s.factory, s.world, heal.Options{LevelsUp: 1, Duration: 3 * dt})
	return NewHost(s.world, frag, h)
}

// breakOff detonates at node 2 and completes the detonation. It returns
// the fragment for node 2 and the remainder standing for the root.
func breakOff(t *testing.T, s *scene, host *Host) (*body.Body, *body.Body) {
	t.Helper()
	require.NoError(t, host.Handle(context.Background(), Event{Action: ActionFragment, Point: s.root.WorldCenter(2)}))
	require.False(t, s.root.Active(), "detonation left the root intact")
	require.NoError(t, host.Step(dt))

	frags := s.object.Registry.At(2)
	require.Len(t, frags, 1)
	rest := s.object.Registry.At(vst.RootID)
	require.Len(t, rest, 1)
	require.Len(t, s.world.Visible(), 2)
	return frags[0], rest[0]
}

func settle(t *testing.T, host *Host) {
	t.Helper()
	for i := 0; i < 500 && host.Healing() > 0; i++ {
		require.NoError(t, host.Step(dt))
		time.Sleep(time.Millisecond)
	}
	require.NoError(t, host.Wait())
}

func TestHostFragmentAndHeal(t *testing.T) {
	s := newSplitScene(t)
	host := newHost(t, s)
	ctx := context.Background()

	frag, _ := breakOff(t, s, host)

	target := pmath.TransformAt(pmath.Vec3{Z: 1})
	require.NoError(t, host.Handle(ctx, Event{Action: ActionUnfragment, Body: frag, Target: &target}))
	assert.ErrorIs(t, host.Handle(ctx, Event{Action: ActionFragment}), ErrBusy)
	settle(t, host)

	healed := host.Healed()
	require.Len(t, healed, 1)
	require.NotNil(t, healed[0].Healed)
	assert.Equal(t, vst.RootID, healed[0].Healed.NodeID())
	assert.Equal(t, target, healed[0].Healed.Transform())
	assert.Equal(t, []*body.Body{healed[0].Healed}, s.world.Visible())
	assert.Equal(t, 1, s.object.Registry.Len())
}

func TestHostUnfragmentNearest(t *testing.T) {
	s := newSplitScene(t)
	host := newHost(t, s)
	ctx := context.Background()

	require.NoError(t, host.Handle(ctx, Event{Action: ActionFragment, Point: s.root.WorldCenter(2)}))
	assert.ErrorIs(t, host.Handle(ctx, Event{Action: ActionUnfragment}), ErrBusy)
	require.NoError(t, host.Step(dt))

	require.NoError(t, host.Handle(ctx, Event{Action: ActionUnfragment, Point: s.object.Tree.Node(2).Region.Bounds().Center()}))
	settle(t, host)
	assert.Equal(t, 1, s.object.Registry.Len())
}

func TestHostOneHealPerObject(t *testing.T) {
	s := newSplitScene(t)
	host := newHost(t, s)
	ctx := context.Background()

	frag, rest := breakOff(t, s, host)
	require.NoError(t, host.Handle(ctx, Event{Action: ActionUnfragment, Body: frag}))
	assert.ErrorIs(t, host.Handle(ctx, Event{Action: ActionUnfragment, Body: rest}), ErrBusy)
	assert.Equal(t, 1, host.Healing())

	settle(t, host)
	require.Len(t, host.Healed(), 1)
	assert.Equal(t, 1, s.object.Registry.Len())
	assert.Len(t, s.world.Visible(), 1)

}

func TestHostHealsObjectsIndependently(t *testing.T) {
	s := newSplitScene(t)
	host := newHost(t, s)
	ctx := context.Background()

	frag, _ := breakOff(t, s, host)

	tree, err := vst.Build(mesh.Box(pmath.Vec3{X: 1, Y: 1, Z: 1}, 0), vst.BuildOptions{Height: 1, Seed: 3})
	require.NoError(t, err)
	barrel, err := s.factory.SpawnRoot(body.NewObject("barrel", tree, 1), pmath.TransformAt(pmath.Vec3{X: 10}))
	require.NoError(t, err)

	require.NoError(t, host.Handle(ctx, Event{Action: ActionUnfragment, Body: frag}))
	assert.NoError(t, host.Handle(ctx, Event{Action: ActionUnfragment, Body: barrel}))

	settle(t, host)
	assert.Len(t, host.Healed(), 2)
	assert.Equal(t, 1, s.object.Registry.Len())
	assert.True(t, barrel.Active())
}

func TestHostNothingToHeal(t *testing.T) {
	s := newScene(t, 1)
	host := newHost(t, s)
	s.factory.Deactivate(s.root)

	assert.ErrorIs(t, host.Handle(context.Background(), Event{Action: ActionUnfragment}), ErrNoTarget)
	assert.Error(t, host.Handle(context.Background(), Event{}))
}

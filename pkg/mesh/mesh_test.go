package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/chewxy/math32"

	pmath "github.com/Faultbox/shatter/pkg/math"
)

func unitBox() *Region {
	return Box(pmath.Vec3{X: 2, Y: 2, Z: 2}, DefaultTextureScale)
}

func cutArea(r *Region) float64 {
	var sum float64
	for _, t := range r.Triangles {
		if t.Cut {
			sum += t.Area()
		}
	}
	return sum
}

func TestBoxIsClosed(t *testing.T) {
	box := unitBox()

	if box.Len() != 12 {
		t.Fatalf("expected 12 faces, got %d", box.Len())
	}
	if err := box.Validate(); err != nil {
		t.Fatalf("box should validate: %v", err)
	}
	if got := box.Area(); math.Abs(got-24) > 1e-6 {
		t.Errorf("Area() = %v, want 24", got)
	}
	if got := box.Volume(); math.Abs(got-8) > 1e-6 {
		t.Errorf("Volume() = %v, want 8", got)
	}
	for i, tri := range box.Triangles {
		// Outward faces point away from the centre.
		if tri.Normal.Dot(tri.Center()) <= 0 {
			t.Errorf("face %d normal %v points inward", i, tri.Normal)
		}
	}
}

func TestSplitConserves(t *testing.T) {
	tests := []struct {
		name string
		a, b pmath.Vec3
	}{
		{"axis aligned", pmath.Vec3{X: -0.5, Y: 0.01, Z: 0.02}, pmath.Vec3{X: 0.9, Y: 0.01, Z: 0.02}},
		{"oblique", pmath.Vec3{X: -0.3, Y: 0.1, Z: 0.2}, pmath.Vec3{X: 0.4, Y: -0.2, Z: 0.35}},
		{"steep", pmath.Vec3{X: 0.1, Y: -0.8, Z: -0.1}, pmath.Vec3{X: 0.2, Y: 0.7, Z: 0.3}},
		{"corner", pmath.Vec3{X: 0.6, Y: 0.6, Z: 0.6}, pmath.Vec3{X: 0.9, Y: 0.85, Z: 0.8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := unitBox()
			left, right, err := Bisect(box, []pmath.Vec3{tt.a, tt.b}, SplitOptions{})
			if err != nil {
				t.Fatalf("Bisect failed: %v", err)
			}

			if err := left.Validate(); err != nil {
				t.Errorf("left child not closed: %v", err)
			}
			if err := right.Validate(); err != nil {
				t.Errorf("right child not closed: %v", err)
			}

			if got := left.Volume() + right.Volume(); math.Abs(got-8) > 1e-3 {
				t.Errorf("volume sum = %v, want 8", got)
			}

			surface := left.Area() + right.Area() - cutArea(left) - cutArea(right)
			if math.Abs(surface-24) > 1e-3 {
				t.Errorf("exterior area sum = %v, want 24", surface)
			}
			if math.Abs(cutArea(left)-cutArea(right)) > 1e-3 {
				t.Errorf("cap areas differ: %v vs %v", cutArea(left), cutArea(right))
			}

			// Sites end up on their own sides.
			if !left.Contains(tt.b, pmath.Up) {
				t.Errorf("left child should contain site %v", tt.b)
			}
			if !right.Contains(tt.a, pmath.Up) {
				t.Errorf("right child should contain site %v", tt.a)
			}
		})
	}
}

func TestSplitThroughVertices(t *testing.T) {
	tests := []struct {
		name  string
		plane Plane
		above float64
	}{
		{"box diagonal", Plane{Normal: pmath.Vec3{X: 1, Y: 1}}, 4},
		{"corner tetrahedron", Plane{Normal: pmath.Vec3{X: 1, Y: 1, Z: 1}, D: 1}, 4.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			above, below, err := Split(unitBox(), tt.plane, SplitOptions{})
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if err := above.Validate(); err != nil {
				t.Errorf("upper half invalid: %v", err)
			}
			if err := below.Validate(); err != nil {
				t.Errorf("lower half invalid: %v", err)
			}
			for _, half := range []*Region{above, below} {
				for i, tri := range half.Triangles {
					if tri.Normal == (pmath.Vec3{}) {
						t.Errorf("triangle %d has no normal: %v", i, tri.V)
					}
				}
			}
			if got := above.Volume(); math.Abs(got-tt.above) > 1e-3 {
				t.Errorf("upper volume = %v, want %v", got, tt.above)
			}
			if got := below.Volume(); math.Abs(got-(8-tt.above)) > 1e-3 {
				t.Errorf("lower volume = %v, want %v", got, 8-tt.above)
			}
		})
	}
}

func TestSplitCutFlags(t *testing.T) {
	plane := Plane{Normal: pmath.Vec3{X: 1}, D: 0.25}
	above, below, err := Split(unitBox(), plane, SplitOptions{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	for _, r := range []*Region{above, below} {
		if r.CutCount() == 0 {
			t.Error("expected cap faces flagged as cut")
		}
		for _, tri := range r.Triangles {
			if tri.Cut && math32.Abs(math32.Abs(tri.Normal.X)-1) > 1e-5 {
				t.Errorf("cap face normal %v should be along the plane normal", tri.Normal)
			}
		}
	}

	// A second split keeps the flags of the first.
	a2, b2, err := Split(above, Plane{Normal: pmath.Vec3{Y: 1}, D: 0.1}, SplitOptions{})
	if err != nil {
		t.Fatalf("second Split failed: %v", err)
	}
	for _, r := range []*Region{a2, b2} {
		var xCaps int
		for _, tri := range r.Triangles {
			if tri.Cut && math32.Abs(tri.Normal.X+1) < 1e-5 {
				xCaps++
			}
		}
		if xCaps == 0 {
			t.Error("faces from the first cap should still be flagged as cut")
		}
	}
}

func TestSplitErrors(t *testing.T) {
	box := unitBox()

	if _, _, err := Split(box, Plane{Normal: pmath.Vec3{X: 1}, D: 10}, SplitOptions{}); !errors.Is(err, ErrPlaneMisses) {
		t.Errorf("expected ErrPlaneMisses, got %v", err)
	}
	if _, _, err := Split(box, Plane{}, SplitOptions{}); !errors.Is(err, ErrDegeneratePlane) {
		t.Errorf("expected ErrDegeneratePlane for zero normal, got %v", err)
	}
	if _, _, err := Split(NewRegion(nil), Plane{Normal: pmath.Up}, SplitOptions{}); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}
	if _, _, err := Bisect(box, []pmath.Vec3{{X: 0.1}}, SplitOptions{}); !errors.Is(err, ErrDegeneratePlane) {
		t.Errorf("expected ErrDegeneratePlane for one site, got %v", err)
	}
	same := pmath.Vec3{X: 0.2, Y: 0.2, Z: 0.2}
	if _, _, err := Bisect(box, []pmath.Vec3{same, same}, SplitOptions{}); !errors.Is(err, ErrDegeneratePlane) {
		t.Errorf("expected ErrDegeneratePlane for coincident sites, got %v", err)
	}
}

func TestContains(t *testing.T) {
	box := unitBox()

	tests := []struct {
		p    pmath.Vec3
		want bool
	}{
		{pmath.Vec3{X: 0.13, Y: 0.07, Z: -0.21}, true},
		{pmath.Vec3{X: 0.91, Y: -0.83, Z: 0.77}, true},
		{pmath.Vec3{X: 1.5, Y: 0.1, Z: 0.2}, false},
		{pmath.Vec3{X: 0.3, Y: 2.1, Z: 0.2}, false},
		{pmath.Vec3{X: 0.3, Y: -3, Z: 0.2}, false},
	}
	for _, tt := range tests {
		if got := box.Contains(tt.p, pmath.Up); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	box := unitBox()

	open := NewRegion(box.Triangles[1:])
	if err := open.Validate(); !errors.Is(err, ErrOpenSurface) {
		t.Errorf("expected ErrOpenSurface, got %v", err)
	}

	if err := NewRegion(nil).Validate(); !errors.Is(err, ErrEmptyRegion) {
		t.Errorf("expected ErrEmptyRegion, got %v", err)
	}

	bad := box.Clone()
	bad.Triangles[0].V[0].X = math32.NaN()
	if err := bad.Validate(); !errors.Is(err, ErrMalformedRegion) {
		t.Errorf("expected ErrMalformedRegion, got %v", err)
	}
	if math32.IsNaN(box.Triangles[0].V[0].X) {
		t.Error("Clone should not share triangles with the original")
	}
}

func TestCombineAndPrune(t *testing.T) {
	left, right, err := Split(unitBox(), Plane{Normal: pmath.Vec3{X: 0.6, Y: 0.8}, D: 0.1}, SplitOptions{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	combined := Combine(left, nil, right)
	if combined.Len() != left.Len()+right.Len() {
		t.Fatalf("Combine() has %d faces, want %d", combined.Len(), left.Len()+right.Len())
	}

	pruned := PruneInterior(combined)
	if pruned.CutCount() != 0 {
		t.Errorf("expected all interior caps pruned, %d left", pruned.CutCount())
	}
	if got := pruned.Area(); math.Abs(got-24) > 1e-3 {
		t.Errorf("pruned area = %v, want 24", got)
	}
	if err := pruned.Validate(); err != nil {
		t.Errorf("pruned region should be closed: %v", err)
	}
}

func TestPruneKeepsConvexRegion(t *testing.T) {
	box := unitBox()
	if got := PruneInterior(box).Len(); got != box.Len() {
		t.Errorf("PruneInterior dropped exterior faces: %d of %d left", got, box.Len())
	}
}

func TestSurfaceRegistry(t *testing.T) {
	box := unitBox()
	surfaces := NewSurfaceRegistry(box)

	if surfaces.Len() != 6 {
		t.Fatalf("expected 6 box surfaces, got %d", surfaces.Len())
	}

	left, _, err := Split(box, Plane{Normal: pmath.Vec3{Z: 1}, D: -0.2}, SplitOptions{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for i, slot := range surfaces.Assign(left) {
		tri := left.Triangles[i]
		if tri.Cut && slot != Interior {
			t.Errorf("cut face %d classified as surface %d", i, slot)
		}
		if !tri.Cut && slot == Interior {
			t.Errorf("exterior face %d with normal %v not matched", i, tri.Normal)
		}
	}
}

func TestNewTriangleUV(t *testing.T) {
	tri := NewTriangle(
		pmath.Vec3{X: 1, Y: 1, Z: 0},
		pmath.Vec3{X: 3, Y: 1, Z: 0},
		pmath.Vec3{X: 1, Y: 5, Z: 0},
		0.5, true)

	if tri.UV[0] != (pmath.Vec2{}) {
		t.Errorf("first UV = %v, want origin", tri.UV[0])
	}
	if tri.UV[1] != (pmath.Vec2{X: 1, Y: 0}) {
		t.Errorf("second UV = %v, want (1, 0)", tri.UV[1])
	}
	if tri.UV[2] != (pmath.Vec2{X: 0, Y: 2}) {
		t.Errorf("third UV = %v, want (0, 2)", tri.UV[2])
	}
	if tri.Normal != (pmath.Vec3{Z: 1}) {
		t.Errorf("Normal = %v, want +Z", tri.Normal)
	}
	if !tri.Cut {
		t.Error("expected Cut to be kept")
	}
}

func TestAABB(t *testing.T) {
	box := unitBox().Bounds()

	if box.Min != (pmath.Vec3{X: -1, Y: -1, Z: -1}) || box.Max != (pmath.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("Bounds() = %v", box)
	}
	if box.Volume() != 8 {
		t.Errorf("Volume() = %v, want 8", box.Volume())
	}
	if box.MaxExtent() != 2 {
		t.Errorf("MaxExtent() = %v, want 2", box.MaxExtent())
	}

	far := AABB{Min: pmath.Vec3{X: 1.03}, Max: pmath.Vec3{X: 2, Y: 1, Z: 1}}
	if box.Intersects(far) {
		t.Error("boxes 0.03 apart should not intersect")
	}
	if !box.Grow(0.05).Intersects(far.Grow(0.05)) {
		t.Error("grown boxes should intersect")
	}

	moved := box.Transform(pmath.TransformAt(pmath.Vec3{X: 10}))
	if moved.Center() != (pmath.Vec3{X: 10}) {
		t.Errorf("translated centre = %v, want (10,0,0)", moved.Center())
	}
	if !moved.Contains(pmath.Vec3{X: 10.5}) || moved.Contains(pmath.Vec3{}) {
		t.Error("translated box containment is wrong")
	}
}

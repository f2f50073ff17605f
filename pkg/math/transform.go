package math

// Transform places a body in world space: scale, then rotate, then translate.
type Transform struct {
	Position Vec3
	Rotation Quat
	Scale    Vec3
}

// TransformIdentity returns a transform that leaves points unchanged.
func TransformIdentity() Transform {
	return Transform{Rotation: QuatIdentity(), Scale: Vec3{1, 1, 1}}
}

// TransformAt returns an unrotated, unscaled transform at position p.
func TransformAt(p Vec3) Transform {
	t := TransformIdentity()
	t.Position = p
	return t
}

// Apply maps a local point to world space.
func (t Transform) Apply(p Vec3) Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale)).Add(t.Position)
}

// Matrix returns the equivalent 4x4 matrix.
func (t Transform) Matrix() Mat4 {
	return Translate(t.Position).Mul(t.Rotation.ToMat4()).Mul(Scale(t.Scale))
}

// Interpolate blends towards other: linear for position and scale, slerp for rotation.
func (t Transform) Interpolate(other Transform, alpha float32) Transform {
	return Transform{
		Position: t.Position.Lerp(other.Position, alpha),
		Rotation: t.Rotation.Slerp(other.Rotation, alpha),
		Scale:    t.Scale.Lerp(other.Scale, alpha),
	}
}

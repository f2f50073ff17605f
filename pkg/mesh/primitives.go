package mesh

import (
	pmath "github.com/Faultbox/shatter/pkg/math"
)

// Box returns a closed box centred on the origin with outward-facing faces.
func Box(size pmath.Vec3, textureScale float32) *Region {
	h := size.Scale(0.5)
	c := [8]pmath.Vec3{
		{X: -h.X, Y: -h.Y, Z: -h.Z}, // 0
		{X: h.X, Y: -h.Y, Z: -h.Z},  // 1
		{X: h.X, Y: h.Y, Z: -h.Z},   // 2
		{X: -h.X, Y: h.Y, Z: -h.Z},  // 3
		{X: -h.X, Y: -h.Y, Z: h.Z},  // 4
		{X: h.X, Y: -h.Y, Z: h.Z},   // 5
		{X: h.X, Y: h.Y, Z: h.Z},    // 6
		{X: -h.X, Y: h.Y, Z: h.Z},   // 7
	}
	// Each quad is listed counter-clockwise seen from outside.
	quads := [6][4]int{
		{4, 5, 6, 7}, // +Z
		{1, 0, 3, 2}, // -Z
		{5, 1, 2, 6}, // +X
		{0, 4, 7, 3}, // -X
		{7, 6, 2, 3}, // +Y
		{0, 1, 5, 4}, // -Y
	}
	if textureScale <= 0 {
		textureScale = DefaultTextureScale
	}

	tris := make([]Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			NewTriangle(c[q[0]], c[q[1]], c[q[2]], textureScale, false),
			NewTriangle(c[q[0]], c[q[2]], c[q[3]], textureScale, false))
	}
	return &Region{Triangles: tris}
}

package voxscene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// SDF is a signed distance field: negative inside, positive outside.
// Voxelize turns one into the same dense grid the file loader produces, so
// procedurally authored shapes run through the identical meshing pipeline.
type SDF struct {
	distance func(mgl32.Vec3) float32
}

// NewSDF wraps a distance function.
func NewSDF(distance func(mgl32.Vec3) float32) SDF {
	return SDF{distance: distance}
}

// SphereSDF is a sphere of the given radius centered on the origin.
func SphereSDF(radius float32) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return p.Len() - radius
	})
}

// CuboidSDF is an axis-aligned box with the given half extents.
func CuboidSDF(halfExtent mgl32.Vec3) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		q := mgl32.Vec3{
			abs32(p.X()) - halfExtent.X(),
			abs32(p.Y()) - halfExtent.Y(),
			abs32(p.Z()) - halfExtent.Z(),
		}
		outside := mgl32.Vec3{max32(q.X(), 0), max32(q.Y(), 0), max32(q.Z(), 0)}
		inside := min32(max32(q.X(), max32(q.Y(), q.Z())), 0)
		return outside.Len() + inside
	})
}

// Add unions two fields.
func (s SDF) Add(other SDF) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return min32(s.distance(p), other.distance(p))
	})
}

// Subtract carves other out of s.
func (s SDF) Subtract(other SDF) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return max32(s.distance(p), -other.distance(p))
	})
}

// Intersect keeps the overlap of both fields.
func (s SDF) Intersect(other SDF) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return max32(s.distance(p), other.distance(p))
	})
}

// Translate shifts the field by delta.
func (s SDF) Translate(delta mgl32.Vec3) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return s.distance(p.Sub(delta))
	})
}

// Rotate rotates the field by the given quaternion.
func (s SDF) Rotate(rotation mgl32.Quat) SDF {
	inverse := rotation.Inverse()
	return NewSDF(func(p mgl32.Vec3) float32 {
		return s.distance(inverse.Rotate(p))
	})
}

// Distort transforms the signed distance with the supplied function, which
// receives the raw distance and the sample point.
func (s SDF) Distort(distort func(distance float32, p mgl32.Vec3) float32) SDF {
	return NewSDF(func(p mgl32.Vec3) float32 {
		return distort(s.distance(p), p)
	})
}

// Voxelize samples the field at every cell center of a grid with the given
// dimensions, centered on the field origin, filling cells with distance < 0.
func (s SDF) Voxelize(sx, sy, sz int, fill uint8) *VoxelGrid {
	g := NewVoxelGrid(sx, sy, sz)
	half := mgl32.Vec3{float32(sx) / 2, float32(sy) / 2, float32(sz) / 2}
	for z := 0; z < sz; z++ {
		for y := 0; y < sy; y++ {
			for x := 0; x < sx; x++ {
				p := mgl32.Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}.Sub(half)
				if s.distance(p) < 0 {
					g.Set(x, y, z, fill)
				}
			}
		}
	}
	return g
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

package voxscene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DecodeRotation unpacks a .vox rotation byte into a quaternion plus
// per-axis sign flips, covering all 48 cases including reflections.
// The result stays in the file's Z-up basis; axis remapping for a
// particular renderer is the host's concern.
func DecodeRotation(r byte) (mgl32.Quat, mgl32.Vec3) {
	nz1 := int(r & 3)
	nz2 := int((r >> 2) & 3)
	flip := int((r >> 4) & 7)

	si := mgl32.Vec3{1, 1, 1}
	sf := mgl32.Vec3{-1, -1, -1}

	const sqrt22 = float32(0.70710678) // sqrt(2)/2

	q := func(x, y, z, w float32) mgl32.Quat {
		return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
	}

	var quats [4]mgl32.Quat
	var mapping [8]int
	var scales [8]mgl32.Vec3

	scalesStandard := [8]mgl32.Vec3{si, sf, sf, si, sf, si, si, sf}
	scalesInverted := [8]mgl32.Vec3{sf, si, si, sf, si, sf, sf, si}

	switch {
	case nz1 == 0 && nz2 == 1:
		quats = [4]mgl32.Quat{
			q(0, 0, 0, 1),
			q(0, 0, 1, 0),
			q(0, 1, 0, 0),
			q(1, 0, 0, 0),
		}
		mapping = [8]int{0, 3, 2, 1, 1, 2, 3, 0}
		scales = scalesStandard

	case nz1 == 0 && nz2 == 2:
		quats = [4]mgl32.Quat{
			q(0, sqrt22, sqrt22, 0),
			q(sqrt22, 0, 0, sqrt22),
			q(sqrt22, 0, 0, -sqrt22),
			q(0, sqrt22, -sqrt22, 0),
		}
		mapping = [8]int{3, 0, 1, 2, 2, 1, 0, 3}
		scales = scalesInverted

	case nz1 == 1 && nz2 == 2:
		quats = [4]mgl32.Quat{
			q(0.5, 0.5, 0.5, -0.5),
			q(0.5, -0.5, 0.5, 0.5),
			q(0.5, -0.5, -0.5, -0.5),
			q(0.5, 0.5, -0.5, 0.5),
		}
		mapping = [8]int{0, 3, 2, 1, 1, 2, 3, 0}
		scales = scalesStandard

	case nz1 == 1 && nz2 == 0:
		quats = [4]mgl32.Quat{
			q(0, 0, sqrt22, sqrt22),
			q(0, 0, sqrt22, -sqrt22),
			q(sqrt22, sqrt22, 0, 0),
			q(sqrt22, -sqrt22, 0, 0),
		}
		mapping = [8]int{3, 0, 1, 2, 2, 1, 0, 3}
		scales = scalesInverted

	case nz1 == 2 && nz2 == 0:
		quats = [4]mgl32.Quat{
			q(0.5, 0.5, 0.5, 0.5),
			q(0.5, -0.5, -0.5, 0.5),
			q(0.5, 0.5, -0.5, -0.5),
			q(0.5, -0.5, 0.5, -0.5),
		}
		mapping = [8]int{0, 3, 2, 1, 1, 2, 3, 0}
		scales = scalesStandard

	case nz1 == 2 && nz2 == 1:
		quats = [4]mgl32.Quat{
			q(0, sqrt22, 0, -sqrt22),
			q(sqrt22, 0, sqrt22, 0),
			q(0, sqrt22, 0, sqrt22),
			q(sqrt22, 0, -sqrt22, 0),
		}
		mapping = [8]int{3, 0, 1, 2, 2, 1, 0, 3}
		scales = scalesInverted

	default:
		// Invalid rotation byte; fall back to identity.
		return mgl32.QuatIdent(), si
	}

	return quats[mapping[flip]], scales[flip]
}

// Matrix returns the frame's local affine transform: translation composed
// with the decoded rotation and axis flips.
func (f TransformFrame) Matrix() mgl32.Mat4 {
	rot := mgl32.QuatIdent()
	scale := mgl32.Vec3{1, 1, 1}
	if f.HasRotation {
		rot, scale = DecodeRotation(f.Rotation)
	}
	m := rot.Mat4().Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
	m.SetCol(3, mgl32.Vec4{
		float32(f.Translation[0]),
		float32(f.Translation[1]),
		float32(f.Translation[2]),
		1,
	})
	return m
}

// LocalTransform returns the node's local affine transform. Group and shape
// nodes, and transform nodes without frames, are identity.
func (n *VoxNode) LocalTransform() mgl32.Mat4 {
	if n.Kind != VoxNodeTransform || len(n.Frames) == 0 {
		return mgl32.Ident4()
	}
	return n.Frames[0].Matrix()
}

package voxscene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one mesh vertex handed to the host renderer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh is an indexed triangle list. Produced once per model and immutable
// afterwards; remeshing replaces the whole Mesh rather than editing it.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// QuadCount returns the number of emitted quads (two triangles each).
func (m *Mesh) QuadCount() int { return len(m.Vertices) / 4 }

// faceDir fixes one of the six axis-aligned face directions. axis is the
// normal axis, u/v span the face plane; v is the fast (width) axis during
// the greedy scan.
type faceDir struct {
	axis, sign int
	u, v       int
}

// Direction order is fixed so merge order, and therefore output topology,
// is reproducible for identical input.
var faceDirections = [6]faceDir{
	{axis: 0, sign: +1, u: 1, v: 2},
	{axis: 0, sign: -1, u: 1, v: 2},
	{axis: 1, sign: +1, u: 0, v: 2},
	{axis: 1, sign: -1, u: 0, v: 2},
	{axis: 2, sign: +1, u: 0, v: 1},
	{axis: 2, sign: -1, u: 0, v: 1},
}

// GreedyMesh collapses per-voxel cube faces into maximal axis-aligned quads,
// merging adjacent faces only when they share a material. A face is visible
// when its neighbor along the face normal is empty, a cloud voxel, or a
// different material. The mesh is centered on the model's midpoint and
// scaled by cfg.VoxelSize.
func GreedyMesh(g *VoxelGrid, layout *AtlasLayout, cfg LoadConfig) *Mesh {
	mesh := &Mesh{}
	sx, sy, sz := g.Size()
	dims := [3]int{sx, sy, sz}
	scale := cfg.VoxelSize
	if scale <= 0 {
		scale = 1
	}
	center := mgl32.Vec3{float32(sx) / 2, float32(sy) / 2, float32(sz) / 2}

	for _, dir := range faceDirections {
		du, dv := dims[dir.u], dims[dir.v]
		mask := make([]uint8, du*dv)
		for p := 0; p < dims[dir.axis]; p++ {
			buildFaceMask(g, dir, p, dims, mask, cfg.MeshOuterFaces)
			mergeFaceMask(mesh, layout, dir, p, du, dv, mask, center, scale)
		}
	}
	return mesh
}

// buildFaceMask records, for one depth slice, the material of every cell
// whose face in dir is visible. Cells without a visible face stay 0.
func buildFaceMask(g *VoxelGrid, dir faceDir, p int, dims [3]int, mask []uint8, outerFaces bool) {
	du, dv := dims[dir.u], dims[dir.v]
	for uu := 0; uu < du; uu++ {
		for vv := 0; vv < dv; vv++ {
			var pos [3]int
			pos[dir.axis] = p
			pos[dir.u] = uu
			pos[dir.v] = vv

			m := g.At(pos[0], pos[1], pos[2])
			if m == 0 {
				mask[uu*dv+vv] = 0
				continue
			}

			n := pos
			n[dir.axis] += dir.sign
			if !outerFaces && !g.Contains(n[0], n[1], n[2]) {
				mask[uu*dv+vv] = 0
				continue
			}
			// The margin reads as empty, so boundary faces need no special
			// case. Cloud voxels live outside the solid grid and also read
			// as empty: clouds never occlude.
			nm := g.At(n[0], n[1], n[2])
			if nm == 0 || nm != m {
				mask[uu*dv+vv] = m
			} else {
				mask[uu*dv+vv] = 0
			}
		}
	}
}

// mergeFaceMask greedily merges mask cells into maximal rectangles:
// row-major scan, extend width along v while the material matches, then
// extend height along u while the whole next row matches. Consumed cells
// are zeroed so the mask comes out clean for the next slice.
func mergeFaceMask(mesh *Mesh, layout *AtlasLayout, dir faceDir, p, du, dv int, mask []uint8, center mgl32.Vec3, scale float32) {
	for uu := 0; uu < du; uu++ {
		for vv := 0; vv < dv; {
			m := mask[uu*dv+vv]
			if m == 0 {
				vv++
				continue
			}
			w := 1
			for vv+w < dv && mask[uu*dv+vv+w] == m {
				w++
			}
			h := 1
		grow:
			for uu+h < du {
				for k := vv; k < vv+w; k++ {
					if mask[(uu+h)*dv+k] != m {
						break grow
					}
				}
				h++
			}
			for i := uu; i < uu+h; i++ {
				for k := vv; k < vv+w; k++ {
					mask[i*dv+k] = 0
				}
			}
			emitQuad(mesh, layout, dir, p, uu, vv, w, h, m, center, scale)
			vv += w
		}
	}
}

// emitQuad appends one merged rectangle as 4 vertices and 2 CCW triangles.
func emitQuad(mesh *Mesh, layout *AtlasLayout, dir faceDir, p, uu, vv, w, h int, material uint8, center mgl32.Vec3, scale float32) {
	plane := p
	if dir.sign > 0 {
		plane = p + 1
	}

	corner := func(su, sv int) mgl32.Vec3 {
		var c [3]int
		c[dir.axis] = plane
		c[dir.u] = uu + su
		c[dir.v] = vv + sv
		return mgl32.Vec3{
			(float32(c[0]) - center.X()) * scale,
			(float32(c[1]) - center.Y()) * scale,
			(float32(c[2]) - center.Z()) * scale,
		}
	}

	// Corner order (0,0) (0,w) (h,w) (h,0) yields normals -x, +y, -z for
	// the three axes; the reverse order yields the other three.
	var corners [4]mgl32.Vec3
	if (dir.axis == 0 && dir.sign < 0) || (dir.axis == 1 && dir.sign > 0) || (dir.axis == 2 && dir.sign < 0) {
		corners = [4]mgl32.Vec3{corner(0, 0), corner(0, w), corner(h, w), corner(h, 0)}
	} else {
		corners = [4]mgl32.Vec3{corner(0, 0), corner(h, 0), corner(h, w), corner(0, w)}
	}

	var normal mgl32.Vec3
	normal[dir.axis] = float32(dir.sign)
	uv := layout.UV(material)

	base := uint32(len(mesh.Vertices))
	for _, pos := range corners {
		mesh.Vertices = append(mesh.Vertices, Vertex{Position: pos, Normal: normal, UV: uv})
	}
	mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
}

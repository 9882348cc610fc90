package voxscene

import (
	"github.com/chewxy/math32"
)

// CloudSearchRadius bounds the distance search when softening a cloud's
// boundary, in cells.
const CloudSearchRadius = 4

// DensityTexture is a per-model 3D scalar field at the model's voxel
// resolution, used downstream as a fog/volume input. Values fall off with
// distance from the cloud body, approximating a soft volumetric boundary.
type DensityTexture struct {
	SizeX, SizeY, SizeZ int
	Values              []float32 // x + y*SizeX + z*SizeX*SizeY
}

// At returns the density at the given cell, or 0 outside the texture.
func (t *DensityTexture) At(x, y, z int) float32 {
	if x < 0 || x >= t.SizeX || y < 0 || y >= t.SizeY || z < 0 || z >= t.SizeZ {
		return 0
	}
	return t.Values[x+y*t.SizeX+z*t.SizeX*t.SizeY]
}

// BuildDensityTexture computes the density field for a model's cloud voxels.
// Each cell's value is the cloud material's density scaled by a linearly
// decreasing function of the distance to the nearest cloud voxel within
// CloudSearchRadius; cells further away get zero. Returns nil when the model
// has no cloud voxels.
func BuildDensityTexture(g *VoxelGrid, pal *Palette) *DensityTexture {
	if !g.HasCloud() {
		return nil
	}
	sx, sy, sz := g.Size()
	t := &DensityTexture{
		SizeX: sx, SizeY: sy, SizeZ: sz,
		Values: make([]float32, sx*sy*sz),
	}
	for z := 0; z < sz; z++ {
		for y := 0; y < sy; y++ {
			for x := 0; x < sx; x++ {
				t.Values[x+y*sx+z*sx*sy] = cloudDensityAt(g, pal, x, y, z)
			}
		}
	}
	return t
}

// cloudDensityAt finds the nearest cloud voxel within the search radius and
// applies the falloff. Ties resolve to the strongest resulting value, so the
// field is independent of scan order.
func cloudDensityAt(g *VoxelGrid, pal *Palette, x, y, z int) float32 {
	const r = CloudSearchRadius
	best := float32(0)
	for dz := -r; dz <= r; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				idx := g.CloudAt(x+dx, y+dy, z+dz)
				if idx == 0 {
					continue
				}
				dist := math32.Sqrt(float32(dx*dx + dy*dy + dz*dz))
				if dist > r {
					continue
				}
				v := pal[idx].Density * (1 - dist/(r+1))
				if v > best {
					best = v
				}
			}
		}
	}
	return best
}

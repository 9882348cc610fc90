package voxscene

import (
	"math"
	"sort"
)

// ScaleModel resamples a model record to a new resolution. Upscaling
// replicates each voxel into the covered block; downscaling groups source
// voxels per target cell and keeps the majority material. Output voxel order
// is sorted so resampling is deterministic.
func ScaleModel(model ModelRecord, scale float32) ModelRecord {
	if scale <= 0 || scale == 1.0 {
		return model
	}
	newSize := func(s int32) int32 {
		n := int32(math.Round(float64(float32(s) * scale)))
		if n < 1 {
			n = 1
		}
		if n > MaxModelDimension {
			n = MaxModelDimension
		}
		return n
	}
	out := ModelRecord{
		SizeX: newSize(model.SizeX),
		SizeY: newSize(model.SizeY),
		SizeZ: newSize(model.SizeZ),
	}

	if scale > 1.0 {
		for _, v := range model.Voxels {
			x0, x1 := int32(float32(v.X)*scale), int32(float32(v.X+1)*scale)
			y0, y1 := int32(float32(v.Y)*scale), int32(float32(v.Y+1)*scale)
			z0, z1 := int32(float32(v.Z)*scale), int32(float32(v.Z+1)*scale)
			for x := x0; x < x1 && x < out.SizeX; x++ {
				for y := y0; y < y1 && y < out.SizeY; y++ {
					for z := z0; z < z1 && z < out.SizeZ; z++ {
						out.Voxels = append(out.Voxels, VoxelRecord{
							X: uint8(x), Y: uint8(y), Z: uint8(z), Index: v.Index,
						})
					}
				}
			}
		}
		sortVoxels(out.Voxels)
		return out
	}

	// Downscale with a majority vote per target cell. Ties break toward the
	// lower palette index so the vote is deterministic.
	type cell struct{ x, y, z uint8 }
	groups := make(map[cell]map[uint8]int)
	clampTo := func(v int32, size int32) uint8 {
		if v >= size {
			v = size - 1
		}
		return uint8(v)
	}
	for _, v := range model.Voxels {
		c := cell{
			x: clampTo(int32(float32(v.X)*scale), out.SizeX),
			y: clampTo(int32(float32(v.Y)*scale), out.SizeY),
			z: clampTo(int32(float32(v.Z)*scale), out.SizeZ),
		}
		if groups[c] == nil {
			groups[c] = make(map[uint8]int)
		}
		groups[c][v.Index]++
	}
	for c, counts := range groups {
		best, bestCount := uint8(0), 0
		for idx, count := range counts {
			if count > bestCount || (count == bestCount && idx < best) {
				best, bestCount = idx, count
			}
		}
		out.Voxels = append(out.Voxels, VoxelRecord{X: c.x, Y: c.y, Z: c.z, Index: best})
	}
	sortVoxels(out.Voxels)
	return out
}

func sortVoxels(voxels []VoxelRecord) {
	sort.Slice(voxels, func(i, j int) bool {
		a, b := voxels[i], voxels[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

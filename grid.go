package voxscene

// VoxelGrid is a dense 3D voxel array with a 1-cell empty margin on every
// axis. The margin lets the mesher read a cell's neighbor without bounds
// branching: any lookup one step outside the model reads the margin, which
// is always empty. Cells store the palette index; 0 means empty.
//
// Cloud-kind voxels live in a parallel grid and never enter the solid grid,
// so they produce no faces and never occlude solid neighbors.
type VoxelGrid struct {
	sizeX, sizeY, sizeZ int
	solid               []uint8
	cloud               []uint8
}

// NewVoxelGrid returns an empty grid of the given unpadded dimensions.
func NewVoxelGrid(sx, sy, sz int) *VoxelGrid {
	n := (sx + 2) * (sy + 2) * (sz + 2)
	return &VoxelGrid{
		sizeX: sx, sizeY: sy, sizeZ: sz,
		solid: make([]uint8, n),
		cloud: make([]uint8, n),
	}
}

// BuildVoxelGrid densifies a model's sparse voxel list. Cloud-kind palette
// indices are routed to the cloud grid; everything else is solid.
func BuildVoxelGrid(model ModelRecord, pal *Palette) (*VoxelGrid, error) {
	g := NewVoxelGrid(int(model.SizeX), int(model.SizeY), int(model.SizeZ))
	for _, v := range model.Voxels {
		x, y, z := int(v.X), int(v.Y), int(v.Z)
		if x >= g.sizeX || y >= g.sizeY || z >= g.sizeZ {
			return nil, parseErrorf(0, "voxel (%d,%d,%d) outside model bounds %dx%dx%d",
				x, y, z, g.sizeX, g.sizeY, g.sizeZ)
		}
		if v.Index == 0 {
			continue // reserved empty index
		}
		if pal.IsCloud(v.Index) {
			g.cloud[g.index(x, y, z)] = v.Index
		} else {
			g.solid[g.index(x, y, z)] = v.Index
		}
	}
	return g, nil
}

// Size returns the unpadded model dimensions.
func (g *VoxelGrid) Size() (int, int, int) {
	return g.sizeX, g.sizeY, g.sizeZ
}

// index maps unpadded coordinates to the padded backing array.
func (g *VoxelGrid) index(x, y, z int) int {
	return (x + 1) + (y+1)*(g.sizeX+2) + (z+1)*(g.sizeX+2)*(g.sizeY+2)
}

// At returns the solid material index at unpadded coordinates, or 0 for
// empty cells and any position outside the grid.
func (g *VoxelGrid) At(x, y, z int) uint8 {
	if x < -1 || x > g.sizeX || y < -1 || y > g.sizeY || z < -1 || z > g.sizeZ {
		return 0
	}
	return g.solid[g.index(x, y, z)]
}

// CloudAt returns the cloud material index at unpadded coordinates, or 0.
func (g *VoxelGrid) CloudAt(x, y, z int) uint8 {
	if x < -1 || x > g.sizeX || y < -1 || y > g.sizeY || z < -1 || z > g.sizeZ {
		return 0
	}
	return g.cloud[g.index(x, y, z)]
}

// Contains reports whether the unpadded coordinates lie inside the model.
func (g *VoxelGrid) Contains(x, y, z int) bool {
	return x >= 0 && x < g.sizeX && y >= 0 && y < g.sizeY && z >= 0 && z < g.sizeZ
}

// Set writes a solid material index (0 clears the cell). The margin cannot
// be written; out-of-bounds writes are ignored.
func (g *VoxelGrid) Set(x, y, z int, index uint8) {
	if !g.Contains(x, y, z) {
		return
	}
	g.solid[g.index(x, y, z)] = index
	if index != 0 {
		g.cloud[g.index(x, y, z)] = 0
	}
}

// SetCloud writes a cloud material index, clearing any solid cell.
func (g *VoxelGrid) SetCloud(x, y, z int, index uint8) {
	if !g.Contains(x, y, z) {
		return
	}
	g.cloud[g.index(x, y, z)] = index
	if index != 0 {
		g.solid[g.index(x, y, z)] = 0
	}
}

// HasSolid reports whether any solid voxel is present.
func (g *VoxelGrid) HasSolid() bool {
	for _, v := range g.solid {
		if v != 0 {
			return true
		}
	}
	return false
}

// HasCloud reports whether any cloud voxel is present.
func (g *VoxelGrid) HasCloud() bool {
	for _, v := range g.cloud {
		if v != 0 {
			return true
		}
	}
	return false
}

// UsedMaterials marks every solid material index present in the grid.
func (g *VoxelGrid) UsedMaterials(used *[256]bool) {
	for _, v := range g.solid {
		if v != 0 {
			used[v] = true
		}
	}
}

// Clone returns a deep copy, used when a model retains its grid for
// remeshing while the original is discarded.
func (g *VoxelGrid) Clone() *VoxelGrid {
	out := &VoxelGrid{
		sizeX: g.sizeX, sizeY: g.sizeY, sizeZ: g.sizeZ,
		solid: make([]uint8, len(g.solid)),
		cloud: make([]uint8, len(g.cloud)),
	}
	copy(out.solid, g.solid)
	copy(out.cloud, g.cloud)
	return out
}

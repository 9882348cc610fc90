package voxscene

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// VoxelModel is one converted model: its mesh, its optional cloud density
// texture, and, when remeshing was requested, the dense grid the mesh was
// generated from. Each model owns its grid and mesh exclusively; models from
// the same file only share the read-only palette and atlas layout.
type VoxelModel struct {
	mu      sync.RWMutex
	mesh    *Mesh
	density *DensityTexture
	grid    *VoxelGrid

	palette *Palette
	layout  *AtlasLayout
	cfg     LoadConfig
}

// Mesh returns the current mesh. Safe to call concurrently with Remesh; the
// previous mesh stays valid until a remesh swaps in the replacement.
func (m *VoxelModel) Mesh() *Mesh {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mesh
}

// Density returns the cloud density texture, or nil for models without
// cloud voxels.
func (m *VoxelModel) Density() *DensityTexture {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.density
}

// Size returns the model dimensions in voxels, or zeros when the grid was
// not retained.
func (m *VoxelModel) Size() (int, int, int) {
	if m.grid == nil {
		return 0, 0, 0
	}
	return m.grid.Size()
}

// VoxelAt returns the solid material index at the given cell. Requires a
// retained grid.
func (m *VoxelModel) VoxelAt(x, y, z int) (uint8, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.grid == nil {
		return 0, errors.New("voxel grid not retained; load with SupportsRemeshing")
	}
	return m.grid.At(x, y, z), nil
}

// SetVoxel writes a solid material index (0 clears the cell) into the
// retained grid. The mesh is not updated until Remesh is called, so a batch
// of edits costs one regeneration.
func (m *VoxelModel) SetVoxel(x, y, z int, index uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grid == nil {
		return errors.New("voxel grid not retained; load with SupportsRemeshing")
	}
	if !m.grid.Contains(x, y, z) {
		return errors.Errorf("voxel (%d,%d,%d) outside model bounds", x, y, z)
	}
	m.grid.Set(x, y, z, index)
	return nil
}

// Remesh regenerates the mesh and density texture wholesale from the
// retained grid. The swap is atomic from a consumer's perspective: readers
// keep the old mesh until the new one is complete.
func (m *VoxelModel) Remesh() error {
	m.mu.RLock()
	grid := m.grid
	m.mu.RUnlock()
	if grid == nil {
		return errors.New("voxel grid not retained; load with SupportsRemeshing")
	}

	mesh := GreedyMesh(grid, m.layout, m.cfg)
	density := BuildDensityTexture(grid, m.palette)

	m.mu.Lock()
	m.mesh = mesh
	m.density = density
	m.mu.Unlock()
	return nil
}

// Scene is everything a host renderer needs from one file: the node tree
// with named nodes and transforms, the layer visibility table, the resolved
// material palette, the shared atlas, and one converted model per model
// record. Palette and atlas are built before any meshing and read-only
// afterwards, so models may be consumed concurrently.
type Scene struct {
	Version  int32
	Graph    *SceneGraph
	Models   []*VoxelModel
	Palette  *Palette
	Atlas    *AtlasLayout
	Images   *AtlasImages
	Warnings []ChunkWarning
}

// Model returns the converted model a shape node references, or nil.
func (s *Scene) Model(id int32) *VoxelModel {
	if id < 0 || int(id) >= len(s.Models) {
		return nil
	}
	return s.Models[id]
}

// LoadScene converts an in-memory .vox buffer into renderable data. The
// pipeline is synchronous and pure: bytes in, data structures out. Any
// failure aborts the whole load; a scene graph with missing pieces is worse
// than no scene.
func LoadScene(data []byte, cfg LoadConfig) (*Scene, error) {
	log := cfg.logger()

	file, err := ParseFile(data, log)
	if err != nil {
		return nil, err
	}

	graph, err := buildSceneGraph(file)
	if err != nil {
		return nil, err
	}

	palette := ResolvePalette(file, cfg.LinearizeColors)

	// Phase 1: densify every model and collect the materials in use. The
	// atlas must be complete before any mesh samples it.
	grids := make([]*VoxelGrid, len(file.Models))
	var used [256]bool
	for i, model := range file.Models {
		grid, err := BuildVoxelGrid(model, palette)
		if err != nil {
			return nil, errors.Wrapf(err, "model %d", i)
		}
		grid.UsedMaterials(&used)
		grids[i] = grid
	}

	layout, err := BuildAtlasLayout(&used)
	if err != nil {
		return nil, err
	}
	images := BuildAtlasImages(layout, palette)

	// Phase 2: mesh each model against the finished atlas.
	models := make([]*VoxelModel, len(grids))
	for i, grid := range grids {
		m := &VoxelModel{
			mesh:    GreedyMesh(grid, layout, cfg),
			density: BuildDensityTexture(grid, palette),
			palette: palette,
			layout:  layout,
			cfg:     cfg,
		}
		if cfg.SupportsRemeshing {
			m.grid = grid
		}
		models[i] = m
		log.Debug("meshed model",
			zap.Int("model", i),
			zap.Int("quads", m.mesh.QuadCount()),
			zap.Bool("cloud", m.density != nil))
	}

	return &Scene{
		Version:  file.Version,
		Graph:    graph,
		Models:   models,
		Palette:  palette,
		Atlas:    layout,
		Images:   images,
		Warnings: file.Warnings,
	}, nil
}

// MeshGrid converts a caller-built grid with the same dense-grid-in,
// mesh-out contract the loader uses, for procedurally generated content.
// The atlas layout covers exactly the materials present in the grid.
func MeshGrid(grid *VoxelGrid, palette *Palette, cfg LoadConfig) (*VoxelModel, *AtlasImages, error) {
	var used [256]bool
	grid.UsedMaterials(&used)
	layout, err := BuildAtlasLayout(&used)
	if err != nil {
		return nil, nil, err
	}
	images := BuildAtlasImages(layout, palette)
	m := &VoxelModel{
		mesh:    GreedyMesh(grid, layout, cfg),
		density: BuildDensityTexture(grid, palette),
		palette: palette,
		layout:  layout,
		cfg:     cfg,
	}
	if cfg.SupportsRemeshing {
		m.grid = grid
	}
	return m, images, nil
}

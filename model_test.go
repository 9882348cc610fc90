package voxscene

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redCubeBytes() []byte {
	return voxContainer(150,
		sizeChunk(2, 2, 2),
		xyziChunk(cubeVoxels(2, 2, 2, 1)...),
		rgbaChunk(map[int][4]byte{0: {255, 0, 0, 255}}),
	)
}

func TestLoadScene(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.LinearizeColors = false

	scene, err := LoadScene(redCubeBytes(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(150), scene.Version)
	assert.Empty(t, scene.Warnings)
	require.Len(t, scene.Models, 1)

	mesh := scene.Models[0].Mesh()
	assert.Equal(t, 6, mesh.QuadCount())
	assert.Len(t, mesh.Vertices, 24)
	assert.Len(t, mesh.Indices, 36)
	for _, v := range mesh.Vertices {
		assert.Equal(t, scene.Atlas.UV(1), v.UV)
	}

	require.NotNil(t, scene.Images)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, scene.Images.Color.RGBAAt(0, 0))

	assert.Same(t, scene.Models[0], scene.Model(0))
	assert.Nil(t, scene.Model(5))
	assert.Nil(t, scene.Model(-1))
}

func TestLoadSceneDeterministic(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(4, 4, 4),
		xyziChunk(cubeVoxels(4, 3, 2, 1)...),
		matlChunk(1, "_type", "_metal", "_weight", "1"),
	)
	a, err := LoadScene(data, DefaultLoadConfig())
	require.NoError(t, err)
	b, err := LoadScene(data, DefaultLoadConfig())
	require.NoError(t, err)
	assert.Equal(t, a.Models[0].Mesh(), b.Models[0].Mesh())
	assert.Equal(t, a.Atlas, b.Atlas)
	assert.Equal(t, a.Images, b.Images)
}

func TestLoadSceneDanglingModel(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 1, -1, nil),
		nshpChunk(1, 3),
	)
	_, err := LoadScene(data, DefaultLoadConfig())
	var derr *DanglingReferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "model", derr.Kind)
}

func TestVoxelModelWithoutRetainedGrid(t *testing.T) {
	scene, err := LoadScene(redCubeBytes(), DefaultLoadConfig())
	require.NoError(t, err)
	m := scene.Models[0]

	_, err = m.VoxelAt(0, 0, 0)
	assert.Error(t, err)
	assert.Error(t, m.SetVoxel(0, 0, 0, 1))
	assert.Error(t, m.Remesh())

	sx, sy, sz := m.Size()
	assert.Equal(t, [3]int{0, 0, 0}, [3]int{sx, sy, sz})
}

func TestVoxelModelRemesh(t *testing.T) {
	cfg := DefaultLoadConfig()
	cfg.SupportsRemeshing = true

	scene, err := LoadScene(redCubeBytes(), cfg)
	require.NoError(t, err)
	m := scene.Models[0]

	sx, sy, sz := m.Size()
	assert.Equal(t, [3]int{2, 2, 2}, [3]int{sx, sy, sz})
	v, err := m.VoxelAt(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)

	// Carving out a corner exposes three interior faces; the mesh does not
	// change until Remesh runs.
	require.NoError(t, m.SetVoxel(0, 0, 0, 0))
	assert.Equal(t, 6, m.Mesh().QuadCount())
	require.NoError(t, m.Remesh())
	assert.Equal(t, 12, m.Mesh().QuadCount())

	v, err = m.VoxelAt(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)

	assert.Error(t, m.SetVoxel(5, 0, 0, 1))
}

func TestMeshGrid(t *testing.T) {
	var pal Palette
	pal[1] = PaletteEntry{Color: [4]uint8{10, 20, 30, 255}, Roughness: 0.5}

	g := filledGrid(3, 3, 3, 1)
	model, imgs, err := MeshGrid(g, &pal, DefaultLoadConfig())
	require.NoError(t, err)
	assert.Equal(t, 6, model.Mesh().QuadCount())
	require.NotNil(t, imgs)
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, imgs.Color.RGBAAt(0, 0))
}

func TestMeshGridRetainsGridForRemeshing(t *testing.T) {
	var pal Palette
	pal[1] = PaletteEntry{Roughness: 0.5}

	cfg := DefaultLoadConfig()
	cfg.SupportsRemeshing = true
	model, _, err := MeshGrid(filledGrid(2, 2, 2, 1), &pal, cfg)
	require.NoError(t, err)

	require.NoError(t, model.SetVoxel(0, 0, 0, 0))
	require.NoError(t, model.Remesh())
	assert.Equal(t, 12, model.Mesh().QuadCount())
}

func TestAssetServer(t *testing.T) {
	srv := NewAssetServer()
	sceneID, modelIDs, err := srv.LoadScene(redCubeBytes(), DefaultLoadConfig())
	require.NoError(t, err)
	require.Len(t, modelIDs, 1)

	scene := srv.Scene(sceneID)
	require.NotNil(t, scene)
	assert.Same(t, scene.Models[0], srv.Model(modelIDs[0]))

	srv.Remove(sceneID)
	assert.Nil(t, srv.Scene(sceneID))
	assert.NotNil(t, srv.Model(modelIDs[0]))

	srv.Remove(modelIDs[0])
	assert.Nil(t, srv.Model(modelIDs[0]))
}

func TestAssetServerAddModel(t *testing.T) {
	var pal Palette
	pal[1] = PaletteEntry{Roughness: 0.5}
	model, _, err := MeshGrid(filledGrid(1, 1, 1, 1), &pal, DefaultLoadConfig())
	require.NoError(t, err)

	srv := NewAssetServer()
	id := srv.AddModel(model)
	assert.Same(t, model, srv.Model(id))
	assert.Nil(t, srv.Model(AssetId("nope")))
}

func TestAssetServerLoadSceneError(t *testing.T) {
	srv := NewAssetServer()
	_, _, err := srv.LoadScene([]byte("not a vox file"), DefaultLoadConfig())
	require.Error(t, err)
}

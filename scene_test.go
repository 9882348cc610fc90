package voxscene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphFixture builds a file with the canonical MagicaVoxel node layout:
// transform -> group -> transform -> shape. References point forward in the
// stream, which the format allows.
func graphFixture() []byte {
	return voxContainer(150,
		sizeChunk(1, 1, 1),
		xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 1, -1, nil, []string{"_t", "4 5 6"}),
		ngrpChunk(1, 2),
		ntrnChunk(2, 3, 0, []string{"_name", "cube", "_hidden", "1"}, []string{"_t", "1 2 3"}),
		nshpChunk(3, 0),
		layrChunk(0, "_name", "base"),
	)
}

func TestBuildSceneGraph(t *testing.T) {
	f, err := ParseFile(graphFixture(), nil)
	require.NoError(t, err)
	g, err := buildSceneGraph(f)
	require.NoError(t, err)

	require.Len(t, g.Roots, 1)
	root := g.Roots[0]
	assert.Equal(t, int32(0), root.ID)
	assert.Equal(t, VoxNodeTransform, root.Kind)

	require.NotNil(t, root.Child)
	assert.Equal(t, VoxNodeGroup, root.Child.Kind)
	require.Len(t, root.Child.Children, 1)

	cube := root.FindByName("cube")
	require.NotNil(t, cube)
	assert.Equal(t, int32(2), cube.ID)
	assert.True(t, cube.Hidden)
	assert.Equal(t, int32(0), cube.LayerID)
	require.Len(t, cube.Frames, 1)
	assert.Equal(t, [3]int32{1, 2, 3}, cube.Frames[0].Translation)

	shape := cube.Child
	require.NotNil(t, shape)
	assert.Equal(t, VoxNodeShape, shape.Kind)
	assert.Equal(t, []int32{0}, root.ModelIDs())

	require.Contains(t, g.Layers, int32(0))
	assert.Equal(t, "base", g.Layers[0].Name)
}

func TestBuildSceneGraphRootTransform(t *testing.T) {
	f, err := ParseFile(graphFixture(), nil)
	require.NoError(t, err)
	g, err := buildSceneGraph(f)
	require.NoError(t, err)

	m := g.Roots[0].LocalTransform()
	col := m.Col(3)
	assert.Equal(t, float32(4), col.X())
	assert.Equal(t, float32(5), col.Y())
	assert.Equal(t, float32(6), col.Z())

	// Group nodes carry no transform of their own.
	assert.Equal(t, mgl32.Ident4(), g.Roots[0].Child.LocalTransform())
}

func TestBuildSceneGraphDuplicateNodeID(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 7, -1, nil),
		ntrnChunk(0, 8, -1, nil),
	)
	f, err := ParseFile(data, nil)
	require.NoError(t, err)
	_, err = buildSceneGraph(f)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "twice")
}

func TestBuildSceneGraphDanglingNode(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 42, -1, nil),
	)
	f, err := ParseFile(data, nil)
	require.NoError(t, err)
	_, err = buildSceneGraph(f)
	var derr *DanglingReferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "node", derr.Kind)
	assert.Equal(t, int32(0), derr.From)
	assert.Equal(t, int32(42), derr.ID)
}

func TestBuildSceneGraphDanglingGroupChild(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 1, -1, nil),
		ngrpChunk(1, 99),
	)
	f, err := ParseFile(data, nil)
	require.NoError(t, err)
	_, err = buildSceneGraph(f)
	var derr *DanglingReferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "node", derr.Kind)
	assert.Equal(t, int32(99), derr.ID)
}

func TestBuildSceneGraphDanglingModel(t *testing.T) {
	data := voxContainer(150,
		sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}),
		ntrnChunk(0, 1, -1, nil),
		nshpChunk(1, 5),
	)
	f, err := ParseFile(data, nil)
	require.NoError(t, err)
	_, err = buildSceneGraph(f)
	var derr *DanglingReferenceError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "model", derr.Kind)
	assert.Equal(t, int32(1), derr.From)
	assert.Equal(t, int32(5), derr.ID)
}

func TestBuildSceneGraphNoNodes(t *testing.T) {
	data := voxContainer(150, sizeChunk(1, 1, 1), xyziChunk(VoxelRecord{Index: 1}))
	f, err := ParseFile(data, nil)
	require.NoError(t, err)
	g, err := buildSceneGraph(f)
	require.NoError(t, err)
	assert.Empty(t, g.Roots)
	assert.Empty(t, g.Nodes)
}

package voxscene

import (
	"go.uber.org/zap"
)

const (
	// VOXMagicNumber is the 4-byte magic at the start of every .vox file.
	VOXMagicNumber = "VOX "

	// MaxModelDimension is the per-axis model size limit of the format.
	MaxModelDimension = 256
)

// supportedVersions lists the .vox container versions this reader accepts.
// 150 is the long-stable MagicaVoxel version; 200 is written by 0.99.7+.
var supportedVersions = map[int32]bool{150: true, 200: true}

// VoxelRecord is one sparse voxel as stored in an XYZI chunk.
type VoxelRecord struct {
	X, Y, Z uint8
	Index   uint8 // palette index, never 0 in conformant files
}

// ModelRecord is the raw per-model data before grid densification.
type ModelRecord struct {
	SizeX, SizeY, SizeZ int32
	Voxels              []VoxelRecord
}

// VoxPalette holds the 256 RGBA palette colors. Index 0 is reserved for
// "no voxel" and is never sampled.
type VoxPalette [256][4]byte

// MaterialRecord is one MATL chunk: a palette index plus the raw property
// dictionary. Interpretation happens in the palette resolver.
type MaterialRecord struct {
	Index int32
	Props voxDict
}

// TransformFrame is one keyframe of a transform node.
type TransformFrame struct {
	Rotation    byte // packed 3x3 rotation, see decodeVoxRotation
	HasRotation bool
	Translation [3]int32
	FrameIndex  int32
}

// ShapeModel is one model reference held by a shape node.
type ShapeModel struct {
	ModelID    int32
	FrameIndex int32
}

// VoxNodeKind discriminates the scene-node variants.
type VoxNodeKind int

const (
	VoxNodeTransform VoxNodeKind = iota
	VoxNodeGroup
	VoxNodeShape
)

// nodeRecord is the flat, unresolved form of a scene-graph chunk. Child IDs
// may legally point forward in the stream; resolution happens after the full
// pass in buildSceneGraph.
type nodeRecord struct {
	id       int32
	kind     VoxNodeKind
	name     string
	hidden   bool
	layerID  int32
	frames   []TransformFrame // transform nodes
	childID  int32            // transform nodes
	children []int32          // group nodes
	models   []ShapeModel     // shape nodes
}

// LayerInfo describes one LAYR chunk.
type LayerInfo struct {
	ID     int32
	Name   string
	Hidden bool
}

// VoxFile is the flat record list produced by the chunk reader. It is
// consumed by the scene-graph builder and the palette resolver and can be
// discarded afterwards.
type VoxFile struct {
	Version   int32
	Models    []ModelRecord
	Palette   VoxPalette
	Materials []MaterialRecord
	Layers    []LayerInfo
	Warnings  []ChunkWarning

	nodes []nodeRecord
}

// chunk is one tagged record of the container, with payload and child-chunk
// regions sliced out of the input buffer.
type chunk struct {
	tag      string
	contents []byte
	children []byte
	offset   int
}

// readChunk reads one chunk header plus its payload regions.
func readChunk(r *voxReader) (chunk, error) {
	c := chunk{offset: r.base + r.pos}
	tag := r.ReadBytes(4)
	n := r.ReadInt32()
	m := r.ReadInt32()
	if err := r.Err(); err != nil {
		return c, err
	}
	if n < 0 || m < 0 {
		return c, parseErrorf(c.offset, "chunk %q declares negative size (%d, %d)", tag, n, m)
	}
	c.tag = string(tag)
	c.contents = r.ReadBytes(int(n))
	c.children = r.ReadBytes(int(m))
	if err := r.Err(); err != nil {
		return c, parseErrorf(c.offset, "chunk %q points past end of buffer", c.tag)
	}
	return c, nil
}

// ParseFile parses an in-memory .vox buffer into flat records. It is a pure
// function of the input bytes: no I/O, no global state. Unknown chunk tags
// are skipped using their declared sizes and reported as warnings.
func ParseFile(data []byte, log *zap.Logger) (*VoxFile, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := newVoxReader(data, 0)
	magic := r.ReadBytes(4)
	version := r.ReadInt32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if string(magic) != VOXMagicNumber {
		return nil, parseErrorf(0, "bad magic %q, want %q", magic, VOXMagicNumber)
	}
	if !supportedVersions[version] {
		return nil, parseErrorf(4, "unsupported version %d", version)
	}

	main, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	if main.tag != "MAIN" {
		return nil, parseErrorf(main.offset, "expected MAIN chunk, got %q", main.tag)
	}
	if len(main.contents) != 0 {
		return nil, parseErrorf(main.offset, "MAIN chunk has %d payload bytes, expected none", len(main.contents))
	}
	r.RequireEOF("MAIN")
	if err := r.Err(); err != nil {
		return nil, err
	}

	f := &VoxFile{Version: version, Palette: defaultPalette()}
	if err := f.parseMainChildren(main, log); err != nil {
		return nil, err
	}
	log.Debug("parsed vox file",
		zap.Int32("version", version),
		zap.Int("models", len(f.Models)),
		zap.Int("nodes", len(f.nodes)),
		zap.Int("materials", len(f.Materials)),
		zap.Int("warnings", len(f.Warnings)))
	return f, nil
}

func (f *VoxFile) parseMainChildren(main chunk, log *zap.Logger) error {
	r := newVoxReader(main.children, main.offset+12+len(main.contents))
	xyziCount := 0
	for r.Remaining() > 0 {
		c, err := readChunk(r)
		if err != nil {
			return err
		}
		switch c.tag {
		case "PACK":
			n, err := parsePackChunk(c)
			if err != nil {
				return err
			}
			if n > 0 {
				f.Models = make([]ModelRecord, 0, n)
			}
		case "SIZE":
			m, err := parseSizeChunk(c)
			if err != nil {
				return err
			}
			f.Models = append(f.Models, m)
		case "XYZI":
			if xyziCount >= len(f.Models) {
				return parseErrorf(c.offset, "XYZI chunk without preceding SIZE")
			}
			if err := parseXYZIChunk(c, &f.Models[xyziCount]); err != nil {
				return err
			}
			xyziCount++
		case "RGBA":
			if err := parseRGBAChunk(c, &f.Palette); err != nil {
				return err
			}
		case "MATL":
			mat, err := parseMatlChunk(c)
			if err != nil {
				return err
			}
			f.Materials = append(f.Materials, mat)
		case "nTRN":
			n, err := parseTransformChunk(c)
			if err != nil {
				return err
			}
			f.nodes = append(f.nodes, n)
		case "nGRP":
			n, err := parseGroupChunk(c)
			if err != nil {
				return err
			}
			f.nodes = append(f.nodes, n)
		case "nSHP":
			n, err := parseShapeChunk(c)
			if err != nil {
				return err
			}
			f.nodes = append(f.nodes, n)
		case "LAYR":
			layer, err := parseLayerChunk(c)
			if err != nil {
				return err
			}
			for _, l := range f.Layers {
				if l.ID == layer.ID {
					return parseErrorf(c.offset, "two LAYR chunks declare id %d", layer.ID)
				}
			}
			f.Layers = append(f.Layers, layer)
		default:
			// Forward compatibility: unknown tags (rOBJ, rCAM, NOTE, IMAP,
			// anything newer) are skipped using their declared sizes.
			w := ChunkWarning{Tag: c.tag, Offset: c.offset, Size: len(c.contents) + len(c.children)}
			f.Warnings = append(f.Warnings, w)
			log.Warn("skipping unknown chunk", zap.String("tag", c.tag), zap.Int("offset", c.offset), zap.Int("size", w.Size))
		}
	}
	return nil
}

func parsePackChunk(c chunk) (int, error) {
	r := newVoxReader(c.contents, c.offset)
	n := r.ReadInt32()
	r.RequireEOF("PACK")
	if err := r.Err(); err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, parseErrorf(c.offset, "PACK declares %d models", n)
	}
	return int(n), nil
}

func parseSizeChunk(c chunk) (ModelRecord, error) {
	r := newVoxReader(c.contents, c.offset)
	x := r.ReadInt32()
	y := r.ReadInt32()
	z := r.ReadInt32()
	r.RequireEOF("SIZE")
	if err := r.Err(); err != nil {
		return ModelRecord{}, err
	}
	for _, d := range [3]int32{x, y, z} {
		if d < 1 || d > MaxModelDimension {
			return ModelRecord{}, parseErrorf(c.offset, "model dimension %d outside [1, %d]", d, MaxModelDimension)
		}
	}
	return ModelRecord{SizeX: x, SizeY: y, SizeZ: z}, nil
}

func parseXYZIChunk(c chunk, model *ModelRecord) error {
	r := newVoxReader(c.contents, c.offset)
	n := r.ReadInt32()
	if err := r.Err(); err != nil {
		return err
	}
	if n < 0 || r.Remaining() != int(n)*4 {
		return parseErrorf(c.offset, "XYZI declares %d voxels but holds %d payload bytes", n, r.Remaining())
	}
	model.Voxels = make([]VoxelRecord, n)
	for i := range model.Voxels {
		model.Voxels[i] = VoxelRecord{
			X:     r.ReadUint8(),
			Y:     r.ReadUint8(),
			Z:     r.ReadUint8(),
			Index: r.ReadUint8(),
		}
	}
	return r.Err()
}

func parseRGBAChunk(c chunk, palette *VoxPalette) error {
	r := newVoxReader(c.contents, c.offset)
	if r.Remaining() != 256*4 {
		return parseErrorf(c.offset, "RGBA chunk holds %d bytes, want %d", r.Remaining(), 256*4)
	}
	// Color i of the chunk maps to palette index i+1; index 0 stays empty.
	for i := 0; i < 255; i++ {
		palette[i+1] = [4]byte{r.ReadUint8(), r.ReadUint8(), r.ReadUint8(), r.ReadUint8()}
	}
	return r.Err()
}

func parseMatlChunk(c chunk) (MaterialRecord, error) {
	r := newVoxReader(c.contents, c.offset)
	id := r.ReadInt32()
	props := r.ReadDict()
	r.RequireEOF("MATL")
	if err := r.Err(); err != nil {
		return MaterialRecord{}, err
	}
	if id < 0 || id > 255 {
		return MaterialRecord{}, parseErrorf(c.offset, "material index %d out of range", id)
	}
	return MaterialRecord{Index: id, Props: props}, nil
}

func parseTransformChunk(c chunk) (nodeRecord, error) {
	r := newVoxReader(c.contents, c.offset)
	n := nodeRecord{kind: VoxNodeTransform}
	n.id = r.ReadInt32()
	attr := r.ReadDict()
	n.childID = r.ReadInt32()
	reserved := r.ReadInt32()
	n.layerID = r.ReadInt32()
	nFrames := r.ReadInt32()
	if err := r.Err(); err != nil {
		return n, err
	}
	if reserved != -1 {
		return n, parseErrorf(c.offset, "nTRN reserved field must be -1, got %d", reserved)
	}
	if nFrames < 1 {
		return n, parseErrorf(c.offset, "nTRN declares %d frames", nFrames)
	}
	for i := int32(0); i < nFrames; i++ {
		fd := r.ReadDict()
		if err := r.Err(); err != nil {
			return n, err
		}
		frame := TransformFrame{
			Translation: fd.Int3("_t", [3]int32{}),
			FrameIndex:  fd.Int("_f", i),
		}
		if rot := fd.String("_r", ""); rot != "" {
			frame.Rotation = byte(fd.Int("_r", 0))
			frame.HasRotation = true
		}
		n.frames = append(n.frames, frame)
	}
	r.RequireEOF("nTRN")
	if err := r.Err(); err != nil {
		return n, err
	}
	n.name = attr.String("_name", "")
	n.hidden = attr.Bool("_hidden", false)
	return n, nil
}

func parseGroupChunk(c chunk) (nodeRecord, error) {
	r := newVoxReader(c.contents, c.offset)
	n := nodeRecord{kind: VoxNodeGroup, layerID: -1}
	n.id = r.ReadInt32()
	attr := r.ReadDict()
	nChildren := r.ReadInt32()
	if err := r.Err(); err != nil {
		return n, err
	}
	if nChildren < 0 {
		return n, parseErrorf(c.offset, "nGRP declares %d children", nChildren)
	}
	for i := int32(0); i < nChildren; i++ {
		n.children = append(n.children, r.ReadInt32())
	}
	r.RequireEOF("nGRP")
	if err := r.Err(); err != nil {
		return n, err
	}
	n.name = attr.String("_name", "")
	n.hidden = attr.Bool("_hidden", false)
	return n, nil
}

func parseShapeChunk(c chunk) (nodeRecord, error) {
	r := newVoxReader(c.contents, c.offset)
	n := nodeRecord{kind: VoxNodeShape, layerID: -1}
	n.id = r.ReadInt32()
	attr := r.ReadDict()
	nModels := r.ReadInt32()
	if err := r.Err(); err != nil {
		return n, err
	}
	if nModels < 1 {
		return n, parseErrorf(c.offset, "nSHP declares %d models", nModels)
	}
	for i := int32(0); i < nModels; i++ {
		modelID := r.ReadInt32()
		md := r.ReadDict()
		if err := r.Err(); err != nil {
			return n, err
		}
		n.models = append(n.models, ShapeModel{
			ModelID:    modelID,
			FrameIndex: md.Int("_f", 0),
		})
	}
	r.RequireEOF("nSHP")
	if err := r.Err(); err != nil {
		return n, err
	}
	n.name = attr.String("_name", "")
	n.hidden = attr.Bool("_hidden", false)
	return n, nil
}

func parseLayerChunk(c chunk) (LayerInfo, error) {
	r := newVoxReader(c.contents, c.offset)
	id := r.ReadInt32()
	attr := r.ReadDict()
	reserved := r.ReadInt32()
	r.RequireEOF("LAYR")
	if err := r.Err(); err != nil {
		return LayerInfo{}, err
	}
	if reserved != -1 {
		return LayerInfo{}, parseErrorf(c.offset, "LAYR reserved field must be -1, got %d", reserved)
	}
	return LayerInfo{
		ID:     id,
		Name:   attr.String("_name", ""),
		Hidden: attr.Bool("_hidden", false),
	}, nil
}

// defaultPalette is the fallback used when a file carries no RGBA chunk.
// Files written by MagicaVoxel always include one.
func defaultPalette() VoxPalette {
	var palette VoxPalette
	for i := 1; i < len(palette); i++ {
		palette[i] = [4]byte{255, 255, 255, 255}
	}
	return palette
}

package voxscene

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// AtlasGridSize is the cell grid dimension of every atlas image: 16x16
// cells, matching the 256-entry palette, one pixel per cell.
const AtlasGridSize = 16

// AtlasCapacity is the maximum number of addressable atlas cells.
const AtlasCapacity = AtlasGridSize * AtlasGridSize

// AtlasLayout maps the distinct materials used by a file's solid voxels to
// fixed-size UV cells. Cell assignment follows ascending palette index, so
// identical material sets always produce identical layouts. Shared read-only
// by every mesh derived from the file.
type AtlasLayout struct {
	cells [256]int16 // palette index -> cell, -1 when unused
	order []uint8    // used palette indices, ascending
}

// BuildAtlasLayout assigns a cell to each used material index.
func BuildAtlasLayout(used *[256]bool) (*AtlasLayout, error) {
	l := &AtlasLayout{}
	for i := range l.cells {
		l.cells[i] = -1
	}
	for i := 1; i < 256; i++ {
		if used[i] {
			l.order = append(l.order, uint8(i))
		}
	}
	if len(l.order) > AtlasCapacity {
		return nil, &AtlasOverflowError{Distinct: len(l.order), Capacity: AtlasCapacity}
	}
	for cell, idx := range l.order {
		l.cells[idx] = int16(cell)
	}
	return l, nil
}

// Used returns the used palette indices in cell order.
func (l *AtlasLayout) Used() []uint8 { return l.order }

// Cell returns the cell assigned to a palette index, or -1.
func (l *AtlasLayout) Cell(index uint8) int { return int(l.cells[index]) }

// UV returns the center of the material's atlas cell. Unused indices map to
// cell 0 so a stale mesh still samples inside the atlas.
func (l *AtlasLayout) UV(index uint8) mgl32.Vec2 {
	cell := l.cells[index]
	if cell < 0 {
		cell = 0
	}
	u := (float32(cell%AtlasGridSize) + 0.5) / AtlasGridSize
	v := (float32(cell/AtlasGridSize) + 0.5) / AtlasGridSize
	return mgl32.Vec2{u, v}
}

// AtlasImages are the per-channel material textures. Channels nobody uses
// are nil; omitting them saves upload bandwidth, it is not a correctness
// requirement. Color is always present when any material is used.
type AtlasImages struct {
	// Color holds the base RGBA color per cell.
	Color *image.RGBA
	// MetalRough packs roughness in G and metalness in B, present when
	// either varies across the used set.
	MetalRough *image.RGBA
	// Emissive holds color scaled by emission strength at 16 bits per
	// channel, present when any used material emits.
	Emissive *image.RGBA64
	// Transmission holds per-cell translucency, present when it varies.
	Transmission *image.Gray16
}

// BuildAtlasImages renders the per-channel images for a layout. Cell order
// is the layout's order, so output is deterministic.
func BuildAtlasImages(layout *AtlasLayout, pal *Palette) *AtlasImages {
	bounds := image.Rect(0, 0, AtlasGridSize, AtlasGridSize)
	imgs := &AtlasImages{Color: image.NewRGBA(bounds)}

	var roughness, metalness, emission, transmission []float32
	for _, idx := range layout.order {
		e := pal[idx]
		roughness = append(roughness, e.Roughness)
		metalness = append(metalness, e.Metalness)
		emission = append(emission, e.Emission)
		transmission = append(transmission, e.Transparency)
	}
	if channelVaries(roughness) || channelVaries(metalness) {
		imgs.MetalRough = image.NewRGBA(bounds)
	}
	if channelUsed(emission) {
		imgs.Emissive = image.NewRGBA64(bounds)
	}
	if channelUsed(transmission) {
		imgs.Transmission = image.NewGray16(bounds)
	}

	for cell, idx := range layout.order {
		e := pal[idx]
		x, y := cell%AtlasGridSize, cell/AtlasGridSize
		imgs.Color.SetRGBA(x, y, color.RGBA{e.Color[0], e.Color[1], e.Color[2], e.Color[3]})
		if imgs.MetalRough != nil {
			imgs.MetalRough.SetRGBA(x, y, color.RGBA{
				G: quantize8(e.Roughness),
				B: quantize8(e.Metalness),
				A: 255,
			})
		}
		if imgs.Emissive != nil {
			imgs.Emissive.SetRGBA64(x, y, color.RGBA64{
				R: quantize16(float32(e.Color[0]) / 255 * e.Emission),
				G: quantize16(float32(e.Color[1]) / 255 * e.Emission),
				B: quantize16(float32(e.Color[2]) / 255 * e.Emission),
				A: 0xffff,
			})
		}
		if imgs.Transmission != nil {
			imgs.Transmission.SetGray16(x, y, color.Gray16{Y: quantize16(e.Transparency)})
		}
	}
	return imgs
}

// channelVaries reports whether the values differ by more than quantization
// noise; a constant channel can be expressed as a material scalar instead.
func channelVaries(values []float32) bool {
	if len(values) == 0 {
		return false
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi-lo >= 0.001
}

func channelUsed(values []float32) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}

func quantize8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func quantize16(v float32) uint16 {
	return uint16(clamp01(v)*0xffff + 0.5)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

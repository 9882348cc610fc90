package voxscene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func props(pairs ...string) voxDict {
	d := voxDict{fields: map[string]string{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		d.fields[pairs[i]] = pairs[i+1]
	}
	return d
}

func fileWithMaterials(mats ...MaterialRecord) *VoxFile {
	return &VoxFile{Palette: defaultPalette(), Materials: mats}
}

func TestResolvePaletteDefaults(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(), false)
	e := pal[1]
	assert.Equal(t, MaterialDiffuse, e.Kind)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, e.Color)
	assert.InDelta(t, 0.5, e.Roughness, 1e-6)
	assert.InDelta(t, 1.0, e.IOR, 1e-6)
	assert.Zero(t, e.Metalness)
	assert.Zero(t, e.Emission)
	assert.Zero(t, e.Transparency)

	// Index 0 is the reserved empty slot.
	assert.Equal(t, PaletteEntry{}, pal[0])
}

func TestResolvePaletteMetal(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 3, Props: props("_type", "_metal", "_weight", "0.75", "_rough", "0.1")},
	), false)
	e := pal[3]
	assert.Equal(t, MaterialMetal, e.Kind)
	assert.InDelta(t, 0.75, e.Metalness, 1e-6)
	assert.InDelta(t, 0.1, e.Roughness, 1e-6)
}

func TestResolvePaletteGlass(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 4, Props: props("_type", "_glass", "_alpha", "0.6", "_ior", "0.5")},
	), false)
	e := pal[4]
	assert.Equal(t, MaterialGlass, e.Kind)
	assert.InDelta(t, 0.6, e.Transparency, 1e-6)
	assert.InDelta(t, 1.5, e.IOR, 1e-6)

	// _trans and _weight act as fallbacks for the alpha value.
	pal = ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 4, Props: props("_type", "_glass", "_trans", "0.3")},
	), false)
	assert.InDelta(t, 0.3, pal[4].Transparency, 1e-6)
}

func TestResolvePaletteEmissive(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 5, Props: props("_type", "_emit", "_emit", "0.5", "_flux", "3")},
	), false)
	e := pal[5]
	assert.Equal(t, MaterialEmissive, e.Kind)
	assert.InDelta(t, 2.0, e.Emission, 1e-6)
}

func TestResolvePaletteCloud(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 6, Props: props("_type", "_media", "_d", "0.2")},
		MaterialRecord{Index: 7, Props: props("_type", "_cloud")},
	), false)
	assert.Equal(t, MaterialCloud, pal[6].Kind)
	assert.InDelta(t, 0.2, pal[6].Density, 1e-6)
	assert.Equal(t, MaterialCloud, pal[7].Kind)
	assert.InDelta(t, 0.05, pal[7].Density, 1e-6)

	assert.True(t, pal.IsCloud(6))
	assert.False(t, pal.IsCloud(1))
	assert.False(t, pal.IsCloud(0))
}

func TestResolvePaletteLastWriteWins(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 2, Props: props("_type", "_metal", "_weight", "1")},
		MaterialRecord{Index: 2, Props: props("_type", "_glass", "_alpha", "0.4")},
	), false)
	assert.Equal(t, MaterialGlass, pal[2].Kind)
	assert.InDelta(t, 0.4, pal[2].Transparency, 1e-6)
}

func TestResolvePaletteIgnoresIndexZero(t *testing.T) {
	pal := ResolvePalette(fileWithMaterials(
		MaterialRecord{Index: 0, Props: props("_type", "_metal")},
	), false)
	assert.Equal(t, PaletteEntry{}, pal[0])
}

func TestResolvePaletteLinearizes(t *testing.T) {
	f := fileWithMaterials()
	f.Palette[1] = [4]byte{128, 0, 255, 200}

	linear := ResolvePalette(f, true)
	assert.Equal(t, [4]uint8{55, 0, 255, 200}, linear[1].Color)

	raw := ResolvePalette(f, false)
	assert.Equal(t, [4]uint8{128, 0, 255, 200}, raw[1].Color)
}

func TestSrgbToLinear(t *testing.T) {
	assert.InDelta(t, 0, srgbToLinear(0), 1e-6)
	assert.InDelta(t, 1, srgbToLinear(1), 1e-6)
	// Below the knee the curve is a straight division.
	assert.InDelta(t, 0.04/12.92, srgbToLinear(0.04), 1e-6)
	require.Less(t, srgbToLinear(0.5), float32(0.5))
}

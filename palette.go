package voxscene

import (
	"github.com/chewxy/math32"
)

// MaterialKind classifies a resolved palette entry.
type MaterialKind int

const (
	MaterialDiffuse MaterialKind = iota
	MaterialMetal
	MaterialGlass
	MaterialEmissive
	// MaterialCloud voxels never produce mesh faces; they only feed the
	// per-model density texture.
	MaterialCloud
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialDiffuse:
		return "diffuse"
	case MaterialMetal:
		return "metal"
	case MaterialGlass:
		return "glass"
	case MaterialEmissive:
		return "emissive"
	case MaterialCloud:
		return "cloud"
	default:
		return "unknown"
	}
}

// PaletteEntry is one fully resolved material slot.
type PaletteEntry struct {
	Color        [4]uint8
	Kind         MaterialKind
	Roughness    float32
	Metalness    float32
	Emission     float32 // emissive strength, scales Color
	Transparency float32 // 0 opaque .. 1 fully translucent
	IOR          float32 // index of refraction, meaningful when Transparency > 0
	Density      float32 // volumetric density, meaningful for cloud entries
}

// Palette holds the 256 resolved material slots of one file. Index 0 is
// always the reserved "no voxel" entry. Built once per file, then read-only.
type Palette [256]PaletteEntry

// ResolvePalette merges MATL overrides onto the file's colors. Overrides are
// applied in file order, so a repeated index is last-write-wins. When
// linearize is set, gamma-encoded palette colors are converted to linear
// RGB to match renderers that sample textures in linear space.
func ResolvePalette(f *VoxFile, linearize bool) *Palette {
	pal := &Palette{}
	for i := 1; i < len(pal); i++ {
		pal[i] = PaletteEntry{
			Color:     f.Palette[i],
			Kind:      MaterialDiffuse,
			Roughness: 0.5,
			IOR:       1.0,
		}
	}

	for _, mat := range f.Materials {
		if mat.Index == 0 {
			continue // index 0 stays reserved
		}
		e := &pal[mat.Index]
		props := mat.Props
		switch props.String("_type", "_diffuse") {
		case "_metal":
			e.Kind = MaterialMetal
			e.Metalness = props.Float("_weight", 1)
			e.Roughness = props.Float("_rough", e.Roughness)
		case "_glass":
			e.Kind = MaterialGlass
			e.Transparency = props.Float("_alpha", props.Float("_trans", props.Float("_weight", 1)))
			e.IOR = 1 + props.Float("_ior", 0.3)
			e.Roughness = props.Float("_rough", e.Roughness)
		case "_emit":
			e.Kind = MaterialEmissive
			// Radiant flux raises emission by powers of ten in the editor.
			e.Emission = props.Float("_emit", 1) * (props.Float("_flux", 0) + 1)
		case "_media", "_cloud":
			e.Kind = MaterialCloud
			e.Density = props.Float("_d", 0.05)
		default:
			e.Kind = MaterialDiffuse
			e.Roughness = props.Float("_rough", e.Roughness)
		}
	}

	if linearize {
		for i := 1; i < len(pal); i++ {
			pal[i].Color = linearizeColor(pal[i].Color)
		}
	}
	return pal
}

// linearizeColor converts one gamma-encoded sRGB color to linear RGB,
// leaving alpha untouched.
func linearizeColor(c [4]uint8) [4]uint8 {
	var out [4]uint8
	for i := 0; i < 3; i++ {
		out[i] = uint8(math32.Round(srgbToLinear(float32(c[i])/255) * 255))
	}
	out[3] = c[3]
	return out
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math32.Pow((v+0.055)/1.055, 2.4)
}

// IsCloud reports whether the palette index maps to a cloud material.
func (p *Palette) IsCloud(index uint8) bool {
	return index != 0 && p[index].Kind == MaterialCloud
}

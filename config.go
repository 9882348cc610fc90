package voxscene

import (
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadConfig controls one conversion run.
type LoadConfig struct {
	// LinearizeColors converts gamma-encoded palette colors to linear RGB
	// for renderers that sample textures in linear space.
	LinearizeColors bool `yaml:"linearize_colors"`

	// SupportsRemeshing retains each model's voxel grid after meshing so
	// later edits can regenerate the mesh without re-parsing the file.
	SupportsRemeshing bool `yaml:"supports_remeshing"`

	// MeshOuterFaces emits faces on the model's outer boundary. Disable for
	// closed interiors that are never seen from outside.
	MeshOuterFaces bool `yaml:"mesh_outer_faces"`

	// VoxelSize scales mesh positions; one voxel spans VoxelSize units.
	VoxelSize float32 `yaml:"voxel_size"`

	// DebugLogging enables per-phase debug output when no Logger is given.
	DebugLogging bool `yaml:"debug_logging"`

	// Logger receives loader diagnostics. Nil means no logging unless
	// DebugLogging is set.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultLoadConfig returns the documented defaults.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		LinearizeColors: true,
		MeshOuterFaces:  true,
		VoxelSize:       1,
	}
}

// ParseLoadConfig reads a yaml document over the defaults. An empty document
// yields DefaultLoadConfig.
func ParseLoadConfig(data []byte) (LoadConfig, error) {
	cfg := DefaultLoadConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return LoadConfig{}, err
	}
	return cfg, nil
}

func (cfg LoadConfig) logger() *zap.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	if cfg.DebugLogging {
		return NewLogger(true)
	}
	return zap.NewNop()
}

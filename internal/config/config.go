// Package config handles terrain engine configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Terrain source modes.
const (
	ModeStatic   = "static"
	ModeTiled    = "tiled"
	ModeFreeform = "freeform"
)

// Configuration errors.
var (
	ErrUnknownMode   = errors.New("unknown terrain mode")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all engine settings.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Landscape LandscapeConfig `yaml:"landscape"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Logging   LoggingConfig   `yaml:"logging"`
	Output    OutputConfig    `yaml:"output"`
}

// TerrainConfig selects and parameterises the heightfield source.
type TerrainConfig struct {
	Mode        string      `yaml:"mode"`         // static, tiled or freeform
	Heightmap   string      `yaml:"heightmap"`    // grayscale image for static mode
	Spacing     float32     `yaml:"spacing"`      // world units between grid points
	HeightScale float32     `yaml:"height_scale"` // world units per full-white pixel
	TileSize    int         `yaml:"tile_size"`    // grid cells per tile (tiled mode)
	Noise       NoiseConfig `yaml:"noise"`
}

// NoiseConfig holds fractal noise parameters for procedural tiled terrain.
type NoiseConfig struct {
	Seed        int64   `yaml:"seed"`
	Frequency   float64 `yaml:"frequency"`
	Amplitude   float64 `yaml:"amplitude"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// LandscapeConfig holds split/merge controller settings.
type LandscapeConfig struct {
	PatchSize   int     `yaml:"patch_size"`   // grid cells per patch side, power of two
	AccuracyDeg float32 `yaml:"accuracy_deg"` // angular error tolerance
	TileWindow  int     `yaml:"tile_window"`  // resident tiles per side (tiled mode)
}

// ViewerConfig holds the view frustum used for error evaluation.
type ViewerConfig struct {
	FOVDeg float32 `yaml:"fov_deg"`
	Aspect float32 `yaml:"aspect"`
	Near   float32 `yaml:"near"`
	Far    float32 `yaml:"far"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// OutputConfig holds export settings.
type OutputConfig struct {
	OBJPath string `yaml:"obj_path"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Mode:        ModeTiled,
			Spacing:     1.0,
			HeightScale: 64.0,
			TileSize:    64,
			Noise: NoiseConfig{
				Seed:        1337,
				Frequency:   0.01,
				Amplitude:   48,
				Octaves:     4,
				Persistence: 0.45,
				Lacunarity:  2.0,
			},
		},
		Landscape: LandscapeConfig{
			PatchSize:   64,
			AccuracyDeg: 0.1,
			TileWindow:  7,
		},
		Viewer: ViewerConfig{
			FOVDeg: 60,
			Aspect: 16.0 / 9.0,
			Near:   0.5,
			Far:    2000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Output: OutputConfig{
			OBJPath: "terrain.obj",
		},
	}
}

// Validate reports configuration errors that would make the landscape
// unusable. Patch sizing is checked again by the landscape itself.
func (c *Config) Validate() error {
	switch c.Terrain.Mode {
	case ModeStatic, ModeTiled, ModeFreeform:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, c.Terrain.Mode)
	}
	if c.Terrain.Mode == ModeStatic && c.Terrain.Heightmap == "" {
		return fmt.Errorf("%w: static mode needs terrain.heightmap", ErrInvalidConfig)
	}
	if c.Terrain.Spacing <= 0 {
		return fmt.Errorf("%w: terrain.spacing must be positive", ErrInvalidConfig)
	}
	if c.Landscape.AccuracyDeg <= 0 {
		return fmt.Errorf("%w: landscape.accuracy_deg must be positive", ErrInvalidConfig)
	}
	if c.Landscape.TileWindow < 1 {
		return fmt.Errorf("%w: landscape.tile_window must be at least 1", ErrInvalidConfig)
	}
	if c.Viewer.FOVDeg <= 0 || c.Viewer.FOVDeg >= 180 {
		return fmt.Errorf("%w: viewer.fov_deg must be in (0, 180)", ErrInvalidConfig)
	}
	if c.Viewer.Near <= 0 || c.Viewer.Far <= c.Viewer.Near {
		return fmt.Errorf("%w: viewer near/far planes", ErrInvalidConfig)
	}
	return nil
}

package terrain

import (
	"fmt"

	"github.com/Faultbox/roam/internal/config"
	"github.com/Faultbox/roam/internal/roam"
)

// Open builds the heightfield source named by cfg. Heightmaps are images or
// height tables. Tiled mode cuts the heightmap into tiles when one is given
// and falls back to noise otherwise.
func Open(cfg config.TerrainConfig) (roam.Source, error) {
	switch cfg.Mode {
	case config.ModeStatic:
		field, err := LoadHeightmap(cfg.Heightmap, cfg.Spacing, cfg.HeightScale)
		if err != nil {
			return nil, err
		}
		return field, nil
	case config.ModeTiled:
		if cfg.Heightmap == "" {
			return openNoise(cfg)
		}
		field, err := LoadHeightmap(cfg.Heightmap, cfg.Spacing, cfg.HeightScale)
		if err != nil {
			return nil, err
		}
		grid, err := NewTileGrid(field, cfg.TileSize)
		if err != nil {
			return nil, err
		}
		return grid, nil
	case config.ModeFreeform:
		return openNoise(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownMode, cfg.Mode)
	}
}

func openNoise(cfg config.TerrainConfig) (roam.Source, error) {
	f, err := NewNoiseField(cfg.Noise, cfg.TileSize, cfg.Spacing)
	if err != nil {
		return nil, err
	}
	return f, nil
}

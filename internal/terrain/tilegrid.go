package terrain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/internal/roam"
	"github.com/Faultbox/roam/pkg/math"
)

// TileGrid presents a heightfield as square tiles of size cells. Only tiles
// lying wholly inside the field exist.
type TileGrid struct {
	field  *Heightfield
	size   int
	active roam.TileRect
	log    *zap.Logger
}

// NewTileGrid cuts field into tiles of size cells.
func NewTileGrid(field *Heightfield, size int) (*TileGrid, error) {
	if !math.IsPowerOfTwo(size) || size < 2 {
		return nil, fmt.Errorf("%w: tile size %d", ErrTileSize, size)
	}
	if field.width-1 < size || field.depth-1 < size {
		return nil, fmt.Errorf("%w: %dx%d points hold no %d-cell tile", ErrGridSize, field.width, field.depth, size)
	}
	return &TileGrid{field: field, size: size, log: logger.Named("terrain.tiles")}, nil
}

// Coordinate returns the world position of a grid point.
func (g *TileGrid) Coordinate(x, z int) math.Vec3 { return g.field.Coordinate(x, z) }

// TileSize returns the tile edge in cells.
func (g *TileGrid) TileSize() int { return g.size }

// GridSpacing returns the world distance between grid points.
func (g *TileGrid) GridSpacing() float32 { return g.field.spacing }

// Tiles returns the number of whole tiles along X and Z.
func (g *TileGrid) Tiles() (nx, nz int) {
	return (g.field.width - 1) / g.size, (g.field.depth - 1) / g.size
}

// TileExists reports whether tile (tx, tz) lies inside the field.
func (g *TileGrid) TileExists(tx, tz int) bool {
	nx, nz := g.Tiles()
	return tx >= 0 && tz >= 0 && tx < nx && tz < nz
}

// SetActiveBounds records the resident window.
func (g *TileGrid) SetActiveBounds(r roam.TileRect) {
	g.active = r
	g.log.Debug("active bounds",
		zap.Int("min_x", r.MinX), zap.Int("min_z", r.MinZ),
		zap.Int("max_x", r.MaxX), zap.Int("max_z", r.MaxZ))
}

// ActiveBounds returns the last window passed to SetActiveBounds.
func (g *TileGrid) ActiveBounds() roam.TileRect { return g.active }

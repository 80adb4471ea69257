package roam

import (
	"github.com/Faultbox/roam/pkg/math"
)

// Source supplies world-space positions for heightfield grid points.
// Grid X runs east and grid Z runs north; the returned Y is the elevation.
type Source interface {
	Coordinate(gridX, gridZ int) math.Vec3
}

// StaticSource is a single fixed-size heightfield.
type StaticSource interface {
	Source
	// GridWidth and GridDepth are point counts along X and Z.
	GridWidth() int
	GridDepth() int
}

// TiledSource is an unbounded heightfield streamed in square tiles.
type TiledSource interface {
	Source
	// TileSize is the number of grid cells along a tile side.
	TileSize() int
	// GridSpacing is the world distance between neighbouring grid points.
	GridSpacing() float32
	TileExists(tileX, tileZ int) bool
	// SetActiveBounds tells the source which tiles must stay resident.
	SetActiveBounds(r TileRect)
}

// Viewer evaluates view-dependent error. Implementations are updated once
// per frame through Look before any Error call.
type Viewer interface {
	Look(position, direction math.Vec3)
	Eye() math.Vec3
	Direction() math.Vec3
	// Error converts the geometric variance of a triangle bounded by the
	// given sphere into a screen-space error. It must be non-negative and
	// must not grow with distance.
	Error(center math.Vec3, radius, variance float32) float32
}

// Sink receives per-patch triangle lists once per frame. The geometry is
// owned by the patch and reused next frame; sinks copy what they keep.
type Sink interface {
	Submit(g *Geometry)
}

// Geometry is the renderable state of one patch: the full vertex grid of the
// patch plus the indices of the current leaf triangles.
type Geometry struct {
	TileX, TileZ     int
	OriginX, OriginZ int
	Size             int
	// Vertices holds (Size+1)^2 world positions, row-major by grid Z.
	Vertices []math.Vec3
	// Indices holds three entries per triangle, counter-clockwise seen from above.
	Indices []uint32
}

// TriangleCount returns the number of triangles in the index list.
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// TileRect is a half-open rectangle of tile coordinates.
type TileRect struct {
	MinX, MinZ int
	MaxX, MaxZ int
}

// Contains reports whether the tile lies inside the rectangle.
func (r TileRect) Contains(tileX, tileZ int) bool {
	return tileX >= r.MinX && tileX < r.MaxX && tileZ >= r.MinZ && tileZ < r.MaxZ
}

// Width returns the number of tile columns.
func (r TileRect) Width() int { return r.MaxX - r.MinX }

// Depth returns the number of tile rows.
func (r TileRect) Depth() int { return r.MaxZ - r.MinZ }

// Empty reports whether the rectangle holds no tiles.
func (r TileRect) Empty() bool { return r.MaxX <= r.MinX || r.MaxZ <= r.MinZ }

// Package terrain provides heightfield sources for the ROAM landscape: an
// in-memory grid, a tiled view over it and an unbounded procedural field.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/roam/pkg/math"
)

// Source errors.
var (
	ErrGridSize   = errors.New("heightfield needs at least 2x2 points")
	ErrSpacing    = errors.New("grid spacing must be positive")
	ErrOutOfRange = errors.New("grid point out of range")
	ErrTileSize   = errors.New("tile size must be a power of two")
)

// Heightfield is a rectangular grid of elevations. Grid X runs east and grid
// Z north; point (x, z) sits at world (x*spacing, height, z*spacing).
type Heightfield struct {
	width, depth int
	spacing      float32
	heights      []float32 // row-major by Z
}

// NewHeightfield creates a flat heightfield with width×depth points.
func NewHeightfield(width, depth int, spacing float32) (*Heightfield, error) {
	if width < 2 || depth < 2 {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridSize, width, depth)
	}
	if !(spacing > 0) {
		return nil, fmt.Errorf("%w: %v", ErrSpacing, spacing)
	}
	return &Heightfield{
		width:   width,
		depth:   depth,
		spacing: spacing,
		heights: make([]float32, width*depth),
	}, nil
}

// GridWidth returns the number of points along X.
func (h *Heightfield) GridWidth() int { return h.width }

// GridDepth returns the number of points along Z.
func (h *Heightfield) GridDepth() int { return h.depth }

// GridSpacing returns the world distance between neighbouring points.
func (h *Heightfield) GridSpacing() float32 { return h.spacing }

func (h *Heightfield) inside(x, z int) bool {
	return x >= 0 && z >= 0 && x < h.width && z < h.depth
}

// Height returns the elevation of a grid point. Points outside the grid are
// clamped to the nearest edge.
func (h *Heightfield) Height(x, z int) float32 {
	x = math.Clamp(x, 0, h.width-1)
	z = math.Clamp(z, 0, h.depth-1)
	return h.heights[z*h.width+x]
}

// Set changes the elevation of a grid point.
func (h *Heightfield) Set(x, z int, height float32) error {
	if !h.inside(x, z) {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, x, z, h.width, h.depth)
	}
	h.heights[z*h.width+x] = height
	return nil
}

// Fill sets every point from a function of its grid coordinate.
func (h *Heightfield) Fill(fn func(x, z int) float32) {
	for z := 0; z < h.depth; z++ {
		row := h.heights[z*h.width : (z+1)*h.width]
		for x := range row {
			row[x] = fn(x, z)
		}
	}
}

// Spike raises a single point, leaving the rest of the field untouched.
func (h *Heightfield) Spike(x, z int, height float32) error {
	return h.Set(x, z, height)
}

// Coordinate returns the world position of a grid point.
func (h *Heightfield) Coordinate(x, z int) math.Vec3 {
	return math.Vec3{
		X: float32(x) * h.spacing,
		Y: h.Height(x, z),
		Z: float32(z) * h.spacing,
	}
}

// Sample returns the bilinearly interpolated elevation at a world position.
func (h *Heightfield) Sample(worldX, worldZ float32) float32 {
	fx := worldX / h.spacing
	fz := worldZ / h.spacing

	cellX := math.Clamp(math.FloorInt(fx), 0, h.width-2)
	cellZ := math.Clamp(math.FloorInt(fz), 0, h.depth-2)
	tx := math.Clamp(fx-float32(cellX), 0, 1)
	tz := math.Clamp(fz-float32(cellZ), 0, 1)

	// south edge then north edge, then between them
	south := math.Lerp(h.Height(cellX, cellZ), h.Height(cellX+1, cellZ), tx)
	north := math.Lerp(h.Height(cellX, cellZ+1), h.Height(cellX+1, cellZ+1), tx)
	return math.Lerp(south, north, tz)
}

// Range returns the lowest and highest elevation.
func (h *Heightfield) Range() (lo, hi float32) {
	lo, hi = h.heights[0], h.heights[0]
	for _, v := range h.heights[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

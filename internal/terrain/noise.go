package terrain

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/internal/config"
	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/internal/roam"
	"github.com/Faultbox/roam/pkg/math"
)

type tileKey struct{ x, z int }

// NoiseField is an unbounded procedural terrain made of hashed fractal value
// noise. Every tile exists. Samples of tiles inside the active window are
// cached; the cache follows SetActiveBounds.
type NoiseField struct {
	cfg     config.NoiseConfig
	size    int
	spacing float32

	active roam.TileRect
	cache  map[tileKey][]float32
	log    *zap.Logger
}

// NewNoiseField creates a noise field cut into tiles of size cells.
func NewNoiseField(cfg config.NoiseConfig, size int, spacing float32) (*NoiseField, error) {
	if !math.IsPowerOfTwo(size) || size < 2 {
		return nil, ErrTileSize
	}
	if !(spacing > 0) {
		return nil, ErrSpacing
	}
	return &NoiseField{
		cfg:     cfg,
		size:    size,
		spacing: spacing,
		cache:   make(map[tileKey][]float32),
		log:     logger.Named("terrain.noise"),
	}, nil
}

// TileSize returns the tile edge in cells.
func (f *NoiseField) TileSize() int { return f.size }

// GridSpacing returns the world distance between grid points.
func (f *NoiseField) GridSpacing() float32 { return f.spacing }

// TileExists is always true.
func (f *NoiseField) TileExists(int, int) bool { return true }

// SetActiveBounds drops cached tiles that left the window.
func (f *NoiseField) SetActiveBounds(r roam.TileRect) {
	f.active = r
	dropped := 0
	for k := range f.cache {
		if !r.Contains(k.x, k.z) {
			delete(f.cache, k)
			dropped++
		}
	}
	f.log.Debug("noise cache trimmed",
		zap.Int("dropped", dropped),
		zap.Int("cached", len(f.cache)))
}

// CachedTiles returns the number of tiles holding cached samples.
func (f *NoiseField) CachedTiles() int { return len(f.cache) }

// Coordinate returns the world position of a grid point.
func (f *NoiseField) Coordinate(x, z int) math.Vec3 {
	return math.Vec3{
		X: float32(x) * f.spacing,
		Y: f.Height(x, z),
		Z: float32(z) * f.spacing,
	}
}

// Height returns the elevation of a grid point.
func (f *NoiseField) Height(x, z int) float32 {
	k := tileKey{math.FloorDiv(x, f.size), math.FloorDiv(z, f.size)}
	if !f.active.Contains(k.x, k.z) {
		return f.sample(x, z)
	}
	tile, ok := f.cache[k]
	if !ok {
		tile = f.fillTile(k)
		f.cache[k] = tile
	}
	return tile[(z-k.z*f.size)*f.size+(x-k.x*f.size)]
}

func (f *NoiseField) fillTile(k tileKey) []float32 {
	tile := make([]float32, f.size*f.size)
	ox, oz := k.x*f.size, k.z*f.size
	for lz := 0; lz < f.size; lz++ {
		for lx := 0; lx < f.size; lx++ {
			tile[lz*f.size+lx] = f.sample(ox+lx, oz+lz)
		}
	}
	return tile
}

func (f *NoiseField) sample(x, z int) float32 {
	return float32(f.fractalNoise(float64(x), float64(z)) * f.cfg.Amplitude)
}

func (f *NoiseField) fractalNoise(x, z float64) float64 {
	frequency := f.cfg.Frequency
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < f.cfg.Octaves; i++ {
		noiseSum += f.valueNoise(x*frequency, z*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= f.cfg.Persistence
		frequency *= f.cfg.Lacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

func (f *NoiseField) valueNoise(x, z float64) float64 {
	x0 := int(stdmath.Floor(x))
	z0 := int(stdmath.Floor(z))

	sx := smooth(x - float64(x0))
	sz := smooth(z - float64(z0))

	south := lerp(random2D(x0, z0, f.cfg.Seed), random2D(x0+1, z0, f.cfg.Seed), sx)
	north := lerp(random2D(x0, z0+1, f.cfg.Seed), random2D(x0+1, z0+1, f.cfg.Seed), sx)
	return lerp(south, north, sz)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// random2D maps a lattice point to [-1, 1).
func random2D(x, z int, seed int64) float64 {
	return float64(hash3(x, z, int(seed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

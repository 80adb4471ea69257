package roam

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/pkg/math"
)

// gazeBias is the horizontal gaze component beyond which the tile window
// leans towards the direction of view.
const gazeBias = 0.5

type tileKey struct {
	x, z int
}

// requiredBounds returns the window of tiles that must be resident for a
// viewer at pos looking along dir. The window is centred on the viewer's tile
// and shifted towards the gaze quadrant; the viewer's tile is always inside.
func requiredBounds(pos, dir math.Vec3, tileWorld float32, window int) TileRect {
	cx := math.FloorInt(pos.X / tileWorld)
	cz := math.FloorInt(pos.Z / tileWorld)
	half := window / 2
	shift := half - 1
	if shift < 0 {
		shift = 0
	}
	minX, minZ := cx-half, cz-half

	gaze := dir.XZ()
	if gaze.Length() > 0 {
		gaze = gaze.Normalize()
		switch {
		case gaze.X > gazeBias:
			minX += shift
		case gaze.X < -gazeBias:
			minX -= shift
		}
		switch {
		case gaze.Y > gazeBias:
			minZ += shift
		case gaze.Y < -gazeBias:
			minZ -= shift
		}
	}
	return TileRect{MinX: minX, MinZ: minZ, MaxX: minX + window, MaxZ: minZ + window}
}

// reconcileTiles evicts patches that left the required window and loads or
// recycles patches for tiles that entered it.
func (l *Landscape) reconcileTiles(pos, dir math.Vec3, stats *FrameStats) {
	src := l.source.(TiledSource)
	tileWorld := float32(l.opts.PatchSize) * src.GridSpacing()
	want := requiredBounds(pos, dir, tileWorld, l.opts.TileWindow)
	stats.Bounds = want
	if l.haveBounds && want == l.bounds {
		return
	}

	var leaving []tileKey
	for key := range l.byTile {
		if !want.Contains(key.x, key.z) {
			leaving = append(leaving, key)
		}
	}
	sort.Slice(leaving, func(i, j int) bool {
		if leaving[i].z != leaving[j].z {
			return leaving[i].z < leaving[j].z
		}
		return leaving[i].x < leaving[j].x
	})
	for _, key := range leaving {
		l.evict(key)
		stats.Evicted++
	}

	src.SetActiveBounds(want)

	for tz := want.MinZ; tz < want.MaxZ; tz++ {
		for tx := want.MinX; tx < want.MaxX; tx++ {
			key := tileKey{tx, tz}
			if _, ok := l.byTile[key]; ok || !src.TileExists(tx, tz) {
				continue
			}
			if l.load(key) {
				stats.Recycled++
			}
			stats.Loaded++
		}
	}

	l.bounds = want
	l.haveBounds = true
	l.rebuildPatchList()
	l.log.Debug("tile window moved",
		zap.Int("min_x", want.MinX), zap.Int("min_z", want.MinZ),
		zap.Int("max_x", want.MaxX), zap.Int("max_z", want.MaxZ),
		zap.Int("loaded", stats.Loaded), zap.Int("evicted", stats.Evicted))
}

func (l *Landscape) evict(key tileKey) {
	p := l.byTile[key]
	p.Clear(l.queue)
	delete(l.byTile, key)
	l.free = append(l.free, p)
}

// load makes a patch resident for a tile and stitches it to every resident
// neighbour. It reports whether the patch came from the free list.
func (l *Landscape) load(key tileKey) bool {
	var p *Patch
	recycled := false
	if n := len(l.free); n > 0 {
		p = l.free[n-1]
		l.free = l.free[:n-1]
		recycled = true
	} else {
		var err error
		if p, err = newPatch(l.opts.PatchSize, l.pool); err != nil {
			panic(err)
		}
	}
	n := l.opts.PatchSize
	p.setTile(key.x, key.z)
	p.SetOrigin(key.x*n, key.z*n)
	p.Reset(l.source)
	p.MakeActive(true)
	l.byTile[key] = p

	for _, s := range Sides {
		dx, dz := s.Offset()
		if o, ok := l.byTile[tileKey{key.x + dx, key.z + dz}]; ok {
			p.SetNeighbour(s, o, l.viewer, l.queue)
		}
	}
	return recycled
}

// rebuildPatchList orders resident patches south to north, west to east.
func (l *Landscape) rebuildPatchList() {
	l.patches = l.patches[:0]
	for _, p := range l.byTile {
		l.patches = append(l.patches, p)
	}
	sort.Slice(l.patches, func(i, j int) bool {
		a, b := l.patches[i], l.patches[j]
		if a.tileZ != b.tileZ {
			return a.tileZ < b.tileZ
		}
		return a.tileX < b.tileX
	})
}

package roam

import (
	"testing"

	"github.com/Faultbox/roam/pkg/math"
)

// gridSource is a heightfield defined by a function. It serves both static
// and tiled landscapes.
type gridSource struct {
	width, depth int
	tile         int
	spacing      float32
	height       func(x, z int) float32
	exists       func(tx, tz int) bool
	bounds       []TileRect
}

func newGridSource(width, depth, tile int, height func(x, z int) float32) *gridSource {
	if height == nil {
		height = func(int, int) float32 { return 0 }
	}
	return &gridSource{width: width, depth: depth, tile: tile, spacing: 1, height: height}
}

func (s *gridSource) Coordinate(x, z int) math.Vec3 {
	return math.Vec3{X: float32(x) * s.spacing, Y: s.height(x, z), Z: float32(z) * s.spacing}
}

func (s *gridSource) GridWidth() int       { return s.width }
func (s *gridSource) GridDepth() int       { return s.depth }
func (s *gridSource) TileSize() int        { return s.tile }
func (s *gridSource) GridSpacing() float32 { return s.spacing }

func (s *gridSource) TileExists(tx, tz int) bool {
	if s.exists == nil {
		return true
	}
	return s.exists(tx, tz)
}

func (s *gridSource) SetActiveBounds(r TileRect) {
	s.bounds = append(s.bounds, r)
}

// plainSource offers coordinates only.
type plainSource struct{}

func (plainSource) Coordinate(x, z int) math.Vec3 {
	return math.Vec3{X: float32(x), Z: float32(z)}
}

// distanceViewer measures error as variance over distance, with no culling.
type distanceViewer struct {
	eye, dir math.Vec3
}

func (v *distanceViewer) Look(position, direction math.Vec3) {
	v.eye, v.dir = position, direction
}

func (v *distanceViewer) Eye() math.Vec3       { return v.eye }
func (v *distanceViewer) Direction() math.Vec3 { return v.dir }

func (v *distanceViewer) Error(center math.Vec3, radius, variance float32) float32 {
	d := center.Distance(v.eye) - radius
	if d < 1 {
		d = 1
	}
	return variance / d
}

// countingSink records the triangle count submitted per tile.
type countingSink struct {
	submits   int
	triangles map[[2]int]int
	onSubmit  func(g *Geometry)
}

func newCountingSink() *countingSink {
	return &countingSink{triangles: make(map[[2]int]int)}
}

func (s *countingSink) Submit(g *Geometry) {
	s.submits++
	s.triangles[[2]int{g.TileX, g.TileZ}] = g.TriangleCount()
	if s.onSubmit != nil {
		s.onSubmit(g)
	}
}

var down = math.Vec3{Y: -1}

// testAccuracy keeps refinement of the small test grids well short of the
// finest level.
var testAccuracy = math.Radians(2)

func spike(cx, cz int, h float32) func(x, z int) float32 {
	return func(x, z int) float32 {
		if x == cx && z == cz {
			return h
		}
		return 0
	}
}

func newStatic(t *testing.T, src *gridSource, patchSize int) *Landscape {
	t.Helper()
	opts := DefaultOptions()
	opts.Mode = ModeStatic
	opts.PatchSize = patchSize
	opts.Accuracy = testAccuracy
	l, err := New(src, &distanceViewer{}, newCountingSink(), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

type globalPoint struct{ x, z int32 }

func global(p *Patch, g gridPoint) globalPoint {
	return globalPoint{int32(p.originX) + g.X, int32(p.originZ) + g.Z}
}

// checkLinks verifies that every leaf link names a live leaf that links back
// with the depth relation the bintree requires.
func checkLinks(t *testing.T, l *Landscape) {
	t.Helper()
	pool := l.pool
	for _, p := range l.patches {
		for _, id := range p.Leaves() {
			n := pool.node(id)
			links := []struct {
				name string
				to   NodeID
				base bool
			}{
				{"base", n.Base, true},
				{"left", n.LeftNbr, false},
				{"right", n.RightNbr, false},
			}
			for _, ln := range links {
				if ln.to == noNode {
					continue
				}
				o := pool.node(ln.to)
				if o.released {
					t.Fatalf("leaf %d %s link names released node %d", id, ln.name, ln.to)
				}
				if !o.IsLeaf() {
					t.Fatalf("leaf %d %s link names internal node %d", id, ln.name, ln.to)
				}
				back := o.Base == id || o.LeftNbr == id || o.RightNbr == id
				if !back {
					t.Fatalf("leaf %d %s link to %d is not mirrored", id, ln.name, ln.to)
				}
				switch {
				case ln.base && o.Base == id && o.Depth != n.Depth:
					t.Fatalf("base partners %d and %d at depths %d and %d", id, ln.to, n.Depth, o.Depth)
				case ln.base && o.Base != id && o.Depth+1 != n.Depth:
					t.Fatalf("leaf %d base neighbour %d is not one level coarser", id, ln.to)
				case !ln.base && o.Base == id && o.Depth != n.Depth+1:
					t.Fatalf("leaf %d leg neighbour %d is not one level finer", id, ln.to)
				case !ln.base && o.Base != id && o.Depth != n.Depth:
					t.Fatalf("leaf %d leg neighbour %d at different depth", id, ln.to)
				}
			}
		}
	}
}

// checkCrackFree fails on any leaf edge whose midpoint is a vertex of another
// leaf, i.e. on any T-junction across the whole landscape.
func checkCrackFree(t *testing.T, l *Landscape) {
	t.Helper()
	checkLinks(t, l)
	vertices := make(map[globalPoint]bool)
	for _, p := range l.patches {
		for _, id := range p.Leaves() {
			n := l.pool.node(id)
			vertices[global(p, n.Apex)] = true
			vertices[global(p, n.Left)] = true
			vertices[global(p, n.Right)] = true
		}
	}
	for _, p := range l.patches {
		for _, id := range p.Leaves() {
			n := l.pool.node(id)
			for _, e := range [3][2]gridPoint{{n.Left, n.Right}, {n.Apex, n.Left}, {n.Apex, n.Right}} {
				a, b := global(p, e[0]), global(p, e[1])
				if (a.x+b.x)%2 != 0 || (a.z+b.z)%2 != 0 {
					continue
				}
				m := globalPoint{(a.x + b.x) / 2, (a.z + b.z) / 2}
				if vertices[m] {
					t.Fatalf("T-junction at (%d,%d) on edge of leaf %d in tile (%d,%d)", m.x, m.z, id, p.tileX, p.tileZ)
				}
			}
		}
	}
}

// checkTiling verifies the resident set against the window and the
// neighbour symmetry of every resident patch.
func checkTiling(t *testing.T, l *Landscape, src *gridSource) {
	t.Helper()
	r := l.Bounds()
	for tz := r.MinZ; tz < r.MaxZ; tz++ {
		for tx := r.MinX; tx < r.MaxX; tx++ {
			if got := l.Patch(tx, tz) != nil; got != src.TileExists(tx, tz) {
				t.Fatalf("tile (%d,%d) resident = %v, exists = %v", tx, tz, got, src.TileExists(tx, tz))
			}
		}
	}
	for _, p := range l.Patches() {
		if !r.Contains(p.tileX, p.tileZ) {
			t.Fatalf("patch (%d,%d) outside window %+v", p.tileX, p.tileZ, r)
		}
		if !p.Active() {
			t.Fatalf("resident patch (%d,%d) inactive", p.tileX, p.tileZ)
		}
		for _, s := range Sides {
			dx, dz := s.Offset()
			want := l.Patch(p.tileX+dx, p.tileZ+dz)
			got := p.Neighbour(s)
			if got != want {
				t.Fatalf("patch (%d,%d) %s neighbour mismatch", p.tileX, p.tileZ, s)
			}
			if got != nil && got.Neighbour(s.Opposite()) != p {
				t.Fatalf("patch (%d,%d) %s neighbour not symmetric", p.tileX, p.tileZ, s)
			}
		}
	}
}

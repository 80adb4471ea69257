package roam

import (
	"testing"

	"github.com/Faultbox/roam/pkg/math"
)

func TestRequiredBounds(t *testing.T) {
	tests := []struct {
		name string
		pos  math.Vec3
		dir  math.Vec3
		want TileRect
	}{
		{"centred looking down", math.Vec3{X: 4, Z: 4}, down, TileRect{-3, -3, 4, 4}},
		{"east gaze", math.Vec3{X: 4, Z: 4}, math.Vec3{X: 1}, TileRect{-1, -3, 6, 4}},
		{"south-west gaze", math.Vec3{X: 4, Z: 4}, math.Vec3{X: -1, Z: -1}, TileRect{-5, -5, 2, 2}},
		{"shallow gaze stays centred", math.Vec3{X: 4, Z: 4}, math.Vec3{X: 0.3, Z: 1}, TileRect{-3, -1, 4, 6}},
		{"negative tile", math.Vec3{X: -0.5, Z: 17}, down, TileRect{-4, -1, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requiredBounds(tt.pos, tt.dir, 8, 7)
			if got != tt.want {
				t.Errorf("requiredBounds() = %+v, want %+v", got, tt.want)
			}
			cx, cz := math.FloorInt(tt.pos.X/8), math.FloorInt(tt.pos.Z/8)
			if !got.Contains(cx, cz) {
				t.Errorf("viewer tile (%d,%d) outside %+v", cx, cz, got)
			}
		})
	}
}

func TestTileRect(t *testing.T) {
	r := TileRect{MinX: -2, MinZ: 1, MaxX: 3, MaxZ: 4}
	if r.Width() != 5 || r.Depth() != 3 || r.Empty() {
		t.Errorf("rect %+v: width %d depth %d empty %v", r, r.Width(), r.Depth(), r.Empty())
	}
	if !r.Contains(-2, 1) || r.Contains(3, 1) || r.Contains(0, 4) {
		t.Error("Contains() must be half-open")
	}
	if !(TileRect{}).Empty() {
		t.Error("zero rect not empty")
	}
}

func newTiled(t *testing.T, src *gridSource) *Landscape {
	t.Helper()
	opts := DefaultOptions()
	opts.PatchSize = src.tile
	opts.Accuracy = testAccuracy
	l, err := New(src, &distanceViewer{}, newCountingSink(), opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

// Scenario D: crossing one tile diagonally swaps one row and one column.
func TestTiledDiagonalMove(t *testing.T) {
	src := newGridSource(0, 0, 8, rolling)
	l := newTiled(t, src)
	if err := l.Initialize(math.Vec3{X: 4, Y: 6, Z: 4}, down); err != nil {
		t.Fatal(err)
	}
	st := l.Stats()
	if st.Patches != 49 || st.Loaded != 49 || st.Recycled != 0 {
		t.Fatalf("initial frame: patches %d loaded %d recycled %d", st.Patches, st.Loaded, st.Recycled)
	}
	if want := (TileRect{-3, -3, 4, 4}); l.Bounds() != want {
		t.Fatalf("Bounds() = %+v, want %+v", l.Bounds(), want)
	}
	checkTiling(t, l, src)
	checkCrackFree(t, l)

	l.SetView(math.Vec3{X: 12, Y: 6, Z: 12}, down)
	st = l.Stats()
	if st.Evicted != 13 || st.Loaded != 13 || st.Recycled != 13 {
		t.Errorf("diagonal move: evicted %d loaded %d recycled %d, want 13 each", st.Evicted, st.Loaded, st.Recycled)
	}
	if st.Patches != 49 || st.FreePatches != 0 {
		t.Errorf("patches %d free %d, want 49 and 0", st.Patches, st.FreePatches)
	}
	if want := (TileRect{-2, -2, 5, 5}); l.Bounds() != want {
		t.Errorf("Bounds() = %+v, want %+v", l.Bounds(), want)
	}
	for _, key := range [][2]int{{-3, 0}, {0, -3}, {-3, -3}} {
		if l.Patch(key[0], key[1]) != nil {
			t.Errorf("tile %v still resident", key)
		}
	}
	for _, key := range [][2]int{{4, 0}, {0, 4}, {4, 4}} {
		if l.Patch(key[0], key[1]) == nil {
			t.Errorf("tile %v not loaded", key)
		}
	}
	if got := src.bounds[len(src.bounds)-1]; got != l.Bounds() {
		t.Errorf("source told %+v, want %+v", got, l.Bounds())
	}
	checkTiling(t, l, src)
	checkCrackFree(t, l)
}

func TestTiledUnchangedWindowSkipsReconcile(t *testing.T) {
	src := newGridSource(0, 0, 8, rolling)
	l := newTiled(t, src)
	if err := l.Initialize(math.Vec3{X: 4, Y: 6, Z: 4}, down); err != nil {
		t.Fatal(err)
	}
	notified := len(src.bounds)
	l.SetView(math.Vec3{X: 5, Y: 6, Z: 3}, down)
	if st := l.Stats(); st.Loaded != 0 || st.Evicted != 0 {
		t.Errorf("same window: loaded %d evicted %d", st.Loaded, st.Evicted)
	}
	if len(src.bounds) != notified {
		t.Errorf("source notified again for an unchanged window")
	}
	checkCrackFree(t, l)
}

func TestTiledMissingTiles(t *testing.T) {
	src := newGridSource(0, 0, 8, rolling)
	src.exists = func(tx, tz int) bool { return tx >= 0 && tz >= 0 && tx < 5 }
	l := newTiled(t, src)
	if err := l.Initialize(math.Vec3{X: 4, Y: 6, Z: 4}, down); err != nil {
		t.Fatal(err)
	}
	if got := l.Stats().Patches; got != 16 {
		t.Errorf("patches = %d, want 16 existing tiles in the window", got)
	}
	if p := l.Patch(0, 0); p.Neighbour(West) != nil || p.Neighbour(South) != nil {
		t.Error("border patch linked to a missing tile")
	}
	checkTiling(t, l, src)
	checkCrackFree(t, l)
}

func TestTiledFlight(t *testing.T) {
	src := newGridSource(0, 0, 8, rolling)
	l := newTiled(t, src)
	pos := math.Vec3{X: 4, Y: 5, Z: 4}
	dir := math.Vec3{X: 1, Y: -0.3, Z: 0.4}
	if err := l.Initialize(pos, dir); err != nil {
		t.Fatal(err)
	}
	for frame := 0; frame < 40; frame++ {
		pos = pos.Add(math.Vec3{X: 1.7, Z: 0.9})
		if frame%10 == 9 {
			dir = math.Vec3{X: -dir.Z, Y: dir.Y, Z: dir.X}
		}
		l.SetView(pos, dir)
		checkTiling(t, l, src)
		checkCrackFree(t, l)
	}
	// Refinement has a unique fixed point, so the flown landscape matches a
	// fresh one at the same pose.
	l2 := newTiled(t, newGridSource(0, 0, 8, rolling))
	if err := l2.Initialize(pos, dir); err != nil {
		t.Fatal(err)
	}
	if l.Stats().Triangles != l2.Stats().Triangles {
		t.Errorf("triangles after flight %d, fresh landscape %d", l.Stats().Triangles, l2.Stats().Triangles)
	}
}

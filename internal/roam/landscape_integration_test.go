package roam_test

import (
	stdmath "math"
	"testing"

	"github.com/Faultbox/roam/internal/camera"
	"github.com/Faultbox/roam/internal/config"
	"github.com/Faultbox/roam/internal/mesh"
	"github.com/Faultbox/roam/internal/roam"
	"github.com/Faultbox/roam/internal/terrain"
	"github.com/Faultbox/roam/pkg/math"
)

func newFrustum(t *testing.T) *camera.Frustum {
	t.Helper()
	f, err := camera.NewFrustum(60, 16.0/9.0, 0.5, 2000)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestStaticHeightfieldWithFrustum(t *testing.T) {
	field, err := terrain.NewHeightfield(129, 129, 1)
	if err != nil {
		t.Fatal(err)
	}
	field.Fill(func(x, z int) float32 {
		return float32(6 * stdmath.Sin(float64(x)*0.2) * stdmath.Cos(float64(z)*0.15))
	})

	collector := mesh.NewCollector()
	opts := roam.DefaultOptions()
	opts.Mode = roam.ModeStatic
	opts.PatchSize = 32
	opts.Accuracy = math.Radians(0.5)
	l, err := roam.New(field, newFrustum(t), collector, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Initialize(math.Vec3{X: 64, Y: 10, Z: 60}, math.Vec3{Y: -0.2, Z: -1}); err != nil {
		t.Fatal(err)
	}

	st := l.Stats()
	if st.Patches != 16 {
		t.Fatalf("patches = %d, want 16", st.Patches)
	}
	if collector.TriangleCount() != st.Triangles {
		t.Errorf("collector triangles %d, stats %d", collector.TriangleCount(), st.Triangles)
	}
	if st.Triangles <= 2*st.Patches {
		t.Errorf("triangles = %d, want refinement in view", st.Triangles)
	}

	// Terrain behind the eye is culled and stays at its roots.
	behind := l.Patch(1, 3)
	ahead := l.Patch(1, 1)
	if behind == nil || ahead == nil {
		t.Fatal("missing patch")
	}
	if behind.TriangleCount() >= ahead.TriangleCount() {
		t.Errorf("triangles behind %d, ahead %d", behind.TriangleCount(), ahead.TriangleCount())
	}

	b := collector.Bounds()
	if b.Min[0] < 0 || b.Max[0] > 128 || b.Min[2] < 0 || b.Max[2] > 128 {
		t.Errorf("mesh bounds %+v outside the field", b)
	}
}

func TestTiledNoiseFlight(t *testing.T) {
	cfg := config.Default().Terrain.Noise
	noise, err := terrain.NewNoiseField(cfg, 16, 1)
	if err != nil {
		t.Fatal(err)
	}
	collector := mesh.NewCollector()
	opts := roam.DefaultOptions()
	opts.PatchSize = 16
	opts.TileWindow = 5
	opts.Accuracy = math.Radians(1)
	l, err := roam.New(noise, newFrustum(t), collector, opts)
	if err != nil {
		t.Fatal(err)
	}

	orbit := camera.NewOrbitCamera()
	orbit.Center = math.Vec3{X: 8, Z: 8}
	orbit.Distance = 40
	orbit.Pitch = 0.4
	if err := l.Initialize(orbit.Position(), orbit.Direction()); err != nil {
		t.Fatal(err)
	}

	for frame := 0; frame < 30; frame++ {
		orbit.Yaw += 0.1
		orbit.HandleMovement(2, 0, 0)
		collector.Reset()
		l.SetView(orbit.Position(), orbit.Direction())

		st := l.Stats()
		if st.Patches != 25 {
			t.Fatalf("frame %d: patches = %d, want 25", frame, st.Patches)
		}
		if got := len(collector.Meshes()); got != st.Patches {
			t.Fatalf("frame %d: %d meshes for %d patches", frame, got, st.Patches)
		}
		if collector.TriangleCount() != st.Triangles {
			t.Fatalf("frame %d: collector triangles %d, stats %d", frame, collector.TriangleCount(), st.Triangles)
		}
		if noise.CachedTiles() > 25 {
			t.Fatalf("frame %d: %d cached tiles for a 5x5 window", frame, noise.CachedTiles())
		}
		for _, m := range collector.Meshes() {
			if !l.Bounds().Contains(m.TileX, m.TileZ) {
				t.Fatalf("frame %d: mesh for tile (%d,%d) outside %+v", frame, m.TileX, m.TileZ, l.Bounds())
			}
		}
	}
}

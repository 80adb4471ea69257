package main

import (
	"fmt"

	"github.com/Faultbox/roam/internal/camera"
	"github.com/Faultbox/roam/internal/config"
	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/internal/mesh"
	"github.com/Faultbox/roam/internal/roam"
	"github.com/Faultbox/roam/internal/terrain"
	"github.com/Faultbox/roam/pkg/math"
)

// session wires a terrain source, a frustum and a mesh collector into a
// landscape driven by an orbit camera.
type session struct {
	cfg       *config.Config
	source    roam.Source
	frustum   *camera.Frustum
	camera    *camera.OrbitCamera
	collector *mesh.Collector
	landscape *roam.Landscape
}

func newSession(cfg *config.Config) (*session, error) {
	mode, err := roam.ParseMode(cfg.Terrain.Mode)
	if err != nil {
		return nil, err
	}
	src, err := terrain.Open(cfg.Terrain)
	if err != nil {
		return nil, err
	}
	v := cfg.Viewer
	frustum, err := camera.NewFrustum(v.FOVDeg, v.Aspect, v.Near, v.Far)
	if err != nil {
		return nil, err
	}

	collector := mesh.NewCollector()
	l, err := roam.New(src, frustum, collector, roam.Options{
		Mode:       mode,
		PatchSize:  cfg.Landscape.PatchSize,
		Accuracy:   math.Radians(cfg.Landscape.AccuracyDeg),
		TileWindow: cfg.Landscape.TileWindow,
		Logger:     logger.Named("roam.landscape"),
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:       cfg,
		source:    src,
		frustum:   frustum,
		camera:    camera.NewOrbitCamera(),
		collector: collector,
		landscape: l,
	}
	s.frameCamera()
	return s, nil
}

// frameCamera points the camera at the whole field, or at the first tile of
// an unbounded source.
func (s *session) frameCamera() {
	switch src := s.source.(type) {
	case *terrain.Heightfield:
		lo, hi := src.Range()
		sp := src.GridSpacing()
		s.camera.FitToBounds(
			math.Vec3{Y: lo},
			math.Vec3{X: float32(src.GridWidth()-1) * sp, Y: hi, Z: float32(src.GridDepth()-1) * sp})
	case roam.TiledSource:
		half := float32(src.TileSize()) * src.GridSpacing() / 2
		s.camera.Center = math.Vec3{X: half, Z: half}
		s.camera.Distance = max(half*2, s.camera.MinDistance)
	}
}

// start runs the first frame.
func (s *session) start() error {
	s.collector.Reset()
	return s.landscape.Initialize(s.camera.Position(), s.camera.Direction())
}

func (s *session) frame() {
	s.collector.Reset()
	s.landscape.SetView(s.camera.Position(), s.camera.Direction())
}

func (s *session) describe() string {
	switch src := s.source.(type) {
	case *terrain.Heightfield:
		lo, hi := src.Range()
		return fmt.Sprintf("Source: static heightfield %dx%d points, spacing %g, heights %.2f..%.2f",
			src.GridWidth(), src.GridDepth(), src.GridSpacing(), lo, hi)
	case *terrain.TileGrid:
		nx, nz := src.Tiles()
		return fmt.Sprintf("Source: tiled heightfield %dx%d tiles of %d cells", nx, nz, src.TileSize())
	case *terrain.NoiseField:
		return fmt.Sprintf("Source: procedural noise, %d-cell tiles, seed %d", src.TileSize(), s.cfg.Terrain.Noise.Seed)
	}
	return fmt.Sprintf("Source: %T", s.source)
}

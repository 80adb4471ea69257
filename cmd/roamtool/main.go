// roamtool drives a ROAM landscape from the command line: it prints the
// effective configuration, flies a scripted camera over the terrain and
// exports single frames as Wavefront OBJ.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/internal/config"
	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/internal/mesh"
	"github.com/Faultbox/roam/internal/roam"
	"github.com/Faultbox/roam/internal/terrain"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	switch command {
	case "info":
		err = cmdInfo(cfg)
	case "fly":
		err = cmdFly(cfg, args)
	case "export", "obj":
		err = cmdExport(cfg, args)
	case "bake":
		err = cmdBake(cfg, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`roamtool - ROAM terrain level-of-detail driver

Usage:
  roamtool [global options] <command> [options]

Commands:
  info                       Show effective configuration and terrain source
  fly [-frames N] [-step S]  Orbit the terrain and print per-frame statistics
  export [-o file.obj]       Refine one frame and write it as Wavefront OBJ
  bake [-o file.hgt] [-tiles N] [-x TX] [-z TZ]
                             Save the terrain as a binary height table

Global options:
  -config path     Config file (default: ./roam.yaml or the user config dir)
  -mode m          static, tiled or freeform
  -heightmap file  Grayscale PNG, BMP or TIFF image, or .hgt height table
  -accuracy deg    Angular error tolerance
  -patch-size n    Grid cells per patch side
  -debug           Debug logging

Examples:
  roamtool info
  roamtool -heightmap hills.png fly -frames 120
  roamtool -mode tiled export -o tiles.obj
  roamtool -mode tiled bake -tiles 4 -o hills.hgt`)
}

func cmdInfo(cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Printf("Config dir: %s\n\n", config.ConfigDir())
	os.Stdout.Write(data)

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(s.describe())
	return nil
}

func cmdFly(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fly", flag.ExitOnError)
	frames := fs.Int("frames", 60, "Number of frames to fly")
	step := fs.Float64("step", 0.02, "Yaw change per frame in radians")
	forward := fs.Float64("forward", 0.5, "Forward pan per frame, scaled by distance")
	fs.Parse(args)

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := s.start(); err != nil {
		return err
	}
	printStatsHeader()
	printStats(s.landscape.Stats())

	for i := 1; i < *frames; i++ {
		s.camera.Yaw += float32(*step)
		s.camera.HandleMovement(float32(*forward), 0, 0)
		s.frame()
		printStats(s.landscape.Stats())
	}
	return nil
}

func cmdExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", cfg.Output.OBJPath, "Output OBJ path")
	fs.Parse(args)

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	if err := s.start(); err != nil {
		return err
	}

	meshes := s.collector.Meshes()
	mesh.SmoothNormals(meshes)
	if err := mesh.WriteOBJFile(*out, meshes); err != nil {
		return err
	}
	st := s.landscape.Stats()
	logger.Info("exported frame",
		zap.String("path", *out),
		zap.Int("patches", len(meshes)),
		zap.Int("triangles", st.Triangles))
	fmt.Printf("Wrote %s: %d patches, %d triangles\n", *out, len(meshes), st.Triangles)
	return nil
}

func cmdBake(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	out := fs.String("o", "terrain"+terrain.RawExt, "Output height table path")
	tiles := fs.Int("tiles", 4, "Tiles per side to sample from a tiled source")
	tx := fs.Int("x", 0, "First tile column")
	tz := fs.Int("z", 0, "First tile row")
	fs.Parse(args)

	src, err := terrain.Open(cfg.Terrain)
	if err != nil {
		return err
	}
	var field *terrain.Heightfield
	switch src := src.(type) {
	case *terrain.Heightfield:
		field = src
	case roam.TiledSource:
		if field, err = terrain.Bake(src, *tx, *tz, *tiles); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot bake %T", src)
	}
	if err := field.SaveRaw(*out); err != nil {
		return err
	}
	logger.Info("baked height table",
		zap.String("path", *out),
		zap.Int("width", field.GridWidth()),
		zap.Int("depth", field.GridDepth()))
	fmt.Printf("Wrote %s: %dx%d points\n", *out, field.GridWidth(), field.GridDepth())
	return nil
}

func printStatsHeader() {
	fmt.Printf("%6s %7s %7s %9s %7s %7s %6s %7s\n",
		"frame", "splits", "merges", "triangles", "patches", "nodes", "loaded", "evicted")
}

func printStats(st roam.FrameStats) {
	fmt.Printf("%6d %7d %7d %9d %7d %7d %6d %7d\n",
		st.Frame, st.Splits, st.Merges, st.Triangles, st.Patches, st.Nodes, st.Loaded, st.Evicted)
}

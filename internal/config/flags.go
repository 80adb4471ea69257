package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagMode      = flag.String("mode", "", "Terrain mode: static, tiled or freeform")
	flagHeightmap = flag.String("heightmap", "", "Heightmap image for static mode")
	flagAccuracy  = flag.Float64("accuracy", 0, "Angular error tolerance in degrees")
	flagPatchSize = flag.Int("patch-size", 0, "Grid cells per patch side")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMode != "" {
		cfg.Terrain.Mode = *flagMode
	}
	if *flagHeightmap != "" {
		cfg.Terrain.Heightmap = *flagHeightmap
		if *flagMode == "" {
			cfg.Terrain.Mode = ModeStatic
		}
	}
	if *flagAccuracy > 0 {
		cfg.Landscape.AccuracyDeg = float32(*flagAccuracy)
	}
	if *flagPatchSize > 0 {
		cfg.Landscape.PatchSize = *flagPatchSize
		cfg.Terrain.TileSize = *flagPatchSize
	}
}

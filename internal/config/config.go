// Package config loads Jokolay's TOML configuration file, grounded on
// pkg/config/load.go's search-path-then-fallback shape.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Overlay OverlayConfig `toml:"overlay"`
	Mumble  MumbleConfig  `toml:"mumble"`
	Package PackageConfig `toml:"package"`
}

// OverlayConfig holds the foreground loop's tick rate and window clamp
// minimums (spec §4.9).
type OverlayConfig struct {
	// PollInterval is the target interval between UI-world ticks.
	PollInterval Duration `toml:"poll_interval"`

	// MinWidth/MinHeight are the overlay window's minimum size, clamped to
	// even when the game window reports smaller.
	MinWidth  int `toml:"min_width"`
	MinHeight int `toml:"min_height"`
}

// MumbleConfig configures the shared-memory game-state reader (spec §4.3).
type MumbleConfig struct {
	// SegmentName is the Mumble Link shared-memory segment name to open.
	SegmentName string `toml:"segment_name"`

	// PollInterval is the background-world tick rate driving shared-memory
	// reads.
	PollInterval Duration `toml:"poll_interval"`
}

// PackageConfig configures where package ingest looks for marker packs
// (spec §4.4).
type PackageConfig struct {
	// SearchPaths are directories scanned for .zip/.taco packages at
	// startup, in order.
	SearchPaths []string `toml:"search_paths"`

	// DataDir is where per-package selection/activation state is persisted
	// (spec §4.5's cats.json/activation.json).
	DataDir string `toml:"data_dir"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() *Config {
	return &Config{
		Overlay: OverlayConfig{
			PollInterval: Duration{16 * time.Millisecond},
			MinWidth:     640,
			MinHeight:    480,
		},
		Mumble: MumbleConfig{
			SegmentName:  "MumbleLink",
			PollInterval: Duration{16 * time.Millisecond},
		},
		Package: PackageConfig{
			SearchPaths: []string{"packages"},
			DataDir:     "data",
		},
	}
}

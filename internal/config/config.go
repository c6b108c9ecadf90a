// Package config loads hicqc configuration from TOML, falling back to
// built-in defaults when no file exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/strandline/hicqc/internal/analysis"
	"github.com/strandline/hicqc/internal/fusion"
)

// Config holds all hicqc configuration.
type Config struct {
	StatePath string `toml:"state_path"`

	Insulation  InsulationConfig  `toml:"insulation"`
	Compartment CompartmentConfig `toml:"compartment"`
	Decay       DecayConfig       `toml:"decay"`
	Pattern     PatternConfig     `toml:"pattern"`
	Fusion      FusionConfig      `toml:"fusion"`
}

type InsulationConfig struct {
	WindowSize int     `toml:"window_size"`
	Prominence float64 `toml:"prominence"`
}

type CompartmentConfig struct {
	BinSize       int     `toml:"bin_size"`
	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
}

type DecayConfig struct {
	MaxDistance int `toml:"max_distance"`
}

type PatternConfig struct {
	Threshold float64 `toml:"threshold"`
}

type FusionConfig struct {
	EdgeMargin  int `toml:"edge_margin"`
	MergeRadius int `toml:"merge_radius"`
}

// DefaultConfig returns config with the analyzers' standard settings.
func DefaultConfig() Config {
	opts := analysis.DefaultOptions()
	return Config{
		StatePath: "~/.local/share/hicqc",
		Insulation: InsulationConfig{
			WindowSize: opts.InsulationWindow,
			Prominence: opts.BoundaryProminence,
		},
		Compartment: CompartmentConfig{
			BinSize:       opts.CompartmentBinSize,
			MaxIterations: opts.MaxIterations,
			Tolerance:     opts.Tolerance,
		},
		Decay: DecayConfig{
			MaxDistance: opts.MaxDecayDistance,
		},
		Pattern: PatternConfig{
			Threshold: opts.PatternThreshold,
		},
		Fusion: FusionConfig{
			EdgeMargin:  opts.Fusion.EdgeMargin,
			MergeRadius: opts.Fusion.MergeRadius,
		},
	}
}

// Load reads config from the standard paths, falling back to defaults.
func Load() (Config, error) {
	cfg := DefaultConfig()

	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			if _, err := toml.DecodeFile(p, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", p, err)
			}
			break
		}
	}

	cfg.StatePath = expandHome(cfg.StatePath)
	return cfg, nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "hicqc", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "hicqc", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Options converts the config into analyzer options.
func (c Config) Options() analysis.Options {
	return analysis.Options{
		InsulationWindow:   c.Insulation.WindowSize,
		BoundaryProminence: c.Insulation.Prominence,
		CompartmentBinSize: c.Compartment.BinSize,
		MaxIterations:      c.Compartment.MaxIterations,
		Tolerance:          c.Compartment.Tolerance,
		MaxDecayDistance:   c.Decay.MaxDistance,
		PatternThreshold:   c.Pattern.Threshold,
		Fusion: fusion.Params{
			EdgeMargin:  c.Fusion.EdgeMargin,
			MergeRadius: c.Fusion.MergeRadius,
		},
	}
}

// DBPath returns the run-history database location.
func (c Config) DBPath() string {
	return filepath.Join(c.StatePath, "runs.db")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_MatchesAnalyzerDefaults(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.Options()

	if opts.InsulationWindow != 10 {
		t.Errorf("expected insulation window 10, got %d", opts.InsulationWindow)
	}
	if opts.Fusion.EdgeMargin != 2 || opts.Fusion.MergeRadius != 3 {
		t.Errorf("unexpected fusion params %+v", opts.Fusion)
	}
	if opts.PatternThreshold != 2.0 {
		t.Errorf("expected pattern threshold 2.0, got %g", opts.PatternThreshold)
	}
}

func TestLoad_NoConfigFileFallsBackToDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Compartment.BinSize != DefaultConfig().Compartment.BinSize {
		t.Errorf("expected default bin size, got %d", cfg.Compartment.BinSize)
	}
}

func TestLoad_ReadsOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "hicqc")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
state_path = "/tmp/hicqc-test"

[insulation]
window_size = 20
prominence = 0.2

[fusion]
merge_radius = 5
`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Insulation.WindowSize != 20 || cfg.Insulation.Prominence != 0.2 {
		t.Errorf("insulation overrides not applied: %+v", cfg.Insulation)
	}
	if cfg.Fusion.MergeRadius != 5 {
		t.Errorf("merge radius override not applied: %d", cfg.Fusion.MergeRadius)
	}
	// Untouched sections keep defaults.
	if cfg.Compartment.MaxIterations != DefaultConfig().Compartment.MaxIterations {
		t.Errorf("unexpected max iterations %d", cfg.Compartment.MaxIterations)
	}
	if cfg.DBPath() != filepath.Join("/tmp/hicqc-test", "runs.db") {
		t.Errorf("unexpected db path %s", cfg.DBPath())
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := filepath.Join(home, ".local", "share", "hicqc")
	if cfg.StatePath != want {
		t.Errorf("expected state path %s, got %s", want, cfg.StatePath)
	}
}

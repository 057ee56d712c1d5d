package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing config, got %v", err)
	}
	if cfg.Analysis.HalfWindow != nil || cfg.Output.Format != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[analysis]
half-window = 150
max-shift = 30
pairs = ["cmd:pos"]
epsilon = 1e-9

[output]
format = "yaml"
store = false

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Analysis.HalfWindow == nil || *cfg.Analysis.HalfWindow != 150 {
		t.Fatalf("unexpected half-window: %v", cfg.Analysis.HalfWindow)
	}
	if cfg.Analysis.MinShift != nil {
		t.Fatalf("expected min-shift unset")
	}
	if cfg.Analysis.Pairs == nil || len(*cfg.Analysis.Pairs) != 1 || (*cfg.Analysis.Pairs)[0] != "cmd:pos" {
		t.Fatalf("unexpected pairs: %v", cfg.Analysis.Pairs)
	}
	if cfg.Analysis.Epsilon == nil || *cfg.Analysis.Epsilon != 1e-9 {
		t.Fatalf("unexpected epsilon: %v", cfg.Analysis.Epsilon)
	}
	if cfg.Output.Format == nil || *cfg.Output.Format != "yaml" {
		t.Fatalf("unexpected format: %v", cfg.Output.Format)
	}
	if cfg.Output.Store == nil || *cfg.Output.Store {
		t.Fatalf("expected store=false")
	}
	if cfg.Logging.Level == nil || *cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected level: %v", cfg.Logging.Level)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[analysis\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "sinecheck", "config.toml") {
		t.Fatalf("unexpected config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "sinecheck", "sinecheck.db") {
		t.Fatalf("unexpected db path %s", got)
	}
}

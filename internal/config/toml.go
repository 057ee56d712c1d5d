// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis AnalysisConfig `toml:"analysis"`
	Output   OutputConfig   `toml:"output"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AnalysisConfig maps lag and stuck-sample settings.
type AnalysisConfig struct {
	HalfWindow *int      `toml:"half-window"`
	MinShift   *int      `toml:"min-shift"`
	MaxShift   *int      `toml:"max-shift"`
	Pairs      *[]string `toml:"pairs"`
	Epsilon    *float64  `toml:"epsilon"`
}

// OutputConfig maps report settings.
type OutputConfig struct {
	Format *string `toml:"format"`
	Store  *bool   `toml:"store"`
	Plot   *bool   `toml:"plot"`
	Color  *bool   `toml:"color"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level *string `toml:"level"`
	JSON  *bool   `toml:"json"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

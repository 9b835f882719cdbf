// Package config loads cmd/cellweave's TOML configuration file and lets
// command-line flags override it, following the flags-win-over-file,
// file-wins-over-defaults convention the slug interpreter's own
// cmd/app/main.go uses for its own (flag-only) configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the shape of ~/.cellweave.toml.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Session SessionConfig `toml:"session"`
}

type LogConfig struct {
	Level string `toml:"level"` // trace|debug|info|warn|error|none
	File  string `toml:"file"`  // empty = stderr
}

type SessionConfig struct {
	Driver string `toml:"driver"` // sqlite|mysql
	DSN    string `toml:"dsn"`
}

// Default returns the built-in configuration used when no file is
// present and no flags override it.
func Default() Config {
	return Config{
		Log:     LogConfig{Level: "info", File: ""},
		Session: SessionConfig{Driver: "sqlite", DSN: "cellweave.db"},
	}
}

// DefaultPath returns ~/.cellweave.toml, falling back to ./.cellweave.toml
// if the user's home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cellweave.toml"
	}
	return filepath.Join(home, ".cellweave.toml")
}

// Load reads path, merging its fields over Default(). A missing file is
// not an error; it simply yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

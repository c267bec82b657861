// Package config handles beatrice.toml host configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents a beatrice.toml host configuration.
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Trace    TraceConfig    `toml:"trace"`
	Snapshot SnapshotConfig `toml:"snapshot"`

	// Dir is the directory containing the beatrice.toml file (set at load time).
	Dir string `toml:"-"`
}

// EngineConfig tunes the call engine.
type EngineConfig struct {
	MaxCallDepth int  `toml:"max-call-depth"`
	Strict       bool `toml:"strict"`
}

// TraceConfig configures call tracing.
type TraceConfig struct {
	Calls     bool `toml:"calls"`
	Verbosity int  `toml:"verbosity"`
}

// SnapshotConfig configures snapshot output.
type SnapshotConfig struct {
	Output        string `toml:"output"`
	IncludeSource bool   `toml:"include-source"`
}

// Default returns a configuration with the stock settings.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxCallDepth: 512,
		},
		Snapshot: SnapshotConfig{
			Output: "beatrice.snapshot",
		},
	}
}

// Load parses a beatrice.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, "beatrice.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if c.Engine.MaxCallDepth <= 0 {
		c.Engine.MaxCallDepth = 512
	}
	if c.Snapshot.Output == "" {
		c.Snapshot.Output = "beatrice.snapshot"
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a beatrice.toml file,
// then loads and returns the configuration. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "beatrice.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SnapshotPath returns the absolute path of the snapshot output file.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Output) {
		return c.Snapshot.Output
	}
	return filepath.Join(c.Dir, c.Snapshot.Output)
}

// Package config loads the admin CLI's region descriptor file. This is
// ambient tooling configuration, not the `~/.splinterrc` label-table
// format the core specification keeps out of scope — it only names
// regions and their creation geometry for operator convenience.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// RegionConfig describes one named region the admin tooling knows about.
type RegionConfig struct {
	Path       string           `toml:"path"`
	Slots      uint64           `toml:"slots"`
	MaxValSize uint64           `toml:"max_val_size"`
	AutoScrub  bool             `toml:"auto_scrub"`
	Hybrid     bool             `toml:"hybrid_scrub"`
	Labels     map[string]uint64 `toml:"labels"`
}

// Config is the top-level descriptor file shape.
type Config struct {
	Regions map[string]RegionConfig `toml:"regions"`
}

// Load reads and parses a TOML descriptor file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := toml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

// LoadEnv loads a .env file (if present) into the process environment,
// mirroring feeder/main.go's env-var driven configuration. Missing files
// are not an error — environment variables may already be set.
func LoadEnv(path string) {
	_ = godotenv.Load(path)
}

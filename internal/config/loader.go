package config

import (
	"os"

	"github.com/thurbox/thurbox/internal/paths"
	"gopkg.in/yaml.v3"
)

// Load resolves the config path via internal/paths, reads it if
// present, merges it over DefaultConfig, applies environment
// overrides, and validates the result.
func Load() (*Config, error) {
	path, err := paths.ConfigYAMLPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads and merges a config.yaml at an explicit path,
// tolerating its absence (defaults apply).
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		var override Config
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, err
		}
		merge(&cfg, &override)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays non-zero fields of override onto base.
func merge(base *Config, override *Config) {
	if override.Program != "" {
		base.Program = override.Program
	}
	if override.Backend.Kind != "" {
		base.Backend.Kind = override.Backend.Kind
	}
	if override.Theme.NoColor {
		base.Theme.NoColor = true
	}
	if override.Sync.PollIntervalMS != 0 {
		base.Sync.PollIntervalMS = override.Sync.PollIntervalMS
	}
	if override.Sync.DebounceMS != 0 {
		base.Sync.DebounceMS = override.Sync.DebounceMS
	}
	if override.Sync.TombstoneTTLSec != 0 {
		base.Sync.TombstoneTTLSec = override.Sync.TombstoneTTLSec
	}
}

// applyEnvOverrides applies the environment variables named in §6:
// NO_COLOR disables styling regardless of config.yaml.
func applyEnvOverrides(cfg *Config) {
	if os.Getenv("NO_COLOR") != "" {
		cfg.Theme.NoColor = true
	}
}

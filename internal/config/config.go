// Package config loads the application's YAML settings file, merges
// it over built-in defaults, applies environment overrides, and
// validates the result — the same load/merge/env/validate pipeline the
// teacher repo used, retargeted at Thurbox's own settings (theme,
// default backend, sync cadence) instead of workflow/skill
// definitions.
package config

import "time"

// Config is the top-level settings document, loaded from
// <config-dir>/thurbox/config.yaml.
type Config struct {
	Theme   ThemeConfig   `yaml:"theme"`
	Backend BackendConfig `yaml:"backend"`
	Sync    SyncConfig    `yaml:"sync"`
	Program string        `yaml:"program"` // the coding-assistant CLI to spawn, e.g. "claude"
}

type ThemeConfig struct {
	NoColor bool `yaml:"no_color"`
}

type BackendConfig struct {
	Kind string `yaml:"kind"` // "tmux" today; reserved for ssh_tmux/container/remote
}

type SyncConfig struct {
	PollIntervalMS  int `yaml:"poll_interval_ms"`
	DebounceMS      int `yaml:"debounce_ms"`
	TombstoneTTLSec int `yaml:"tombstone_ttl_sec"`
}

func (c SyncConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}
func (c SyncConfig) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }
func (c SyncConfig) TombstoneTTL() time.Duration {
	return time.Duration(c.TombstoneTTLSec) * time.Second
}

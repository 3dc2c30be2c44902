package config

// DefaultConfig returns the built-in defaults every loaded config is
// merged over.
func DefaultConfig() Config {
	return Config{
		Theme:   ThemeConfig{NoColor: false},
		Backend: BackendConfig{Kind: "tmux"},
		Sync: SyncConfig{
			PollIntervalMS:  250,
			DebounceMS:      200,
			TombstoneTTLSec: 60,
		},
		Program: "claude",
	}
}

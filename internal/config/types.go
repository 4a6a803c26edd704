// Package config provides configuration loading for Workbench.
// Precedence, lowest to highest: built-in defaults, workbench.yaml,
// WORKBENCH_* environment variables, CLI flags.
package config

import (
	"fmt"
	"time"
)

// Config holds the full Workbench configuration.
type Config struct {
	// Listen is the HTTP API listen address, e.g. ":8060".
	Listen string `koanf:"listen"`

	// StatePath is the local SQLite document store. Ignored when RemoteURL
	// is set.
	StatePath string `koanf:"state_path"`

	// RemoteURL points at a remote document API. When set, documents are
	// persisted there instead of the local store.
	RemoteURL string `koanf:"remote_url"`

	// AutosaveIntervalMS is the auto-save debounce interval in milliseconds.
	AutosaveIntervalMS int `koanf:"autosave_interval_ms"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

// Default configuration values.
const (
	DefaultListen             = ":8060"
	DefaultStatePath          = ".workbench/state.db"
	DefaultAutosaveIntervalMS = 2000
	DefaultLogLevel           = "info"
)

// AutosaveInterval returns the debounce interval as a duration.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.AutosaveIntervalMS) * time.Millisecond
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.AutosaveIntervalMS <= 0 {
		return fmt.Errorf("autosave_interval_ms must be positive, got %d", c.AutosaveIntervalMS)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

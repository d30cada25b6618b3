// Package config defines service configuration and how it is loaded.
//
// Values are layered: defaults from New, an optional YAML file named by
// JOBCHANGES_CONFIG, then JOBCHANGES_* environment variables. CLI flags are
// applied by the caller after Load.
package config

import (
	"fmt"
	"time"
)

// Defaults.
const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultAddr             = ":9080"
	DefaultDataPath         = "data/livedata-weekly-job-changes-2025-07-23.csv"
	DefaultTopN             = 5
	DefaultMaxTopN          = 100
	DefaultTargetYear       = 2025
	DefaultReloadDebounceMS = 500
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the CSV source of job-change records.
	DataPath string `koanf:"data_path"`

	// TopN is the default ranking size.
	TopN int `koanf:"top_n"`

	// MaxTopN caps ?top= on ranking endpoints.
	MaxTopN int `koanf:"max_top_n"`

	// TargetYear is the default year of the weekly series.
	TargetYear int `koanf:"target_year"`

	// WatchData reloads the snapshot when DataPath changes on disk.
	WatchData bool `koanf:"watch_data"`

	// ReloadDebounceMS coalesces bursts of file events.
	ReloadDebounceMS int `koanf:"reload_debounce_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		Addr:             DefaultAddr,
		DataPath:         DefaultDataPath,
		TopN:             DefaultTopN,
		MaxTopN:          DefaultMaxTopN,
		TargetYear:       DefaultTargetYear,
		WatchData:        true,
		ReloadDebounceMS: DefaultReloadDebounceMS,
	}
}

// ReloadDebounce returns ReloadDebounceMS as a duration.
func (c *Config) ReloadDebounce() time.Duration {
	return time.Duration(c.ReloadDebounceMS) * time.Millisecond
}

// Validate checks value ranges. Violations wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataPath == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.MaxTopN < 1:
		return fmt.Errorf("%w: max_top_n must be positive, got %d", ErrInvalidConfig, c.MaxTopN)
	case c.TopN < 1 || c.TopN > c.MaxTopN:
		return fmt.Errorf("%w: top_n must be in [1, %d], got %d", ErrInvalidConfig, c.MaxTopN, c.TopN)
	case c.TargetYear < 1 || c.TargetYear > 9999:
		return fmt.Errorf("%w: target_year must be in [1, 9999], got %d", ErrInvalidConfig, c.TargetYear)
	case c.ReloadDebounceMS < 0:
		return fmt.Errorf("%w: reload_debounce_ms must not be negative", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

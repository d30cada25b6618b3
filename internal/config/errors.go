package config

import "errors"

var (
	// ErrInvalidConfig marks a setting outside its allowed range, such as a
	// top_n above max_top_n or an unknown log_format.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a config file or environment layer that could not
	// be read or decoded.
	ErrLoadConfig = errors.New("load config failed")
)

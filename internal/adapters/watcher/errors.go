package watcher

import "errors"

// Sentinel kinds for watcher errors.
var (
	ErrWatch = errors.New("watch data file failed")
)

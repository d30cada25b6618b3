package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrNoSnapshot = errors.New("no snapshot published")
	ErrClosed     = errors.New("snapshot store closed")
)

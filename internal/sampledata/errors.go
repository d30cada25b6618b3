package sampledata

import "errors"

// Sentinel kinds for generator errors.
var (
	ErrInvalidRows = errors.New("row count must be positive")
	ErrWrite       = errors.New("write sample data")
)

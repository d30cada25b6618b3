package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	// ErrCorruptSource marks input that cannot be parsed as a table at all,
	// e.g. unbalanced quotes or rows wider than the header.
	ErrCorruptSource = errors.New("corrupt data source")
	// ErrLoadSource marks I/O failures other than a missing file.
	ErrLoadSource = errors.New("load data source failed")
)

package logger

import "errors"

// Sentinel kinds for logger setup errors.
var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
	ErrNilWriter     = errors.New("nil log writer")
)

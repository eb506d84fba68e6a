package logger

import "errors"

var (
	// ErrUnknownFormat is returned for a log format other than text or json.
	ErrUnknownFormat = errors.New("unknown log format")
	// ErrUnknownLevel is returned when a level string cannot be parsed.
	ErrUnknownLevel = errors.New("unknown log level")
)

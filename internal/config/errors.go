package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrParse indicates the configuration file failed to parse.
	ErrParse = errors.New("config parse error")

	// ErrInvalidValue indicates a setting holds an unusable value.
	ErrInvalidValue = errors.New("invalid config value")
)

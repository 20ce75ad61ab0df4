package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrNilAdapter is returned when no host adapter is provided.
	ErrNilAdapter = errors.New("engine requires a host adapter")

	// ErrEngineClosed is returned when mounting on a closed engine.
	ErrEngineClosed = errors.New("engine is closed")
)

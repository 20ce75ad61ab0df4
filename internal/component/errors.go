package component

import "errors"

// Errors returned by Mount.
var (
	// ErrNilStore is returned when the store or reconciler is missing.
	ErrNilStore = errors.New("component requires a store and a reconciler")

	// ErrNilRender is returned when the component has no render function.
	ErrNilRender = errors.New("component render function cannot be nil")

	// ErrRenderFailed is returned when the initial render panics.
	ErrRenderFailed = errors.New("component render failed")
)

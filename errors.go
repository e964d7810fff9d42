package psdrun

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Runtime and the compositor.
var (
	// ErrInvalidHandle is returned for handles that name no resident document.
	ErrInvalidHandle = errors.New("psdrun: invalid handle")

	// ErrInvalidBufferSize is returned when a load asks for more bytes than
	// were staged, or for none.
	ErrInvalidBufferSize = errors.New("psdrun: invalid data size")

	// ErrLoadFailure wraps every decoder failure. See LoadError.
	ErrLoadFailure = errors.New("psdrun: load failed")

	// ErrInvalidDimensions is returned when a decoded canvas has zero area.
	ErrInvalidDimensions = errors.New("psdrun: invalid dimensions")

	// ErrLayerNotFound is returned when no node has the requested id.
	ErrLayerNotFound = errors.New("psdrun: layer not found")

	// ErrEmptyBounds is returned for a group with no visible content.
	ErrEmptyBounds = errors.New("psdrun: empty bounds")

	// ErrNullImage is returned for a leaf without pixel data.
	ErrNullImage = errors.New("psdrun: null image")

	// ErrNotATextLayer is returned by text mutation on a non-text or
	// run-less layer.
	ErrNotATextLayer = errors.New("psdrun: not a text layer")

	// ErrHandleTableExhausted is returned when every handle slot is in use.
	ErrHandleTableExhausted = errors.New("psdrun: too many documents loaded")

	// ErrInvalidJSON is returned by SetHints for malformed input.
	ErrInvalidJSON = errors.New("psdrun: invalid JSON")

	// ErrRenderFailed reports an internal fault recovered during rendering.
	ErrRenderFailed = errors.New("psdrun: render failed")

	// ErrNestingTooDeep is returned when groups nest deeper than the
	// configured limit.
	ErrNestingTooDeep = errors.New("psdrun: group nesting too deep")
)

// LoadError carries the decoder's message for a failed load.
// It matches ErrLoadFailure with errors.Is.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("psdrun: failed to load document: %v", e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoadFailure, e.Err} }

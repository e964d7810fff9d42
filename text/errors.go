package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNoFamilies is returned when a font file declares no family name.
	ErrNoFamilies = errors.New("text: no font families found in file")

	// ErrInvalidSize is returned when a raster of non-positive size is requested.
	ErrInvalidSize = errors.New("text: invalid raster size")

	// ErrInvalidColor is returned by ParseColor for malformed color names.
	ErrInvalidColor = errors.New("text: invalid color")
)

// FontError reports a font file that could not be parsed.
type FontError struct {
	Filename string
	Err      error
}

func (e *FontError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("text: parse font: %v", e.Err)
	}
	return fmt.Sprintf("text: parse font %s: %v", e.Filename, e.Err)
}

func (e *FontError) Unwrap() error { return e.Err }

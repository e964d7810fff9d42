package psdrun

import (
	"fmt"
	"image"
)

// Mask is an 8-bit single-channel image. Values range from 0 (fully
// transparent) to 255 (fully opaque).
type Mask struct {
	width  int
	height int
	data   []uint8
}

// NewMask creates a mask with every value set to 0.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]uint8, width*height),
	}
}

// MaskFromData wraps data without copying. len(data) must be width*height.
func MaskFromData(width, height int, data []uint8) (*Mask, error) {
	if width <= 0 || height <= 0 || len(data) != width*height {
		return nil, fmt.Errorf("psdrun: mask %dx%d with %d bytes: %w", width, height, len(data), ErrInvalidDimensions)
	}
	return &Mask{width: width, height: height, data: data}, nil
}

// NewMaskFromImage builds a mask from the luma of a grayscale-convertible image.
func NewMaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	if g, ok := img.(*image.Gray); ok {
		for y := range m.height {
			copy(m.data[y*m.width:(y+1)*m.width], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return m
	}
	for y := range m.height {
		for x := range m.width {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// BT.601 luma on 16-bit channels, scaled to 8 bits.
			m.data[y*m.width+x] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 24)
		}
	}
	return m
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// At returns the mask value at (x, y).
// Returns 0 for coordinates outside the mask bounds.
func (m *Mask) At(x, y int) uint8 {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0
	}
	return m.data[y*m.width+x]
}

// Set sets the mask value at (x, y).
// Coordinates outside the mask bounds are ignored.
func (m *Mask) Set(x, y int, value uint8) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = value
}

// Fill fills the entire mask with a value.
func (m *Mask) Fill(value uint8) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Data returns the underlying mask data slice.
func (m *Mask) Data() []uint8 {
	return m.data
}

// LayerMask is a grayscale mask positioned in document space. Pixels of
// the layer outside Rect use DefaultColor.
type LayerMask struct {
	Mask         *Mask
	Rect         image.Rectangle
	DefaultColor uint8
}

// value returns the mask value at document coordinate (x, y).
func (lm *LayerMask) value(x, y int) uint8 {
	mx, my := x-lm.Rect.Min.X, y-lm.Rect.Min.Y
	if mx < 0 || my < 0 || mx >= lm.Mask.width || my >= lm.Mask.height {
		return lm.DefaultColor
	}
	return lm.Mask.data[my*lm.Mask.width+mx]
}

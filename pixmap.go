package psdrun

import (
	"fmt"
	"image"
	"image/color"

	intImage "github.com/signal-slot/psd-run/internal/image"
)

// Pixmap is a straight-alpha raster of 3 (RGB) or 4 (RGBA) channels,
// rows tightly packed.
type Pixmap struct {
	width    int
	height   int
	channels int
	data     []uint8
}

// NewPixmap creates a zeroed pixmap. hasAlpha selects 4 channels over 3.
func NewPixmap(width, height int, hasAlpha bool) *Pixmap {
	ch := 3
	if hasAlpha {
		ch = 4
	}
	return &Pixmap{
		width:    width,
		height:   height,
		channels: ch,
		data:     make([]uint8, width*height*ch),
	}
}

// PixmapFromData wraps data without copying. channels must be 3 or 4 and
// data must hold exactly width*height*channels bytes.
func PixmapFromData(width, height, channels int, data []uint8) (*Pixmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("psdrun: pixmap %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("psdrun: pixmap with %d channels", channels)
	}
	if len(data) != width*height*channels {
		return nil, fmt.Errorf("psdrun: pixmap %dx%dx%d needs %d bytes, got %d",
			width, height, channels, width*height*channels, len(data))
	}
	return &Pixmap{width: width, height: height, channels: channels, data: data}, nil
}

// PixmapFromImage copies img into a 4-channel pixmap.
func PixmapFromImage(img image.Image) *Pixmap {
	b := img.Bounds()
	p := NewPixmap(b.Dx(), b.Dy(), true)
	if src, ok := img.(*image.NRGBA); ok {
		for y := range p.height {
			copy(p.data[y*p.width*4:(y+1)*p.width*4], src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return p
	}
	for y := range p.height {
		for x := range p.width {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			p.SetPixel(x, y, c)
		}
	}
	return p
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int { return p.width }

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int { return p.height }

// Channels returns 3 or 4.
func (p *Pixmap) Channels() int { return p.channels }

// HasAlpha reports whether the pixmap carries an alpha channel.
func (p *Pixmap) HasAlpha() bool { return p.channels == 4 }

// Data returns the raw pixel data.
func (p *Pixmap) Data() []uint8 { return p.data }

// Bounds returns the pixmap extent anchored at the origin.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// Pixel returns the color at (x, y). Pixmaps without alpha report A=255.
// Out-of-range coordinates return transparent black.
func (p *Pixmap) Pixel(x, y int) color.NRGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return color.NRGBA{}
	}
	i := (y*p.width + x) * p.channels
	if p.channels == 3 {
		return color.NRGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: 255}
	}
	return color.NRGBA{R: p.data[i], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// SetPixel sets the color at (x, y). Alpha is dropped on 3-channel pixmaps.
func (p *Pixmap) SetPixel(x, y int, c color.NRGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * p.channels
	p.data[i], p.data[i+1], p.data[i+2] = c.R, c.G, c.B
	if p.channels == 4 {
		p.data[i+3] = c.A
	}
}

// Fill sets every pixel to c.
func (p *Pixmap) Fill(c color.NRGBA) {
	for y := range p.height {
		for x := range p.width {
			p.SetPixel(x, y, c)
		}
	}
}

// Clone returns a deep copy.
func (p *Pixmap) Clone() *Pixmap {
	data := make([]uint8, len(p.data))
	copy(data, p.data)
	return &Pixmap{width: p.width, height: p.height, channels: p.channels, data: data}
}

// withAlpha returns p if it already has 4 channels, else a 4-channel copy
// with alpha 255.
func (p *Pixmap) withAlpha() *Pixmap {
	if p.channels == 4 {
		return p
	}
	out := NewPixmap(p.width, p.height, true)
	for i, j := 0, 0; i < len(p.data); i, j = i+3, j+4 {
		out.data[j], out.data[j+1], out.data[j+2], out.data[j+3] = p.data[i], p.data[i+1], p.data[i+2], 255
	}
	return out
}

// imageBuf wraps the pixel data as an internal straight-alpha buffer.
func (p *Pixmap) imageBuf() (*intImage.ImageBuf, error) {
	format := intImage.FormatRGB8
	if p.channels == 4 {
		format = intImage.FormatRGBA8
	}
	return intImage.FromRaw(p.data, p.width, p.height, format)
}

// ToNRGBA returns a straight-alpha image.NRGBA copy.
func (p *Pixmap) ToNRGBA() *image.NRGBA {
	src := p.withAlpha()
	img := image.NewNRGBA(p.Bounds())
	if src == p {
		copy(img.Pix, p.data)
	} else {
		img.Pix = src.data
	}
	return img
}

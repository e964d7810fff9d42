package psdrun

import (
	"image"

	intImage "github.com/signal-slot/psd-run/internal/image"
)

// Image is a rendered raster: row-major RGBA8 with straight alpha.
// X and Y give the document-space position of the top-left pixel.
type Image struct {
	X, Y          int
	Width, Height int
	Pix           []uint8
}

// Rect returns the document-space extent of the image.
func (im *Image) Rect() image.Rectangle {
	return image.Rect(im.X, im.Y, im.X+im.Width, im.Y+im.Height)
}

// At returns the RGBA bytes of the pixel at image coordinate (x, y).
func (im *Image) At(x, y int) [4]uint8 {
	if x < 0 || x >= im.Width || y < 0 || y >= im.Height {
		return [4]uint8{}
	}
	i := (y*im.Width + x) * 4
	return [4]uint8{im.Pix[i], im.Pix[i+1], im.Pix[i+2], im.Pix[i+3]}
}

// NRGBA returns an image.NRGBA sharing Pix, with bounds at the origin.
func (im *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    im.Pix,
		Stride: im.Width * 4,
		Rect:   image.Rect(0, 0, im.Width, im.Height),
	}
}

// imageFromSurface converts a premultiplied surface to a straight-alpha Image.
func imageFromSurface(surface *intImage.ImageBuf, at image.Point) (*Image, error) {
	straight, err := intImage.Unpremultiply(surface)
	if err != nil {
		return nil, err
	}
	return &Image{
		X:      at.X,
		Y:      at.Y,
		Width:  straight.Width(),
		Height: straight.Height(),
		Pix:    straight.Data(),
	}, nil
}

// imageFromPixmap copies p into a straight-alpha Image.
func imageFromPixmap(p *Pixmap, at image.Point) *Image {
	src := p.withAlpha()
	pix := src.data
	if src == p {
		pix = make([]uint8, len(p.data))
		copy(pix, p.data)
	}
	return &Image{X: at.X, Y: at.Y, Width: p.width, Height: p.height, Pix: pix}
}

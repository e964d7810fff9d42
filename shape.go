package psdrun

import (
	"image"
	"math"

	"golang.org/x/image/vector"
)

// kappa places cubic control points so a quarter circle is approximated
// within 0.03% of its radius.
const kappa = 0.5522847498

// rasterizeShape fills a shape layer's outline with its brush color.
// It returns nil for path types other than rectangles.
func rasterizeShape(n *Node) *Pixmap {
	w, h := n.Rect.Dx(), n.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	z := vector.NewRasterizer(w, h)
	fw, fh := float32(w), float32(h)
	switch n.PathType {
	case PathRectangle:
		z.MoveTo(0, 0)
		z.LineTo(fw, 0)
		z.LineTo(fw, fh)
		z.LineTo(0, fh)
		z.ClosePath()
	case PathRoundedRectangle:
		r := float32(math.Min(n.CornerRadius, math.Min(float64(w), float64(h))/2))
		r = max(r, 0)
		k := r * (1 - kappa)
		z.MoveTo(r, 0)
		z.LineTo(fw-r, 0)
		z.CubeTo(fw-k, 0, fw, k, fw, r)
		z.LineTo(fw, fh-r)
		z.CubeTo(fw, fh-k, fw-k, fh, fw-r, fh)
		z.LineTo(r, fh)
		z.CubeTo(k, fh, 0, fh-k, 0, fh-r)
		z.LineTo(0, r)
		z.CubeTo(0, k, k, 0, r, 0)
		z.ClosePath()
	default:
		return nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	z.Draw(dst, dst.Bounds(), image.NewUniform(n.BrushColor), image.Point{})
	return PixmapFromImage(dst)
}

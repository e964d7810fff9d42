package blend

import "github.com/signal-slot/psd-run/internal/image"

// Composite blends src onto dst with src's top-left corner at (x, y) in dst
// coordinates. Both buffers must be FormatRGBAPremul. Pixels of src falling
// outside dst are skipped. Opacity scales every premultiplied source channel
// before fn is applied; opacity <= 0 leaves dst untouched.
func Composite(dst, src *image.ImageBuf, x, y int, fn BlendFunc, opacity float64) {
	if dst == nil || src == nil || opacity <= 0 {
		return
	}
	if fn == nil {
		fn = blendSourceOver
	}
	if opacity > 1 {
		opacity = 1
	}

	srcW, srcH := src.Bounds()
	dstW, dstH := dst.Bounds()

	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+srcW, dstW), min(y+srcH, dstH)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	var scale [256]byte
	for i := range scale {
		scale[i] = ScaleChannel(byte(i), opacity)
	}

	for dy := y0; dy < y1; dy++ {
		in := src.RowBytes(dy - y)
		out := dst.RowBytes(dy)
		for dx := x0; dx < x1; dx++ {
			si := (dx - x) * 4
			sa := scale[in[si+3]]
			if sa == 0 {
				continue
			}
			di := dx * 4
			out[di], out[di+1], out[di+2], out[di+3] = fn(
				scale[in[si]], scale[in[si+1]], scale[in[si+2]], sa,
				out[di], out[di+1], out[di+2], out[di+3],
			)
		}
	}
}

// ScaleChannel multiplies a premultiplied channel by opacity with rounding.
func ScaleChannel(c byte, opacity float64) byte {
	if opacity >= 1 {
		return c
	}
	if opacity <= 0 {
		return 0
	}
	return byte(float64(c)*opacity + 0.5)
}

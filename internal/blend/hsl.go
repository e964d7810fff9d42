package blend

import "math"

// Non-separable modes operate on the whole RGB triplet in normalized [0, 1]
// space. Hue, Saturation, Color and Luminosity follow section 8 of W3C
// Compositing and Blending Level 1. DarkerColor and LighterColor pick
// whichever input has the lower or higher luminance.

// rgb is an unpremultiplied color with components in [0, 1].
type rgb struct {
	r, g, b float32
}

// Lum returns the BT.601 luminance of c.
func Lum(c rgb) float32 {
	return 0.30*c.r + 0.59*c.g + 0.11*c.b
}

// Sat returns max(r, g, b) - min(r, g, b).
func Sat(c rgb) float32 {
	return max(c.r, c.g, c.b) - min(c.r, c.g, c.b)
}

// ClipColor pulls out-of-range components back into [0, 1] toward the
// luminance of c, keeping that luminance unchanged.
func ClipColor(c rgb) rgb {
	l := Lum(c)
	n := min(c.r, c.g, c.b)
	x := max(c.r, c.g, c.b)

	if n < 0 {
		k := l / (l - n)
		c = rgb{l + (c.r-l)*k, l + (c.g-l)*k, l + (c.b-l)*k}
	}
	if x > 1 {
		k := (1 - l) / (x - l)
		c = rgb{l + (c.r-l)*k, l + (c.g-l)*k, l + (c.b-l)*k}
	}
	return c
}

// SetLum shifts c to luminance l.
func SetLum(c rgb, l float32) rgb {
	d := l - Lum(c)
	return ClipColor(rgb{c.r + d, c.g + d, c.b + d})
}

// SetSat rescales c to saturation s keeping the order of its components.
// A gray input stays gray.
func SetSat(c rgb, s float32) rgb {
	lo, mid, hi := sortComponents(&c)
	if *hi > *lo {
		*mid = (*mid - *lo) * s / (*hi - *lo)
		*hi = s
		*lo = 0
	}
	return c
}

func sortComponents(c *rgb) (lo, mid, hi *float32) {
	r, g, b := &c.r, &c.g, &c.b
	switch {
	case *r <= *g && *g <= *b:
		return r, g, b
	case *r <= *b && *b <= *g:
		return r, b, g
	case *b <= *r && *r <= *g:
		return b, r, g
	case *g <= *r && *r <= *b:
		return g, r, b
	case *g <= *b && *b <= *r:
		return g, b, r
	default:
		return b, g, r
	}
}

// Formula: SetLum(SetSat(Cs, Sat(Cb)), Lum(Cb))
func hueOf(src, dst rgb) rgb {
	return SetLum(SetSat(src, Sat(dst)), Lum(dst))
}

// Formula: SetLum(SetSat(Cb, Sat(Cs)), Lum(Cb))
func saturationOf(src, dst rgb) rgb {
	return SetLum(SetSat(dst, Sat(src)), Lum(dst))
}

// Formula: SetLum(Cs, Lum(Cb))
func colorOf(src, dst rgb) rgb {
	return SetLum(src, Lum(dst))
}

// Formula: SetLum(Cb, Lum(Cs))
func luminosityOf(src, dst rgb) rgb {
	return SetLum(dst, Lum(src))
}

func darkerOf(src, dst rgb) rgb {
	if Lum(src) < Lum(dst) {
		return src
	}
	return dst
}

func lighterOf(src, dst rgb) rgb {
	if Lum(src) > Lum(dst) {
		return src
	}
	return dst
}

func blendHue(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, hueOf)
}

func blendSaturation(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, saturationOf)
}

func blendColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, colorOf)
}

func blendLuminosity(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, luminosityOf)
}

func blendDarkerColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, darkerOf)
}

func blendLighterColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da, lighterOf)
}

// nonSeparableBlend unpremultiplies both colors, applies fn to the triplets
// and composites the result with
// Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Cs, Cb).
func nonSeparableBlend(sr, sg, sb, sa, dr, dg, db, da byte, fn func(src, dst rgb) rgb) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	src := rgb{normalize(sr, sa), normalize(sg, sa), normalize(sb, sa)}
	dst := rgb{normalize(dr, da), normalize(dg, da), normalize(db, da)}
	mixed := fn(src, dst)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	channel := func(s, d byte, m float32) byte {
		out := addClamp(mulDiv255(d, invSa), mulDiv255(s, invDa))
		return addClamp(out, mulDiv255(saDa, toByte(m)))
	}
	return channel(sr, dr, mixed.r),
		channel(sg, dg, mixed.g),
		channel(sb, db, mixed.b),
		addClamp(sa, mulDiv255(da, invSa))
}

func normalize(c, a byte) float32 {
	return float32(unpremul(c, a)) / 255
}

func toByte(v float32) byte {
	return clampChannel(int(math.Round(float64(v) * 255)))
}

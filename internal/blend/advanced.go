package blend

import "math"

// channelFunc blends one unpremultiplied source channel s with one
// unpremultiplied backdrop channel d, both in [0, 255].
type channelFunc func(s, d int) int

// separableBlend applies a per-channel blend function using
// Result = (1 - Sa) * D + (1 - Da) * S + Sa * Da * B(Cs, Cb)
// on premultiplied inputs.
func separableBlend(sr, sg, sb, sa, dr, dg, db, da byte, fn channelFunc) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	r := separableChannel(sr, dr, sa, da, invSa, invDa, saDa, fn)
	g := separableChannel(sg, dg, sa, da, invSa, invDa, saDa, fn)
	b := separableChannel(sb, db, sa, da, invSa, invDa, saDa, fn)
	return r, g, b, addClamp(sa, mulDiv255(da, invSa))
}

func separableChannel(s, d, sa, da, invSa, invDa, saDa byte, fn channelFunc) byte {
	mixed := clampChannel(fn(unpremul(s, sa), unpremul(d, da)))
	out := addClamp(mulDiv255(d, invSa), mulDiv255(s, invDa))
	return addClamp(out, mulDiv255(saDa, mixed))
}

// mul255 multiplies two channels and divides by 255 with rounding.
func mul255(a, b int) int {
	return (a*b + 127) / 255
}

// Formula: B(Cb, Cs) = Cb * Cs
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, mul255)
}

// Formula: B(Cb, Cs) = 1 - (1 - Cb) * (1 - Cs)
func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, screenChannel)
}

func screenChannel(s, d int) int {
	return 255 - mul255(255-s, 255-d)
}

// hardLightChannel: multiply when the source is dark, screen when it is light.
func hardLightChannel(s, d int) int {
	if s <= 127 {
		return mul255(2*s, d)
	}
	return screenChannel(2*s-255, d)
}

// Overlay is HardLight with the layers swapped.
func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return hardLightChannel(d, s)
	})
}

func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, hardLightChannel)
}

func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int { return min(s, d) })
}

func blendLighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int { return max(s, d) })
}

// colorDodgeChannel: if Cb == 0: 0, else if Cs == 1: 1, else min(1, Cb / (1 - Cs))
func colorDodgeChannel(s, d int) int {
	if d == 0 {
		return 0
	}
	if s == 255 {
		return 255
	}
	return min(255, d*255/(255-s))
}

// colorBurnChannel: if Cb == 1: 1, else if Cs == 0: 0, else 1 - min(1, (1 - Cb) / Cs)
func colorBurnChannel(s, d int) int {
	if d == 255 {
		return 255
	}
	if s == 0 {
		return 0
	}
	return 255 - min(255, (255-d)*255/s)
}

func blendColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, colorDodgeChannel)
}

func blendColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, colorBurnChannel)
}

func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		sf := float64(s) / 255
		df := float64(d) / 255

		var result float64
		if sf <= 0.5 {
			result = df - (1-2*sf)*df*(1-df)
		} else {
			var dx float64
			if df <= 0.25 {
				dx = ((16*df-12)*df + 4) * df
			} else {
				dx = math.Sqrt(df)
			}
			result = df + (2*sf-1)*(dx-df)
		}
		return int(math.Round(result * 255))
	})
}

func blendDifference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// Formula: Cb + Cs - 2 * Cb * Cs
func blendExclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return s + d - 2*mul255(s, d)
	})
}

// Formula: Cb + Cs - 1
func blendLinearBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return s + d - 255
	})
}

// Formula: Cb + Cs
func blendLinearDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return s + d
	})
}

// vividLightChannel burns with 2*Cs for dark sources and dodges with
// 2*Cs - 1 for light ones.
func vividLightChannel(s, d int) int {
	if s <= 127 {
		return colorBurnChannel(2*s, d)
	}
	return colorDodgeChannel(2*s-255, d)
}

func blendVividLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, vividLightChannel)
}

// Formula: Cb + 2*Cs - 1
func blendLinearLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return d + 2*s - 255
	})
}

func blendPinLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		if s <= 127 {
			return min(d, 2*s)
		}
		return max(d, 2*s-255)
	})
}

// Each channel snaps to 0 or 1 depending on whether Cs + Cb reaches 1.
func blendHardMix(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		if s+d >= 255 {
			return 255
		}
		return 0
	})
}

// Formula: Cb - Cs
func blendSubtract(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		return d - s
	})
}

// Formula: Cb / Cs
func blendDivide(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separableBlend(sr, sg, sb, sa, dr, dg, db, da, func(s, d int) int {
		if s == 0 {
			if d == 0 {
				return 0
			}
			return 255
		}
		return d * 255 / s
	})
}

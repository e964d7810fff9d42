package image

// Premultiply returns a FormatRGBAPremul copy of src.
// RGB8 sources become fully opaque. A premultiplied source is cloned.
func Premultiply(src *ImageBuf) (*ImageBuf, error) {
	dst, err := NewImageBuf(src.width, src.height, FormatRGBAPremul)
	if err != nil {
		return nil, err
	}

	switch src.format {
	case FormatRGBAPremul:
		copy(dst.data, src.data)
	case FormatGray8, FormatRGB8, FormatRGBA8:
		for y := range src.height {
			out := dst.RowBytes(y)
			for x := range src.width {
				r, g, b, a := src.GetRGBA(x, y)
				i := x * 4
				out[i] = premul(r, a)
				out[i+1] = premul(g, a)
				out[i+2] = premul(b, a)
				out[i+3] = a
			}
		}
	default:
		return nil, ErrInvalidFormat
	}
	return dst, nil
}

// Unpremultiply returns a straight-alpha FormatRGBA8 copy of a premultiplied src.
// Fully transparent pixels become (0,0,0,0).
func Unpremultiply(src *ImageBuf) (*ImageBuf, error) {
	if src.format != FormatRGBAPremul {
		return nil, ErrInvalidFormat
	}
	dst, err := NewImageBuf(src.width, src.height, FormatRGBA8)
	if err != nil {
		return nil, err
	}

	for y := range src.height {
		in := src.RowBytes(y)
		out := dst.RowBytes(y)
		for i := 0; i < len(in); i += 4 {
			a := in[i+3]
			if a == 0 {
				continue
			}
			out[i] = unpremul(in[i], a)
			out[i+1] = unpremul(in[i+1], a)
			out[i+2] = unpremul(in[i+2], a)
			out[i+3] = a
		}
	}
	return dst, nil
}

// premul scales a straight channel by alpha with rounding.
func premul(c, a byte) byte {
	return byte((uint16(c)*uint16(a) + 127) / 255)
}

// unpremul recovers a straight channel from a premultiplied one, clamped to 255.
func unpremul(c, a byte) byte {
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

package psdrun

// applyMasks returns pixels with leaf's transparency mask and layer mask
// applied. pixels is never modified; when neither mask applies it is
// returned as is. A nil pixels yields nil.
//
// The transparency mask only supplies alpha for pixels without an alpha
// channel, over the overlap of both extents anchored at the top-left. The
// layer mask then scales alpha by its value at the pixel's document
// position, with integer floor division.
func applyMasks(leaf *Node, pixels *Pixmap) *Pixmap {
	if pixels == nil {
		return nil
	}
	out := pixels

	if tm := leaf.TransparencyMask; tm != nil && !pixels.HasAlpha() {
		out = pixels.withAlpha()
		w, h := min(out.width, tm.width), min(out.height, tm.height)
		for y := range h {
			row := out.data[y*out.width*4:]
			mrow := tm.data[y*tm.width:]
			for x := range w {
				row[x*4+3] = mrow[x]
			}
		}
	}

	if lm := leaf.LayerMask; lm != nil && lm.Mask != nil {
		if out == pixels {
			if pixels.HasAlpha() {
				out = pixels.Clone()
			} else {
				out = pixels.withAlpha()
			}
		}
		ox, oy := leaf.Rect.Min.X, leaf.Rect.Min.Y
		for y := range out.height {
			row := out.data[y*out.width*4:]
			for x := range out.width {
				a := int(row[x*4+3])
				row[x*4+3] = uint8(a * int(lm.value(ox+x, oy+y)) / 255)
			}
		}
	}
	return out
}

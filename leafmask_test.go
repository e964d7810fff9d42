package psdrun

import (
	"bytes"
	"image"
	"testing"
)

func gradientMask(w, h int) *Mask {
	m := NewMask(w, h)
	for y := range h {
		for x := range w {
			m.Set(x, y, uint8((x*37+y*91)%256))
		}
	}
	return m
}

func alphaAt(p *Pixmap, x, y int) uint8 { return p.Pixel(x, y).A }

func TestTransparencyMaskSetsAlpha(t *testing.T) {
	leaf := NewLeaf(1, image.Rect(0, 0, 4, 3), NewPixmap(4, 3, false))
	leaf.Pixels.Fill(red)
	leaf.TransparencyMask = gradientMask(4, 3)

	out := applyMasks(leaf, leaf.Pixels)
	if !out.HasAlpha() {
		t.Fatal("output has no alpha channel")
	}
	for y := range 3 {
		for x := range 4 {
			if got, want := alphaAt(out, x, y), leaf.TransparencyMask.At(x, y); got != want {
				t.Errorf("alpha(%d,%d) = %d, want %d", x, y, got, want)
			}
			if c := out.Pixel(x, y); c.R != 255 || c.G != 0 || c.B != 0 {
				t.Errorf("color(%d,%d) = %v, want red", x, y, c)
			}
		}
	}
	if leaf.Pixels.HasAlpha() {
		t.Error("source pixels were promoted in place")
	}
}

func TestTransparencyMaskPartialExtent(t *testing.T) {
	leaf := NewLeaf(1, image.Rect(0, 0, 4, 4), NewPixmap(4, 4, false))
	leaf.TransparencyMask = NewMask(2, 2)

	out := applyMasks(leaf, leaf.Pixels)
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 0, 255},
		{0, 2, 255},
		{3, 3, 255},
	}
	for _, tt := range tests {
		if got := alphaAt(out, tt.x, tt.y); got != tt.want {
			t.Errorf("alpha(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestTransparencyMaskIgnoredWithAlpha(t *testing.T) {
	pixels := solidPixmap(3, 3, red)
	pixels.SetPixel(1, 1, blue)
	leaf := NewLeaf(1, image.Rect(0, 0, 3, 3), pixels)
	leaf.TransparencyMask = NewMask(3, 3)

	out := applyMasks(leaf, pixels)
	if out != pixels {
		t.Error("pixels with alpha should be returned unchanged")
	}
	for y := range 3 {
		for x := range 3 {
			if a := alphaAt(out, x, y); a != 255 {
				t.Errorf("alpha(%d,%d) = %d, want 255", x, y, a)
			}
		}
	}
}

func TestLayerMask(t *testing.T) {
	tests := []struct {
		name  string
		fill  uint8
		alpha uint8
		want  uint8
	}{
		{"neutral", 255, 200, 200},
		{"zeroing", 0, 200, 0},
		{"half opaque", 128, 255, 128},
		{"floor division", 128, 100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := red
			c.A = tt.alpha
			pixels := solidPixmap(5, 5, c)
			before := bytes.Clone(pixels.Data())

			m := NewMask(5, 5)
			m.Fill(tt.fill)
			leaf := NewLeaf(1, image.Rect(10, 20, 15, 25), pixels)
			leaf.LayerMask = &LayerMask{Mask: m, Rect: leaf.Rect, DefaultColor: 255}

			out := applyMasks(leaf, pixels)
			for y := range 5 {
				for x := range 5 {
					if got := alphaAt(out, x, y); got != tt.want {
						t.Fatalf("alpha(%d,%d) = %d, want %d", x, y, got, tt.want)
					}
					if got := out.Pixel(x, y); got.R != 255 || got.G != 0 || got.B != 0 {
						t.Fatalf("color(%d,%d) = %v, want red", x, y, got)
					}
				}
			}
			if !bytes.Equal(pixels.Data(), before) {
				t.Error("applyMasks modified the source pixels")
			}
		})
	}
}

func TestLayerMaskOffsetAndDefault(t *testing.T) {
	// The mask covers only the right half of the leaf; outside it the
	// default value 255 applies.
	m := NewMask(2, 4)
	leaf := NewLeaf(1, image.Rect(100, 50, 104, 54), solidPixmap(4, 4, red))
	leaf.LayerMask = &LayerMask{Mask: m, Rect: image.Rect(102, 50, 104, 54), DefaultColor: 255}

	out := applyMasks(leaf, leaf.Pixels)
	for y := range 4 {
		for x := range 4 {
			want := uint8(255)
			if x >= 2 {
				want = 0
			}
			if got := alphaAt(out, x, y); got != want {
				t.Errorf("alpha(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestLayerMaskDefaultZero(t *testing.T) {
	m := NewMask(1, 1)
	m.Fill(255)
	leaf := NewLeaf(1, image.Rect(0, 0, 3, 1), NewPixmap(3, 1, false))
	leaf.LayerMask = &LayerMask{Mask: m, Rect: image.Rect(1, 0, 2, 1), DefaultColor: 0}

	out := applyMasks(leaf, leaf.Pixels)
	want := []uint8{0, 255, 0}
	for x, w := range want {
		if got := alphaAt(out, x, 0); got != w {
			t.Errorf("alpha(%d,0) = %d, want %d", x, got, w)
		}
	}
}

func TestMasksApplyInOrder(t *testing.T) {
	tm := NewMask(2, 1)
	tm.Fill(200)
	lm := NewMask(2, 1)
	lm.Fill(128)

	leaf := NewLeaf(1, image.Rect(0, 0, 2, 1), NewPixmap(2, 1, false))
	leaf.TransparencyMask = tm
	leaf.LayerMask = &LayerMask{Mask: lm, Rect: leaf.Rect, DefaultColor: 255}

	// 200 * 128 / 255 = 100
	if got := alphaAt(applyMasks(leaf, leaf.Pixels), 1, 0); got != 100 {
		t.Errorf("alpha = %d, want 100", got)
	}
}

func TestApplyMasksNilPixels(t *testing.T) {
	leaf := NewLeaf(1, image.Rect(0, 0, 2, 2), nil)
	leaf.TransparencyMask = NewMask(2, 2)
	if out := applyMasks(leaf, nil); out != nil {
		t.Errorf("applyMasks(nil) = %v, want nil", out)
	}
}

package text

import (
	"image"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is used for runs that carry no size.
const DefaultFontSize = 12

// Rasterizer draws text runs with faces from a Registry.
type Rasterizer struct {
	registry *Registry
}

// NewRasterizer creates a rasterizer resolving fonts through reg.
// A nil reg uses a private registry holding only the fallback face.
func NewRasterizer(reg *Registry) *Rasterizer {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Rasterizer{registry: reg}
}

// segment is the part of one run that falls on one line.
type segment struct {
	text  string
	run   *Run
	face  font.Face
	width float64
}

type line struct {
	segments []segment
	width    float64
	ascent   float64
	height   float64
}

// Rasterize draws runs into a transparent width x height image. Runs flow
// left to right and "\n" starts a new line. Each line is placed by align;
// glyphs that fall outside the image are clipped.
func (r *Rasterizer) Rasterize(runs []Run, width, height int, align Alignment) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	lines, closeFaces, err := r.layout(runs)
	defer closeFaces()
	if err != nil {
		return nil, err
	}

	var y float64
	for _, ln := range lines {
		var x float64
		switch align {
		case AlignCenter:
			x = (float64(width) - ln.width) / 2
		case AlignRight:
			x = float64(width) - ln.width
		}
		baseline := y + ln.ascent
		for _, seg := range ln.segments {
			d := font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(seg.run.Color),
				Face: seg.face,
				Dot:  fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(math.Round(baseline))},
			}
			d.DrawString(seg.text)
			x += seg.width
		}
		y += ln.height
	}
	return dst, nil
}

// layout splits runs into lines and resolves a face for each segment.
// The returned func closes every face that was opened.
func (r *Rasterizer) layout(runs []Run) ([]line, func(), error) {
	var opened []font.Face
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	faces := make(map[faceKey]font.Face)
	lines := []line{{}}

	for i := range runs {
		run := &runs[i]
		size := run.FontSize
		if size <= 0 {
			size = DefaultFontSize
		}
		reg, err := r.registry.Lookup(run.Font)
		if err != nil {
			return nil, closeAll, err
		}

		key := faceKey{face: reg, size: size}
		ff, ok := faces[key]
		if !ok {
			ff, err = opentype.NewFace(reg.sfnt, &opentype.FaceOptions{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				return nil, closeAll, err
			}
			faces[key] = ff
			opened = append(opened, ff)
		}
		m := ff.Metrics()
		ascent := fixedToFloat(m.Ascent)
		height := fixedToFloat(m.Height)

		for j, part := range strings.Split(Normalize(run.Text), "\n") {
			if j > 0 {
				lines = append(lines, line{})
			}
			ln := &lines[len(lines)-1]
			ln.ascent = max(ln.ascent, ascent)
			ln.height = max(ln.height, height)
			if part == "" {
				continue
			}
			w := Measure(reg, part, size)
			ln.segments = append(ln.segments, segment{text: part, run: run, face: ff, width: w})
			ln.width += w
		}
	}
	return lines, closeAll, nil
}

type faceKey struct {
	face *Face
	size float64
}

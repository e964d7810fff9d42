package psdrun

import (
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/signal-slot/psd-run/text"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// fixtureDecoder ignores its input and returns a prepared document.
type fixtureDecoder struct {
	doc *Document
	err error
}

func (d fixtureDecoder) Decode(r io.Reader) (*Document, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	return d.doc, d.err
}

// stubRasterizer fills the text rect with a color chosen by the text length.
type stubRasterizer struct {
	calls int
	panic bool
}

func (s *stubRasterizer) Rasterize(runs []text.Run, width, height int, _ text.Alignment) (*image.NRGBA, error) {
	s.calls++
	if s.panic {
		panic("rasterizer exploded")
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	n := uint8(len(text.Join(runs)))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = n*10, 0, 0, 255
	}
	return img, nil
}

func solidPixmap(w, h int, c color.NRGBA) *Pixmap {
	p := NewPixmap(w, h, true)
	p.Fill(c)
	return p
}

func solidLeaf(id int, r image.Rectangle, c color.NRGBA) *Node {
	return NewLeaf(id, r, solidPixmap(r.Dx(), r.Dy(), c))
}

func isolatedGroup(id int, mode BlendMode, children ...*Node) *Node {
	g := NewGroup(id, children...)
	g.BlendMode = mode
	return g
}

func textLeaf(id int, r image.Rectangle, s string) *Node {
	n := NewLeaf(id, r, nil)
	n.ItemType = ItemText
	n.Runs = []text.Run{{Text: s, Font: text.FallbackFamily, FontSize: 20, Color: color.NRGBA{A: 255}}}
	return n
}

// redDocument is a 100x100 canvas holding a half-opaque red 50x50 leaf.
func redDocument() *Document {
	leaf := solidLeaf(1, image.Rect(0, 0, 50, 50), red)
	leaf.Name = "red"
	leaf.Opacity = 0.5
	return &Document{Width: 100, Height: 100, Layers: []*Node{leaf}}
}

func loadFixture(t *testing.T, doc *Document, opts ...Option) (*Runtime, int) {
	t.Helper()
	rt := New(fixtureDecoder{doc: doc}, opts...)
	t.Cleanup(func() { rt.Close() })
	res, err := rt.LoadBytes([]byte("fixture"))
	if err != nil {
		t.Fatalf("LoadBytes() = %v", err)
	}
	return rt, res.Handle
}

func render(t *testing.T, rt *Runtime, h int, hidden, shown []int) *Image {
	t.Helper()
	img, err := rt.Render(h, hidden, shown)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	return img
}

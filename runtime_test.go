package psdrun

import (
	"bytes"
	"errors"
	"image"
	"io"
	"os"
	"testing"

	"golang.org/x/image/font/gofont/gomono"

	"github.com/signal-slot/psd-run/internal/handle"
)

func TestLoadResult(t *testing.T) {
	rt, h := loadFixture(t, redDocument())
	if h <= 0 {
		t.Fatalf("handle = %d, want positive", h)
	}

	doc, err := rt.Document(h)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Width != 100 || doc.Height != 100 {
		t.Errorf("document is %dx%d, want 100x100", doc.Width, doc.Height)
	}
}

func TestLoadFromStagingBuffer(t *testing.T) {
	rt := New(fixtureDecoder{doc: redDocument()})
	t.Cleanup(func() { rt.Close() })

	if err := rt.AllocateBuffer(16); err != nil {
		t.Fatal(err)
	}
	copy(rt.Buffer(), "0123456789abcdef")

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"zero", 0, ErrInvalidBufferSize},
		{"negative", -1, ErrInvalidBufferSize},
		{"too large", 17, ErrInvalidBufferSize},
		{"partial", 8, nil},
		{"full", 16, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := rt.Load(tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load(%d) error = %v, want %v", tt.size, err, tt.wantErr)
			}
			if err == nil {
				if res.Width != 100 || res.Height != 100 || len(res.Layers) != 1 {
					t.Errorf("Load(%d) = %+v", tt.size, res)
				}
				rt.Release(res.Handle)
			}
		})
	}

	if err := rt.AllocateBuffer(-5); !errors.Is(err, ErrInvalidBufferSize) {
		t.Errorf("AllocateBuffer(-5) = %v, want ErrInvalidBufferSize", err)
	}
}

func TestLoadFailures(t *testing.T) {
	decodeErr := errors.New("bad signature")

	t.Run("decoder error", func(t *testing.T) {
		rt := New(fixtureDecoder{err: decodeErr})
		_, err := rt.LoadBytes([]byte("junk"))
		if !errors.Is(err, ErrLoadFailure) || !errors.Is(err, decodeErr) {
			t.Errorf("LoadBytes() error = %v, want ErrLoadFailure wrapping decoder error", err)
		}
		var le *LoadError
		if !errors.As(err, &le) {
			t.Errorf("error %T is not a *LoadError", err)
		}
		if rt.Len() != 0 {
			t.Errorf("Len = %d after failed load", rt.Len())
		}
	})

	t.Run("empty canvas", func(t *testing.T) {
		rt := New(fixtureDecoder{doc: &Document{Width: 0, Height: 10}})
		if _, err := rt.LoadBytes([]byte("x")); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("LoadBytes() error = %v, want ErrInvalidDimensions", err)
		}
	})

	t.Run("no data", func(t *testing.T) {
		rt := New(fixtureDecoder{doc: redDocument()})
		if _, err := rt.LoadBytes(nil); !errors.Is(err, ErrInvalidBufferSize) {
			t.Errorf("LoadBytes(nil) error = %v, want ErrInvalidBufferSize", err)
		}
	})
}

func TestHandleTableExhausted(t *testing.T) {
	rt := New(fixtureDecoder{doc: redDocument()}, WithCapacity(3))
	t.Cleanup(func() { rt.Close() })

	var handles []int
	for range 2 {
		res, err := rt.LoadBytes([]byte("doc"))
		if err != nil {
			t.Fatalf("LoadBytes() = %v", err)
		}
		handles = append(handles, res.Handle)
	}
	if _, err := rt.LoadBytes([]byte("doc")); !errors.Is(err, ErrHandleTableExhausted) {
		t.Fatalf("third load error = %v, want ErrHandleTableExhausted", err)
	}

	// Existing documents are unaffected.
	if _, err := rt.Render(handles[0], nil, nil); err != nil {
		t.Errorf("Render() after exhaustion = %v", err)
	}

	rt.Release(handles[1])
	if _, err := rt.LoadBytes([]byte("doc")); err != nil {
		t.Errorf("load after release = %v", err)
	}
}

func TestCapacityIsClamped(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{3, 2},
		{1, 1},
		{1000, handle.MaxCapacity - 1},
	}
	for _, tt := range tests {
		rt := New(fixtureDecoder{doc: redDocument()}, WithCapacity(tt.capacity))
		if got := rt.docs.Capacity(); got != tt.want {
			t.Errorf("WithCapacity(%d): %d resident documents, want %d", tt.capacity, got, tt.want)
		}
	}
}

func TestReleaseInvalidatesHandle(t *testing.T) {
	rt, h := loadFixture(t, redDocument())
	rt.Release(h)

	if _, err := rt.Render(h, nil, nil); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("Render() after release = %v, want ErrInvalidHandle", err)
	}
	// Releasing again, or releasing nonsense, is a no-op.
	rt.Release(h)
	rt.Release(0)
	rt.Release(-7)

	// A new document in the same slot gets a different handle.
	res, err := rt.LoadBytes([]byte("doc"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Handle == h {
		t.Errorf("reloaded handle %d aliases the released one", h)
	}
}

func TestInvalidHandle(t *testing.T) {
	rt := New(fixtureDecoder{doc: redDocument()})
	calls := map[string]func() error{
		"Render":          func() error { _, err := rt.Render(3, nil, nil); return err },
		"LayerImage":      func() error { _, err := rt.LayerImage(3, 1); return err },
		"ExportLayerTree": func() error { _, err := rt.ExportLayerTree(3); return err },
		"Hints":           func() error { _, err := rt.Hints(3); return err },
		"SetHints":        func() error { _, err := rt.SetHints(3, []byte(`{}`)); return err },
		"SetLayerText":    func() error { return rt.SetLayerText(3, 1, "x") },
		"Document":        func() error { _, err := rt.Document(3); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrInvalidHandle) {
				t.Errorf("error = %v, want ErrInvalidHandle", err)
			}
		})
	}
}

func TestStagingDir(t *testing.T) {
	dir := t.TempDir()
	rt := New(fixtureDecoder{doc: redDocument()}, WithStagingDir(dir))
	t.Cleanup(func() { rt.Close() })

	res, err := rt.LoadBytes([]byte("staged document bytes"))
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("staging dir has %d files, want 1", len(entries))
	}

	rt.Release(res.Handle)
	entries, _ = os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("staging dir has %d files after release, want 0", len(entries))
	}
}

// faultyDecoder panics while decoding.
type faultyDecoder struct{}

func (faultyDecoder) Decode(io.Reader) (*Document, error) {
	panic("block table truncated")
}

func TestLoadRecoversDecoderFault(t *testing.T) {
	dir := t.TempDir()
	rt := New(faultyDecoder{}, WithStagingDir(dir))

	_, err := rt.LoadBytes([]byte("abc"))
	var le *LoadError
	if !errors.Is(err, ErrLoadFailure) || !errors.As(err, &le) {
		t.Fatalf("LoadBytes() error = %v, want *LoadError", err)
	}
	if rt.Len() != 0 {
		t.Errorf("Len = %d after failed load", rt.Len())
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("staging dir has %d files after decoder fault", len(entries))
	}
}

func TestStagingDirRemovedOnLoadFailure(t *testing.T) {
	dir := t.TempDir()
	rt := New(fixtureDecoder{err: errors.New("truncated")}, WithStagingDir(dir))
	if _, err := rt.LoadBytes([]byte("abc")); !errors.Is(err, ErrLoadFailure) {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("staging dir has %d files after failed load", len(entries))
	}
}

func TestLayerImage(t *testing.T) {
	gradient := NewPixmap(20, 10, true)
	for y := range 10 {
		for x := range 20 {
			gradient.SetPixel(x, y, red)
			gradient.Data()[(y*20+x)*4+1] = uint8(x * 12)
			gradient.Data()[(y*20+x)*4+2] = uint8(y * 25)
		}
	}
	child := NewLeaf(2, image.Rect(30, 40, 50, 50), gradient)
	group := isolatedGroup(1, BlendNormal, child)

	invisible := solidLeaf(4, image.Rect(0, 0, 5, 5), red)
	invisible.Visible = false
	emptyGroup := isolatedGroup(3, BlendNormal, invisible)

	doc := &Document{Width: 100, Height: 100, Layers: []*Node{
		group, emptyGroup, NewLeaf(5, image.Rect(0, 0, 5, 5), nil),
	}}
	rt, h := loadFixture(t, doc)

	t.Run("isolation identity", func(t *testing.T) {
		leafImg, err := rt.LayerImage(h, 2)
		if err != nil {
			t.Fatal(err)
		}
		groupImg, err := rt.LayerImage(h, 1)
		if err != nil {
			t.Fatal(err)
		}
		if leafImg.Rect() != image.Rect(30, 40, 50, 50) || groupImg.Rect() != leafImg.Rect() {
			t.Errorf("rects = %v and %v, want (30,40)-(50,50)", leafImg.Rect(), groupImg.Rect())
		}
		if !bytes.Equal(leafImg.Pix, groupImg.Pix) {
			t.Error("group image differs from its only child")
		}
	})

	t.Run("leaf copy", func(t *testing.T) {
		img, err := rt.LayerImage(h, 2)
		if err != nil {
			t.Fatal(err)
		}
		img.Pix[0] = 1
		if gradient.Data()[0] != 255 {
			t.Error("LayerImage shares memory with the layer")
		}
	})

	errTests := []struct {
		name string
		id   int
		want error
	}{
		{"empty group", 3, ErrEmptyBounds},
		{"no pixels", 5, ErrNullImage},
		{"unknown id", 99, ErrLayerNotFound},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := rt.LayerImage(h, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("LayerImage(%d) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestSetLayerTextChangesRender(t *testing.T) {
	leaf := textLeaf(7, image.Rect(0, 0, 120, 30), "Hello")
	doc := &Document{Width: 120, Height: 30, Layers: []*Node{leaf}}
	rt, h := loadFixture(t, doc)

	before := render(t, rt, h, nil, nil)
	if err := rt.SetLayerText(h, 7, "X"); err != nil {
		t.Fatalf("SetLayerText() = %v", err)
	}
	after := render(t, rt, h, nil, nil)

	if bytes.Equal(before.Pix, after.Pix) {
		t.Error("render did not change after SetLayerText")
	}
	if got := leaf.Text(); got != "X" {
		t.Errorf("Text() = %q, want X", got)
	}
	if len(leaf.Runs) != 1 || leaf.Runs[0].FontSize != 20 {
		t.Errorf("runs = %+v, want a single run keeping the style", leaf.Runs)
	}
}

func TestSetLayerTextErrors(t *testing.T) {
	runless := textLeaf(2, image.Rect(0, 0, 10, 10), "")
	runless.Runs = nil
	doc := &Document{Width: 10, Height: 10, Layers: []*Node{
		solidLeaf(1, image.Rect(0, 0, 10, 10), red),
		runless,
		NewGroup(3),
	}}
	rt, h := loadFixture(t, doc)

	tests := []struct {
		id   int
		want error
	}{
		{1, ErrNotATextLayer},
		{2, ErrNotATextLayer},
		{3, ErrNotATextLayer},
		{42, ErrLayerNotFound},
	}
	for _, tt := range tests {
		if err := rt.SetLayerText(h, tt.id, "x"); !errors.Is(err, tt.want) {
			t.Errorf("SetLayerText(%d) = %v, want %v", tt.id, err, tt.want)
		}
	}
}

func TestRegisterFont(t *testing.T) {
	rt := New(fixtureDecoder{})

	families, err := rt.RegisterFont(gomono.TTF, "gomono.ttf")
	if err != nil {
		t.Fatalf("RegisterFont() = %v", err)
	}
	if len(families) != 1 || families[0] != "Go Mono" {
		t.Errorf("families = %v, want [Go Mono]", families)
	}
	if got := rt.RegisteredFonts(); len(got) != 1 || got[0] != "Go Mono" {
		t.Errorf("RegisteredFonts() = %v", got)
	}

	if _, err := rt.RegisterFont([]byte("not a font"), "junk.ttf"); err == nil {
		t.Error("RegisterFont(junk) succeeded")
	}
}

func TestRegisterFontRedrawsText(t *testing.T) {
	leaf := textLeaf(1, image.Rect(0, 0, 120, 30), "Hello")
	leaf.Runs[0].Font = "Go Mono"
	rt, h := loadFixture(t, &Document{Width: 120, Height: 30, Layers: []*Node{leaf}})

	// Go Mono is not registered yet, so the fallback face draws the text.
	before := render(t, rt, h, nil, nil)
	if _, err := rt.RegisterFont(gomono.TTF, "gomono.ttf"); err != nil {
		t.Fatalf("RegisterFont() = %v", err)
	}
	after := render(t, rt, h, nil, nil)

	if bytes.Equal(before.Pix, after.Pix) {
		t.Error("text was not redrawn with the registered font")
	}
}

func TestCloseReleasesAll(t *testing.T) {
	rt := New(fixtureDecoder{doc: redDocument()})
	for range 3 {
		if _, err := rt.LoadBytes([]byte("doc")); err != nil {
			t.Fatal(err)
		}
	}
	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
	if rt.Len() != 0 {
		t.Errorf("Len after Close = %d", rt.Len())
	}
}

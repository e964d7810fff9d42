package psdrun

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/signal-slot/psd-run/internal/cache"
	"github.com/signal-slot/psd-run/internal/handle"
	intImage "github.com/signal-slot/psd-run/internal/image"
	"github.com/signal-slot/psd-run/text"
)

// Decoder turns an encoded layered document into a Document.
type Decoder interface {
	Decode(r io.Reader) (*Document, error)
}

// TextRasterizer draws text runs into a width x height straight-alpha image.
// *text.Rasterizer implements it.
type TextRasterizer interface {
	Rasterize(runs []text.Run, width, height int, align text.Alignment) (*image.NRGBA, error)
}

// entry is one resident document.
type entry struct {
	doc        *Document
	stagedPath string
	leaves     *cache.Cache[leafKey, *intImage.ImageBuf]
}

// Runtime holds decoded documents behind integer handles and renders them.
//
// All methods are safe for concurrent use; they are serialized internally.
type Runtime struct {
	mu      sync.Mutex
	dec     Decoder
	opts    options
	staging []byte
	docs    *handle.Table[*entry]
	pool    *intImage.Pool
	fonts   *text.Registry
	text    TextRasterizer
}

// New returns a Runtime that decodes documents with dec.
func New(dec Decoder, opts ...Option) *Runtime {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	fonts := o.fonts
	if fonts == nil {
		fonts = text.NewRegistry()
	}
	tr := o.rasterizer
	if tr == nil {
		tr = text.NewRasterizer(fonts)
	}

	return &Runtime{
		dec:   dec,
		opts:  o,
		docs:  handle.New[*entry](o.capacity),
		pool:  intImage.NewPool(o.poolSize),
		fonts: fonts,
		text:  tr,
	}
}

// AllocateBuffer resizes the shared staging buffer to size bytes.
// Its previous contents are discarded.
func (r *Runtime) AllocateBuffer(size int) error {
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBufferSize, size)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staging = make([]byte, size)
	return nil
}

// Buffer returns the shared staging buffer. Callers write encoded document
// bytes into it and then call Load.
func (r *Runtime) Buffer() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.staging
}

// Load decodes the first size bytes of the staging buffer and makes the
// document resident.
func (r *Runtime) Load(size int) (*LoadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if size <= 0 || size > len(r.staging) {
		return nil, fmt.Errorf("%w: %d of %d staged bytes", ErrInvalidBufferSize, size, len(r.staging))
	}
	return r.load(r.staging[:size])
}

// LoadBytes copies data into the staging buffer and loads it.
func (r *Runtime) LoadBytes(data []byte) (*LoadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: 0 bytes", ErrInvalidBufferSize)
	}
	r.staging = bytes.Clone(data)
	return r.load(r.staging)
}

func (r *Runtime) load(data []byte) (*LoadResult, error) {
	doc, staged, err := r.decode(data)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Width <= 0 || doc.Height <= 0 {
		r.removeStaged(staged)
		if doc == nil {
			return nil, ErrInvalidDimensions
		}
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, doc.Width, doc.Height)
	}

	e := &entry{doc: doc, stagedPath: staged}
	if r.opts.layerCacheSize > 0 {
		e.leaves = cache.New[leafKey, *intImage.ImageBuf](r.opts.layerCacheSize)
	}
	h, err := r.docs.Allocate(e)
	if err != nil {
		r.removeStaged(staged)
		if errors.Is(err, handle.ErrExhausted) {
			return nil, ErrHandleTableExhausted
		}
		return nil, err
	}

	layers := flatten(doc)
	Logger().Info("document loaded",
		"handle", h, "width", doc.Width, "height", doc.Height, "layers", len(layers))

	return &LoadResult{Handle: h, Width: doc.Width, Height: doc.Height, Layers: layers}, nil
}

// decode runs the decoder over data, staging it in a temporary file first
// when a staging directory is configured.
func (r *Runtime) decode(data []byte) (*Document, string, error) {
	if r.opts.stagingDir == "" {
		doc, err := r.runDecoder(bytes.NewReader(bytes.Clone(data)))
		if err != nil {
			return nil, "", &LoadError{Err: err}
		}
		return doc, "", nil
	}

	f, err := os.CreateTemp(r.opts.stagingDir, "psdrun-*.doc")
	if err != nil {
		return nil, "", &LoadError{Err: err}
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		r.removeStaged(path)
		return nil, "", &LoadError{Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		r.removeStaged(path)
		return nil, "", &LoadError{Err: err}
	}

	doc, err := r.runDecoder(f)
	f.Close()
	if err != nil {
		r.removeStaged(path)
		return nil, "", &LoadError{Err: err}
	}
	return doc, path, nil
}

// runDecoder calls the decoder and turns a panic into an error.
func (r *Runtime) runDecoder(rd io.Reader) (doc *Document, err error) {
	defer func() {
		if p := recover(); p != nil {
			Logger().Warn("recovered decoder fault", "panic", p)
			doc, err = nil, fmt.Errorf("decoder fault: %v", p)
		}
	}()
	return r.dec.Decode(rd)
}

func (r *Runtime) removeStaged(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		Logger().Warn("cannot remove staged document", "path", path, "err", err)
	}
}

// lookup returns the entry for h. The caller holds r.mu.
func (r *Runtime) lookup(h int) (*entry, error) {
	e, err := r.docs.Lookup(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return e, nil
}

func (r *Runtime) compositor(e *entry, vis visibility) *compositor {
	return &compositor{
		vis:                vis,
		pool:               r.pool,
		text:               r.text,
		leaves:             e.leaves,
		maxDepth:           r.opts.maxDepth,
		passThroughOpacity: r.opts.passThroughOpacity,
	}
}

// Document returns the decoded document behind h. Later renders see
// changes made through the Node setters and any replaced Pixels or mask
// values. Edits made in place, such as writing into a Pixmap or changing
// shape fields, must be followed by Node.Changed.
func (r *Runtime) Document(h int) (*Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.doc, nil
}

// Render composites the whole document onto a transparent canvas.
// Layers in shown are drawn even if hidden or recorded invisible; layers in
// hidden are skipped unless also in shown. Neither list is persisted.
func (r *Runtime) Render(h int, hidden, shown []int) (img *Image, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	defer recoverRender(h, &img, &err)

	c := r.compositor(e, newVisibility(hidden, shown))
	surface, err := c.renderSurface(e.doc.root(), e.doc.Bounds(), false)
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(surface)
	return imageFromSurface(surface, image.Point{})
}

// LayerImage returns a single layer. A leaf yields its masked pixels at its
// own extent; a group yields its visible subtree composited in isolation,
// cropped to the subtree's bounds. Recorded visibility applies.
func (r *Runtime) LayerImage(h, id int) (img *Image, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	node := e.doc.Find(id)
	if node == nil {
		return nil, fmt.Errorf("%w: %d", ErrLayerNotFound, id)
	}
	defer recoverRender(h, &img, &err)

	c := r.compositor(e, visibility{})
	if !node.IsGroup() {
		pixels, err := c.leafPixels(node)
		if err != nil {
			return nil, err
		}
		masked := applyMasks(node, pixels)
		if masked == nil {
			return nil, fmt.Errorf("%w: layer %d", ErrNullImage, id)
		}
		return imageFromPixmap(masked, node.Rect.Min), nil
	}

	bounds := computeBounds(node, c.vis)
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: group %d", ErrEmptyBounds, id)
	}
	surface, err := c.renderSurface(node, bounds, node.PassThrough())
	if err != nil {
		return nil, err
	}
	defer r.pool.Put(surface)
	return imageFromSurface(surface, bounds.Min)
}

// recoverRender turns a panic during compositing into ErrRenderFailed.
func recoverRender(h int, img **Image, err *error) {
	if p := recover(); p != nil {
		Logger().Warn("recovered render fault", "handle", h, "panic", p)
		*img = nil
		*err = fmt.Errorf("%w: %v", ErrRenderFailed, p)
	}
}

// SetLayerText replaces the text of a text layer with a single run that
// keeps the style of its first run. Later renders draw the new text.
func (r *Runtime) SetLayerText(h, id int, s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return err
	}
	node := e.doc.Find(id)
	if node == nil {
		return fmt.Errorf("%w: %d", ErrLayerNotFound, id)
	}
	if err := node.SetText(s); err != nil {
		return fmt.Errorf("%w: %d", err, id)
	}
	if e.leaves != nil {
		e.leaves.DeleteFunc(func(k leafKey) bool { return k.node == node })
	}
	return nil
}

// Release frees h and its staged backing file. Releasing a handle that is
// not resident does nothing.
func (r *Runtime) Release(h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.release(h)
}

func (r *Runtime) release(h int) {
	e, err := r.docs.Release(h)
	if err != nil {
		Logger().Debug("release of unknown handle", "handle", h)
		return
	}
	if e.leaves != nil {
		e.leaves.Clear()
	}
	r.removeStaged(e.stagedPath)
	Logger().Info("document released", "handle", h)
}

// Close releases every resident document.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var handles []int
	r.docs.Each(func(h int, _ *entry) { handles = append(handles, h) })
	for _, h := range handles {
		r.release(h)
	}
	return nil
}

// Len reports how many documents are resident.
func (r *Runtime) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs.Len()
}

// RegisterFont makes the faces in data (TTF, OTF or a collection) available
// to text layers and returns their family names. Text drawn before the
// font was registered is drawn again on the next render.
func (r *Runtime) RegisterFont(data []byte, filename string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	families, err := r.fonts.Register(data, filename)
	if err != nil {
		return nil, err
	}
	r.docs.Each(func(_ int, e *entry) {
		if e.leaves != nil {
			e.leaves.Clear()
		}
	})
	Logger().Info("font registered", "file", filename, "families", families)
	return families, nil
}

// RegisteredFonts returns the family names of every registered font.
func (r *Runtime) RegisteredFonts() []string {
	return r.fonts.Families()
}

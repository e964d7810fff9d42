package psdrun

import (
	"github.com/signal-slot/psd-run/internal/handle"
	"github.com/signal-slot/psd-run/text"
)

// Option configures a Runtime during creation.
//
// Example:
//
//	rt := psdrun.New(container.Decoder{},
//		psdrun.WithCapacity(32),
//		psdrun.WithStagingDir(os.TempDir()))
type Option func(*options)

// options holds optional configuration for Runtime creation.
type options struct {
	capacity           int
	stagingDir         string
	maxDepth           int
	layerCacheSize     int
	rasterizer         TextRasterizer
	fonts              *text.Registry
	passThroughOpacity bool
	poolSize           int
}

// defaultOptions returns the default runtime options.
func defaultOptions() options {
	return options{
		capacity:       handle.DefaultCapacity,
		maxDepth:       DefaultMaxDepth,
		layerCacheSize: 64,
		poolSize:       8,
	}
}

// WithCapacity sets the size of the handle table. One slot is reserved,
// so at most n-1 documents can be resident. n is clamped to the range
// [2, 256]. The default is 16.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithStagingDir stages each loaded document in a temporary file under dir
// before decoding. The file is removed when the document is released.
// With an empty dir (the default) documents are decoded from memory.
func WithStagingDir(dir string) Option {
	return func(o *options) {
		o.stagingDir = dir
	}
}

// WithMaxDepth limits group nesting. Deeper documents fail to render with
// ErrNestingTooDeep. Values below 1 keep the default of DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithLayerCacheSize sets how many prepared leaf surfaces each document
// keeps between renders. Zero disables the cache.
func WithLayerCacheSize(n int) Option {
	return func(o *options) {
		o.layerCacheSize = max(n, 0)
	}
}

// WithTextRasterizer replaces the rasterizer used for edited text layers.
func WithTextRasterizer(r TextRasterizer) Option {
	return func(o *options) {
		o.rasterizer = r
	}
}

// WithFontRegistry shares a font registry between runtimes.
func WithFontRegistry(reg *text.Registry) Option {
	return func(o *options) {
		o.fonts = reg
	}
}

// WithPassThroughOpacity makes pass-through groups multiply their own
// opacity into their children. By default a pass-through group's opacity
// is ignored, as in the authoring application.
func WithPassThroughOpacity(enabled bool) Option {
	return func(o *options) {
		o.passThroughOpacity = enabled
	}
}

// WithPool sets how many compositing surfaces of each size are retained
// for reuse. Zero retains all of them.
func WithPool(maxPerBucket int) Option {
	return func(o *options) {
		o.poolSize = max(maxPerBucket, 0)
	}
}

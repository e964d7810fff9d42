package psdrun

import (
	"fmt"
	"image"

	"github.com/signal-slot/psd-run/internal/blend"
	"github.com/signal-slot/psd-run/internal/cache"
	intImage "github.com/signal-slot/psd-run/internal/image"
)

// DefaultMaxDepth is the default limit on group nesting.
const DefaultMaxDepth = 256

// composeContext is the state threaded through one level of compositing.
type composeContext struct {
	// surface is the premultiplied destination.
	surface *intImage.ImageBuf
	// origin is the document-space point mapped to surface pixel (0, 0).
	origin image.Point
	// opacity accumulates the opacity of enclosing pass-through levels.
	opacity float64
	// passThrough is set while flattening a pass-through group.
	passThrough bool
	depth       int
}

// leafKey identifies one prepared leaf surface. A new revision or a
// replaced raster or mask yields a new key.
type leafKey struct {
	node         *Node
	revision     int
	pixels       *Pixmap
	transparency *Mask
	layerMask    *LayerMask
}

func newLeafKey(leaf *Node) leafKey {
	return leafKey{
		node:         leaf,
		revision:     leaf.revision,
		pixels:       leaf.Pixels,
		transparency: leaf.TransparencyMask,
		layerMask:    leaf.LayerMask,
	}
}

// compositor paints node trees onto premultiplied surfaces.
type compositor struct {
	vis      visibility
	pool     *intImage.Pool
	text     TextRasterizer
	leaves   *cache.Cache[leafKey, *intImage.ImageBuf]
	maxDepth int
	// passThroughOpacity applies a pass-through group's own opacity to its
	// children. Off by default: pass-through groups contribute no opacity.
	passThroughOpacity bool
}

// compositeChildren paints node's visible children onto ctx.surface,
// bottommost child first.
func (c *compositor) compositeChildren(ctx composeContext, node *Node) error {
	if ctx.depth > c.maxDepth {
		return fmt.Errorf("%w: deeper than %d", ErrNestingTooDeep, c.maxDepth)
	}
	for i := len(node.Children) - 1; i >= 0; i-- {
		child := node.Children[i]
		if !c.vis.visible(child) {
			continue
		}

		var err error
		switch {
		case child.PassThrough():
			next := ctx
			next.passThrough = true
			next.depth++
			if c.passThroughOpacity {
				next.opacity *= child.Opacity * child.FillOpacity
			}
			err = c.compositeChildren(next, child)
		case child.IsGroup():
			err = c.compositeGroup(ctx, child)
		default:
			err = c.compositeLeaf(ctx, child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// compositeGroup renders an isolated group onto a fresh surface sized to
// its visible bounds, then blends that surface onto ctx.surface.
func (c *compositor) compositeGroup(ctx composeContext, group *Node) error {
	bounds := computeBounds(group, c.vis)
	if bounds.Empty() {
		return nil
	}

	surface := c.pool.Get(bounds.Dx(), bounds.Dy(), intImage.FormatRGBAPremul)
	if surface == nil {
		return fmt.Errorf("psdrun: group %d: cannot allocate %v surface", group.ID, bounds.Size())
	}
	defer c.pool.Put(surface)

	Logger().Debug("isolated group surface",
		"id", group.ID, "bounds", bounds, "depth", ctx.depth, "parentPassThrough", ctx.passThrough)

	inner := composeContext{
		surface: surface,
		origin:  bounds.Min,
		opacity: 1,
		depth:   ctx.depth + 1,
	}
	if err := c.compositeChildren(inner, group); err != nil {
		return err
	}

	at := bounds.Min.Sub(ctx.origin)
	blend.Composite(ctx.surface, surface, at.X, at.Y,
		group.BlendMode.blendFunc(), ctx.opacity*group.Opacity*group.FillOpacity)
	return nil
}

// compositeLeaf blends a leaf's masked pixels onto ctx.surface.
func (c *compositor) compositeLeaf(ctx composeContext, leaf *Node) error {
	src, err := c.preparedLeaf(leaf)
	if err != nil || src == nil {
		return err
	}
	at := leaf.Rect.Min.Sub(ctx.origin)
	blend.Composite(ctx.surface, src, at.X, at.Y,
		leaf.BlendMode.blendFunc(), ctx.opacity*leaf.Opacity*leaf.FillOpacity)
	return nil
}

// preparedLeaf returns the masked, premultiplied pixels of leaf, or nil
// when the leaf has nothing to draw.
func (c *compositor) preparedLeaf(leaf *Node) (*intImage.ImageBuf, error) {
	build := func() (*intImage.ImageBuf, error) {
		pixels, err := c.leafPixels(leaf)
		if err != nil {
			return nil, err
		}
		masked := applyMasks(leaf, pixels)
		if masked == nil {
			return nil, nil
		}
		buf, err := masked.imageBuf()
		if err != nil {
			return nil, fmt.Errorf("psdrun: layer %d: %w", leaf.ID, err)
		}
		return intImage.Premultiply(buf)
	}

	if c.leaves == nil {
		return build()
	}
	key := newLeafKey(leaf)
	if buf, ok := c.leaves.Get(key); ok {
		Logger().Debug("leaf cache hit", "id", leaf.ID)
		return buf, nil
	}
	buf, err := build()
	if err != nil {
		return nil, err
	}
	c.leaves.Set(key, buf)
	return buf, nil
}

// leafPixels returns the unmasked pixels of leaf. Text layers whose runs
// were replaced, or that were decoded without pixels, are drawn by the
// text rasterizer. Rectangular shape layers without pixels are filled
// with their brush color.
func (c *compositor) leafPixels(leaf *Node) (*Pixmap, error) {
	if leaf.Pixels == nil && leaf.ItemType == ItemShape {
		return rasterizeShape(leaf), nil
	}
	if !leaf.IsText() || len(leaf.Runs) == 0 || c.text == nil {
		return leaf.Pixels, nil
	}
	if leaf.version == 0 && leaf.Pixels != nil {
		return leaf.Pixels, nil
	}
	w, h := leaf.Rect.Dx(), leaf.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	img, err := c.text.Rasterize(leaf.Runs, w, h, leaf.Alignment)
	if err != nil {
		return nil, fmt.Errorf("psdrun: text layer %d: %w", leaf.ID, err)
	}
	return PixmapFromImage(img), nil
}

// renderSurface composites the visible children of node onto a fresh
// surface covering area. The caller returns the surface to the pool.
func (c *compositor) renderSurface(node *Node, area image.Rectangle, passThrough bool) (*intImage.ImageBuf, error) {
	surface := c.pool.Get(area.Dx(), area.Dy(), intImage.FormatRGBAPremul)
	if surface == nil {
		return nil, fmt.Errorf("psdrun: cannot allocate %v surface", area.Size())
	}
	ctx := composeContext{
		surface:     surface,
		origin:      area.Min,
		opacity:     1,
		passThrough: passThrough,
	}
	if err := c.compositeChildren(ctx, node); err != nil {
		c.pool.Put(surface)
		return nil, err
	}
	return surface, nil
}

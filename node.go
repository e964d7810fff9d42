package psdrun

import (
	"image"
	"image/color"

	"github.com/signal-slot/psd-run/text"
)

// Kind distinguishes leaf layers from groups.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindGroup
)

// ItemType is the authoring category of a layer.
type ItemType uint8

const (
	ItemImage ItemType = iota
	ItemText
	ItemShape
	ItemFolder
)

// String returns "image", "text", "shape" or "folder".
func (t ItemType) String() string {
	switch t {
	case ItemImage:
		return "image"
	case ItemText:
		return "text"
	case ItemShape:
		return "shape"
	case ItemFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ParseItemType maps a name produced by String back to an ItemType.
// Unknown names are ItemImage.
func ParseItemType(s string) ItemType {
	switch s {
	case "text":
		return ItemText
	case "shape":
		return ItemShape
	case "folder":
		return ItemFolder
	default:
		return ItemImage
	}
}

// PathType describes the outline of a shape layer.
type PathType uint8

const (
	PathNone PathType = iota
	PathRectangle
	PathRoundedRectangle
	PathPath
)

var pathTypeNames = [...]string{"none", "rectangle", "roundedRectangle", "path"}

// String returns the camelCase path type name.
func (p PathType) String() string {
	if int(p) >= len(pathTypeNames) {
		return "none"
	}
	return pathTypeNames[p]
}

// ParsePathType maps a name produced by String back to a PathType.
func ParsePathType(s string) PathType {
	for i, n := range pathTypeNames {
		if n == s {
			return PathType(i)
		}
	}
	return PathNone
}

// Node is one layer of a document.
//
// Leaf fields (Pixels, masks, Runs) are ignored on groups and Children is
// ignored on leaves. Children are stored topmost-first.
type Node struct {
	ID          int
	Name        string
	Kind        Kind
	ItemType    ItemType
	Visible     bool
	Opacity     float64
	FillOpacity float64
	BlendMode   BlendMode
	// Rect is the document-space extent. It may extend past the canvas.
	Rect image.Rectangle

	Pixels           *Pixmap
	TransparencyMask *Mask
	LayerMask        *LayerMask

	Children []*Node

	// Text layers.
	Runs      []text.Run
	Alignment text.Alignment

	// Shape layers.
	BrushColor   color.NRGBA
	PathType     PathType
	CornerRadius float64

	// Folders.
	Opened bool

	// Image layers.
	LinkedFile string

	Hint Hint

	// version counts text mutations.
	version int
	// revision counts every content change made through the setters.
	revision int
}

// NewLeaf returns a visible, fully opaque normal leaf.
func NewLeaf(id int, rect image.Rectangle, pixels *Pixmap) *Node {
	return &Node{
		ID:          id,
		Kind:        KindLeaf,
		ItemType:    ItemImage,
		Visible:     true,
		Opacity:     1,
		FillOpacity: 1,
		Rect:        rect,
		Pixels:      pixels,
		Hint:        DefaultHint(),
	}
}

// NewGroup returns a visible, fully opaque pass-through group holding
// children (topmost-first).
func NewGroup(id int, children ...*Node) *Node {
	return &Node{
		ID:          id,
		Kind:        KindGroup,
		ItemType:    ItemFolder,
		Visible:     true,
		Opacity:     1,
		FillOpacity: 1,
		BlendMode:   BlendPassThrough,
		Children:    children,
		Hint:        DefaultHint(),
	}
}

// IsGroup reports whether n is a group.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// PassThrough reports whether n is a group that flattens into its parent.
func (n *Node) PassThrough() bool {
	return n.Kind == KindGroup && n.BlendMode == BlendPassThrough
}

// Text returns the concatenated text of all runs.
func (n *Node) Text() string { return text.Join(n.Runs) }

// IsText reports whether n is a text layer.
func (n *Node) IsText() bool {
	return n.Kind == KindLeaf && n.ItemType == ItemText
}

// SetText replaces the runs of a text layer with a single run carrying s
// and the style of the first existing run.
func (n *Node) SetText(s string) error {
	if !n.IsText() || len(n.Runs) == 0 {
		return ErrNotATextLayer
	}
	run := n.Runs[0]
	run.Text = text.Normalize(s)
	n.SetRuns([]text.Run{run})
	return nil
}

// SetRuns replaces the runs of n. Later renders draw the new runs.
func (n *Node) SetRuns(runs []text.Run) {
	n.Runs = runs
	n.version++
	n.revision++
}

// SetPixels replaces the raster of a leaf.
func (n *Node) SetPixels(p *Pixmap) {
	n.Pixels = p
	n.revision++
}

// SetMasks replaces both masks of a leaf. Either may be nil.
func (n *Node) SetMasks(transparency *Mask, layer *LayerMask) {
	n.TransparencyMask = transparency
	n.LayerMask = layer
	n.revision++
}

// Changed marks n as edited so later renders rebuild it. Call it after
// writing pixels or masks in place, or after changing shape fields.
// Replacing Pixels or a mask with a new value is detected without it.
func (n *Node) Changed() { n.revision++ }

// Version reports how many times the text content of n has changed.
func (n *Node) Version() int { return n.version }

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Document is a decoded layered image.
type Document struct {
	Width  int
	Height int
	// Layers is the root sequence, topmost-first.
	Layers []*Node
}

// Bounds returns the canvas rectangle.
func (d *Document) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

// Find returns the node with the given id, or nil.
func (d *Document) Find(id int) *Node {
	var found *Node
	d.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node in pre-order, topmost-first.
func (d *Document) Walk(fn func(*Node) bool) {
	for _, n := range d.Layers {
		n.Walk(fn)
	}
}

// root wraps the root sequence in an isolated normal group.
func (d *Document) root() *Node {
	return &Node{Kind: KindGroup, Visible: true, Opacity: 1, FillOpacity: 1, Children: d.Layers}
}

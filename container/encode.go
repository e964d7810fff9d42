package container

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/klauspost/compress/zlib"

	psdrun "github.com/signal-slot/psd-run"
	"github.com/signal-slot/psd-run/text"
)

// Options configures Encode.
type Options struct {
	// Codec stores pixel blocks. The default is CodecZip.
	Codec Codec
	// Level is the zlib level for the manifest and zip blocks, 1 to 9.
	// Zero selects the default level.
	Level int
}

func (o *Options) level() int {
	if o == nil || o.Level == 0 {
		return zlib.DefaultCompression
	}
	return o.Level
}

func (o *Options) codec() Codec {
	if o == nil || o.Codec == "" {
		return CodecZip
	}
	return o.Codec
}

// encoder accumulates channel blocks while the manifest is built.
type encoder struct {
	opts   *Options
	blocks bytes.Buffer
}

// Encode writes doc to w. A nil opts uses the defaults.
func Encode(w io.Writer, doc *psdrun.Document, opts *Options) error {
	if doc == nil || doc.Width <= 0 || doc.Height <= 0 {
		return fmt.Errorf("container: encode: %w", psdrun.ErrInvalidDimensions)
	}

	e := &encoder{opts: opts}
	m := manifest{Width: doc.Width, Height: doc.Height}
	var err error
	if m.Layers, err = e.nodes(doc.Layers); err != nil {
		return err
	}

	js, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("container: encode manifest: %w", err)
	}
	packed, err := zipCompress(js, opts.level())
	if err != nil {
		return fmt.Errorf("container: compress manifest: %w", err)
	}

	var header [headerSize + 4]byte
	copy(header[:4], Magic)
	binary.LittleEndian.PutUint16(header[4:], Version)
	binary.LittleEndian.PutUint16(header[6:], 0)
	binary.LittleEndian.PutUint32(header[8:], uint32(len(packed)))

	for _, chunk := range [][]byte{header[:], packed, e.blocks.Bytes()} {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) nodes(nodes []*psdrun.Node) ([]manifestNode, error) {
	out := make([]manifestNode, 0, len(nodes))
	for _, n := range nodes {
		mn, err := e.node(n)
		if err != nil {
			return nil, err
		}
		out = append(out, mn)
	}
	return out, nil
}

func (e *encoder) node(n *psdrun.Node) (manifestNode, error) {
	mn := manifestNode{
		ID:           n.ID,
		Name:         n.Name,
		Group:        n.IsGroup(),
		ItemType:     n.ItemType.String(),
		Visible:      n.Visible,
		Opacity:      n.Opacity,
		FillOpacity:  n.FillOpacity,
		BlendMode:    n.BlendMode.String(),
		Rect:         toRect(n.Rect),
		Alignment:    n.Alignment.String(),
		PathType:     n.PathType.String(),
		CornerRadius: n.CornerRadius,
		Opened:       n.Opened,
		LinkedFile:   n.LinkedFile,
	}
	if n.ItemType == psdrun.ItemShape {
		mn.BrushColor = text.ColorName(n.BrushColor)
	}
	for _, r := range n.Runs {
		mn.Runs = append(mn.Runs, runEntry{
			Text:         r.Text,
			Font:         r.Font,
			OriginalFont: r.OriginalFont,
			FontSize:     r.FontSize,
			Color:        colorName(r.Color),
		})
	}
	if !n.Hint.IsDefault() {
		mn.Hint = &hintEntry{
			ID:         n.Hint.ID,
			Type:       int(n.Hint.Type),
			Name:       n.Hint.Name,
			Native:     n.Hint.Native,
			Visible:    n.Hint.Visible,
			Properties: n.Hint.Properties,
		}
	}

	if n.IsGroup() {
		children, err := e.nodes(n.Children)
		if err != nil {
			return mn, err
		}
		mn.Children = children
		return mn, nil
	}

	var err error
	if p := n.Pixels; p != nil {
		if mn.Pixels, err = e.block(e.opts.codec(), p.Data(), p.Width(), p.Height(), p.Channels()); err != nil {
			return mn, &BlockError{LayerID: n.ID, Channel: "pixels", Err: err}
		}
	}
	if m := n.TransparencyMask; m != nil {
		if mn.TransparencyMask, err = e.block(e.opts.codec(), m.Data(), m.Width(), m.Height(), 1); err != nil {
			return mn, &BlockError{LayerID: n.ID, Channel: "transparency mask", Err: err}
		}
	}
	if lm := n.LayerMask; lm != nil && lm.Mask != nil {
		ref, err := e.block(e.opts.codec(), lm.Mask.Data(), lm.Mask.Width(), lm.Mask.Height(), 1)
		if err != nil {
			return mn, &BlockError{LayerID: n.ID, Channel: "layer mask", Err: err}
		}
		mn.LayerMask = &layerMaskRef{Block: *ref, Rect: toRect(lm.Rect), DefaultColor: lm.DefaultColor}
	}
	return mn, nil
}

func (e *encoder) block(codec Codec, data []byte, width, height, channels int) (*blockRef, error) {
	stored, used, err := encodeBlock(codec, data, width, height, channels, e.opts.level())
	if err != nil {
		return nil, err
	}
	ref := &blockRef{
		Offset:   int64(e.blocks.Len()),
		Length:   int64(len(stored)),
		Codec:    used,
		Width:    width,
		Height:   height,
		Channels: channels,
	}
	e.blocks.Write(stored)
	return ref, nil
}

func toRect(r image.Rectangle) rect {
	return rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (r rect) rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

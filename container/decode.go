package container

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	psdrun "github.com/signal-slot/psd-run"
	"github.com/signal-slot/psd-run/text"
)

// maxManifestSize bounds the inflated manifest.
const maxManifestSize = 64 << 20

// Decoder decodes LYRD data. It implements psdrun.Decoder.
type Decoder struct{}

// Decode reads a LYRD document from r.
func (Decoder) Decode(r io.Reader) (*psdrun.Document, error) {
	return Decode(r)
}

// Decode reads a LYRD document from r.
func Decode(r io.Reader) (*psdrun.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) < headerSize+4 || string(data[:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v == 0 || v > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	n := int64(binary.LittleEndian.Uint32(data[8:]))
	rest := data[headerSize+4:]
	if n > int64(len(rest)) {
		return nil, fmt.Errorf("%w: manifest length %d exceeds file", ErrCorrupt, n)
	}
	js, err := zipDecompress(rest[:n], -1, maxManifestSize)
	if err != nil {
		return nil, fmt.Errorf("container: manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(js, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrCorrupt, err)
	}

	d := &decoder{blocks: rest[n:]}
	doc := &psdrun.Document{Width: m.Width, Height: m.Height}
	if doc.Layers, err = d.nodes(m.Layers); err != nil {
		return nil, err
	}
	return doc, nil
}

type decoder struct {
	blocks []byte
}

func (d *decoder) nodes(entries []manifestNode) ([]*psdrun.Node, error) {
	out := make([]*psdrun.Node, 0, len(entries))
	for i := range entries {
		n, err := d.node(&entries[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (d *decoder) node(mn *manifestNode) (*psdrun.Node, error) {
	n := &psdrun.Node{
		ID:           mn.ID,
		Name:         mn.Name,
		Kind:         psdrun.KindLeaf,
		ItemType:     psdrun.ParseItemType(mn.ItemType),
		Visible:      mn.Visible,
		Opacity:      mn.Opacity,
		FillOpacity:  mn.FillOpacity,
		BlendMode:    psdrun.ParseBlendMode(mn.BlendMode),
		Rect:         mn.Rect.rectangle(),
		Alignment:    text.ParseAlignment(mn.Alignment),
		PathType:     psdrun.ParsePathType(mn.PathType),
		CornerRadius: mn.CornerRadius,
		Opened:       mn.Opened,
		LinkedFile:   mn.LinkedFile,
		Hint:         psdrun.DefaultHint(),
	}
	if mn.BrushColor != "" {
		c, err := text.ParseColor(mn.BrushColor)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrCorrupt, mn.ID, err)
		}
		n.BrushColor = c
	}
	for _, re := range mn.Runs {
		c, err := text.ParseColor(re.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d: %v", ErrCorrupt, mn.ID, err)
		}
		n.Runs = append(n.Runs, text.Run{
			Text:         re.Text,
			Font:         re.Font,
			OriginalFont: re.OriginalFont,
			FontSize:     re.FontSize,
			Color:        c,
		})
	}
	if h := mn.Hint; h != nil {
		n.Hint = psdrun.Hint{
			ID:         h.ID,
			Type:       psdrun.HintType(h.Type),
			Name:       h.Name,
			Native:     h.Native,
			Visible:    h.Visible,
			Properties: h.Properties,
		}
	}

	if mn.Group {
		n.Kind = psdrun.KindGroup
		children, err := d.nodes(mn.Children)
		if err != nil {
			return nil, err
		}
		n.Children = children
		return n, nil
	}

	if ref := mn.Pixels; ref != nil {
		data, err := d.block(ref, mn.ID, "pixels")
		if err != nil {
			return nil, err
		}
		if n.Pixels, err = psdrun.PixmapFromData(ref.Width, ref.Height, ref.Channels, data); err != nil {
			return nil, &BlockError{LayerID: mn.ID, Channel: "pixels", Err: err}
		}
	}
	if ref := mn.TransparencyMask; ref != nil {
		m, err := d.mask(ref, mn.ID, "transparency mask")
		if err != nil {
			return nil, err
		}
		n.TransparencyMask = m
	}
	if lm := mn.LayerMask; lm != nil {
		m, err := d.mask(&lm.Block, mn.ID, "layer mask")
		if err != nil {
			return nil, err
		}
		n.LayerMask = &psdrun.LayerMask{Mask: m, Rect: lm.Rect.rectangle(), DefaultColor: lm.DefaultColor}
	}
	return n, nil
}

func (d *decoder) block(ref *blockRef, id int, channel string) ([]byte, error) {
	if ref.Offset < 0 || ref.Length < 0 || ref.Offset > int64(len(d.blocks)) ||
		ref.Length > int64(len(d.blocks))-ref.Offset {
		return nil, &BlockError{LayerID: id, Channel: channel,
			Err: fmt.Errorf("%w: block [%d,+%d) outside data", ErrCorrupt, ref.Offset, ref.Length)}
	}
	if ref.Width <= 0 || ref.Height <= 0 || ref.Channels <= 0 {
		return nil, &BlockError{LayerID: id, Channel: channel,
			Err: fmt.Errorf("%w: block is %dx%dx%d", ErrCorrupt, ref.Width, ref.Height, ref.Channels)}
	}
	data, err := decodeBlock(ref, d.blocks[ref.Offset:ref.Offset+ref.Length])
	if err != nil {
		return nil, &BlockError{LayerID: id, Channel: channel, Err: err}
	}
	return data, nil
}

func (d *decoder) mask(ref *blockRef, id int, channel string) (*psdrun.Mask, error) {
	if ref.Channels != 1 {
		return nil, &BlockError{LayerID: id, Channel: channel,
			Err: fmt.Errorf("%w: mask with %d channels", ErrCorrupt, ref.Channels)}
	}
	data, err := d.block(ref, id, channel)
	if err != nil {
		return nil, err
	}
	m, err := psdrun.MaskFromData(ref.Width, ref.Height, data)
	if err != nil {
		return nil, &BlockError{LayerID: id, Channel: channel, Err: err}
	}
	return m, nil
}

// colorName writes opaque colors as "#rrggbb" and others as "#aarrggbb".
func colorName(c color.NRGBA) string {
	if c.A == 255 {
		return text.ColorName(c)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.A, c.R, c.G, c.B)
}

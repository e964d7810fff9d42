package psdrun

import (
	"encoding/json"
	"fmt"

	"github.com/signal-slot/psd-run/text"
)

// layerTree is the document written by ExportLayerTree.
type layerTree struct {
	Height int           `json:"height"`
	Layers []exportLayer `json:"layers"`
	Width  int           `json:"width"`
}

type exportRect struct {
	Height int `json:"height"`
	Width  int `json:"width"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

type exportRun struct {
	Color        string  `json:"color"`
	Font         string  `json:"font"`
	FontSize     float64 `json:"fontSize"`
	OriginalFont string  `json:"originalFont"`
	Text         string  `json:"text"`
}

// exportLayer fields are declared in key order so the output matches
// tools that sort object keys.
type exportLayer struct {
	BrushColor     string        `json:"brushColor,omitempty"`
	ChildCount     *int          `json:"childCount,omitempty"`
	Children       []exportLayer `json:"children,omitempty"`
	CornerRadius   *float64      `json:"cornerRadius,omitempty"`
	FillOpacity    float64       `json:"fillOpacity"`
	HintProperties []string      `json:"hintProperties,omitempty"`
	HintType       string        `json:"hintType"`
	HintVisible    bool          `json:"hintVisible"`
	IsOpened       *bool         `json:"isOpened,omitempty"`
	LayerID        int           `json:"layerId"`
	LinkedFile     string        `json:"linkedFile,omitempty"`
	Name           string        `json:"name"`
	Opacity        float64       `json:"opacity"`
	PathType       string        `json:"pathType,omitempty"`
	Rect           exportRect    `json:"rect"`
	Runs           *[]exportRun  `json:"runs,omitempty"`
	Type           string        `json:"type"`
	Visible        bool          `json:"visible"`
}

// ExportLayerTree returns the document's layer hierarchy as compact JSON,
// including text runs, shape details and authoring hints.
func (r *Runtime) ExportLayerTree(h int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	tree := layerTree{
		Height: e.doc.Height,
		Layers: exportLayers(e.doc.Layers),
		Width:  e.doc.Width,
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("psdrun: export layer tree: %w", err)
	}
	return data, nil
}

func exportLayers(nodes []*Node) []exportLayer {
	if len(nodes) == 0 {
		return []exportLayer{}
	}
	out := make([]exportLayer, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, exportNode(n))
	}
	return out
}

func exportNode(n *Node) exportLayer {
	rect := n.Rect
	if n.IsGroup() && rect.Empty() {
		rect = computeBounds(n, visibility{})
	}
	l := exportLayer{
		FillOpacity: n.FillOpacity,
		HintType:    n.Hint.Type.String(),
		HintVisible: n.Hint.Visible,
		LayerID:     n.ID,
		Name:        n.Name,
		Opacity:     n.Opacity,
		Rect: exportRect{
			Height: rect.Dy(),
			Width:  rect.Dx(),
			X:      rect.Min.X,
			Y:      rect.Min.Y,
		},
		Type:    n.ItemType.String(),
		Visible: n.Visible,
	}

	switch n.ItemType {
	case ItemText:
		runs := make([]exportRun, 0, len(n.Runs))
		for _, run := range n.Runs {
			runs = append(runs, exportRun{
				Color:        text.ColorName(run.Color),
				Font:         run.Font,
				FontSize:     run.FontSize,
				OriginalFont: run.OriginalFont,
				Text:         run.Text,
			})
		}
		l.Runs = &runs
	case ItemShape:
		l.BrushColor = text.ColorName(n.BrushColor)
		l.PathType = n.PathType.String()
		if n.PathType == PathRoundedRectangle {
			radius := n.CornerRadius
			l.CornerRadius = &radius
		}
	case ItemFolder:
		count, opened := len(n.Children), n.Opened
		l.ChildCount = &count
		l.IsOpened = &opened
	case ItemImage:
		l.LinkedFile = n.LinkedFile
	}

	if props := n.Hint.sortedProperties(); len(props) > 0 {
		l.HintProperties = props
	}
	if len(n.Children) > 0 {
		l.Children = exportLayers(n.Children)
	}
	return l
}

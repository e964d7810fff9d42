package psdrun

import "encoding/json"

// LoadResult describes a freshly loaded document.
type LoadResult struct {
	Handle int         `json:"handle"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Layers []FlatLayer `json:"layers"`
}

// Flat layer types.
const (
	FlatGroup    = "group"
	FlatLeaf     = "layer"
	FlatGroupEnd = "groupEnd"
)

// FlatLayer is one entry of the pre-order layer list returned by Load.
// A group's entry is followed by its children and then by a FlatGroupEnd
// marker carrying the group's id and an empty name.
type FlatLayer struct {
	ID        int       `json:"id"`
	Index     int       `json:"index"`
	Name      string    `json:"name"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Visible   bool      `json:"visible"`
	Opacity   int       `json:"opacity"`
	BlendMode BlendMode `json:"blendMode"`
	ItemType  string    `json:"itemType"`
	Text      *string   `json:"text,omitempty"`
	Type      string    `json:"type"`
}

// flatten lists every node of doc in pre-order, topmost-first.
func flatten(doc *Document) []FlatLayer {
	var out []FlatLayer
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for i, n := range nodes {
			out = append(out, flatEntry(n, i))
			if n.IsGroup() {
				walk(n.Children)
				out = append(out, FlatLayer{ID: n.ID, Type: FlatGroupEnd})
			}
		}
	}
	walk(doc.Layers)
	return out
}

func flatEntry(n *Node, index int) FlatLayer {
	fl := FlatLayer{
		ID:        n.ID,
		Index:     index,
		Name:      n.Name,
		X:         n.Rect.Min.X,
		Y:         n.Rect.Min.Y,
		Width:     n.Rect.Dx(),
		Height:    n.Rect.Dy(),
		Visible:   n.Visible,
		Opacity:   int(n.Opacity * 255),
		BlendMode: n.BlendMode,
		ItemType:  n.ItemType.String(),
		Type:      FlatLeaf,
	}
	if n.IsGroup() {
		fl.Type = FlatGroup
	}
	if n.IsText() {
		s := n.Text()
		fl.Text = &s
	}
	return fl
}

// MarshalJSON writes group end markers as {id, name, type} only.
func (fl FlatLayer) MarshalJSON() ([]byte, error) {
	if fl.Type == FlatGroupEnd {
		return json.Marshal(struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
			Type string `json:"type"`
		}{fl.ID, "", FlatGroupEnd})
	}
	type plain FlatLayer
	return json.Marshal(plain(fl))
}

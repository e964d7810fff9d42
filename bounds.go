package psdrun

import "image"

// visibility resolves a node's effective visibility for one call.
// Shown overrides win over hidden overrides, which win over the node's
// recorded flag.
type visibility struct {
	hidden map[int]struct{}
	shown  map[int]struct{}
}

func newVisibility(hidden, shown []int) visibility {
	v := visibility{}
	if len(hidden) > 0 {
		v.hidden = make(map[int]struct{}, len(hidden))
		for _, id := range hidden {
			v.hidden[id] = struct{}{}
		}
	}
	if len(shown) > 0 {
		v.shown = make(map[int]struct{}, len(shown))
		for _, id := range shown {
			v.shown[id] = struct{}{}
		}
	}
	return v
}

func (v visibility) visible(n *Node) bool {
	if _, ok := v.shown[n.ID]; ok {
		return true
	}
	if _, ok := v.hidden[n.ID]; ok {
		return false
	}
	return n.Visible
}

// computeBounds returns the union of the extents of node's visible
// descendants. Invisible children are skipped along with their subtrees.
// An empty result means there is nothing to draw.
func computeBounds(node *Node, vis visibility) image.Rectangle {
	var bounds image.Rectangle
	for _, child := range node.Children {
		if !vis.visible(child) {
			continue
		}
		if child.IsGroup() {
			bounds = bounds.Union(computeBounds(child, vis))
		} else {
			bounds = bounds.Union(child.Rect)
		}
	}
	return bounds
}

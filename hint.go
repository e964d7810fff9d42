package psdrun

import (
	"slices"
)

// HintType tells an exporter how to treat a layer.
type HintType int

const (
	HintEmbed HintType = iota
	HintMerge
	HintCustom
	HintNative
	HintSkip
	HintNone
)

var hintTypeNames = [...]string{"embed", "merge", "custom", "native", "skip", "none"}

// String returns the lowercase hint type name.
func (t HintType) String() string {
	if t < 0 || int(t) >= len(hintTypeNames) {
		return "embed"
	}
	return hintTypeNames[t]
}

// Hint is the authoring hint attached to a layer. Hints do not affect
// rendering; they are persisted through Runtime.Hints and Runtime.SetHints.
type Hint struct {
	ID   string
	Type HintType
	// Name is the component name used by HintCustom.
	Name string
	// Native is the native base element used by HintNative.
	Native  int
	Visible bool
	// Properties is a set; order is not significant.
	Properties []string
}

// DefaultHint returns the hint every layer starts with.
func DefaultHint() Hint {
	return Hint{Type: HintEmbed, Visible: true}
}

// IsDefault reports whether h equals DefaultHint.
func (h Hint) IsDefault() bool {
	return h.ID == "" && h.Type == HintEmbed && h.Name == "" &&
		h.Native == 0 && h.Visible && len(h.Properties) == 0
}

// sortedProperties returns the properties sorted and deduplicated.
func (h Hint) sortedProperties() []string {
	props := slices.Clone(h.Properties)
	slices.Sort(props)
	return slices.Compact(props)
}

package text

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Run is a span of text sharing one style.
type Run struct {
	Text string
	// Font is the resolved family name used for drawing.
	Font string
	// OriginalFont is the font name recorded by the authoring tool, which
	// may differ from Font when the original face was unavailable.
	OriginalFont string
	// FontSize is the em size in pixels.
	FontSize float64
	Color    color.NRGBA
}

// Alignment is the horizontal placement of each line inside the layer rect.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// String returns the lowercase alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlignment maps a name produced by String back to an Alignment.
// Unknown names are AlignLeft.
func ParseAlignment(s string) Alignment {
	switch s {
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

// Normalize returns s in Unicode normalization form C.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// Join concatenates the text of runs.
func Join(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ColorName formats c as "#rrggbb". Alpha is not encoded.
func ColorName(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseColor parses "#rrggbb" or "#aarrggbb" into an NRGBA color.
func ParseColor(s string) (color.NRGBA, error) {
	var c color.NRGBA
	switch len(s) {
	case 7:
		c.A = 255
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.A, &c.R, &c.G, &c.B); err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return c, nil
}

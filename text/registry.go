package text

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FallbackFamily is the family used for runs whose font is not registered.
const FallbackFamily = "Go"

// Face is one parsed font of a registered file.
//
// The same font is held twice: x/image for glyph rasterization and
// go-text for shaping. Both are read-only and safe for concurrent use.
type Face struct {
	Family string
	sfnt   *opentype.Font
	shaped *gotext.Font
}

// Registry maps family names to parsed fonts.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	faces    map[string]*Face
	families []string

	fallback func() (*Face, error)
}

// NewRegistry creates an empty registry. Go Regular is parsed on first use
// as the fallback face.
func NewRegistry() *Registry {
	return &Registry{
		faces: make(map[string]*Face),
		fallback: sync.OnceValues(func() (*Face, error) {
			faces, err := parseFaces(goregular.TTF, "goregular.ttf")
			if err != nil {
				return nil, err
			}
			return faces[0], nil
		}),
	}
}

// Register parses a TTF, OTF or collection file and makes every face in it
// available by family name. It returns the family names in file order.
// Registering a family again replaces the earlier face.
func (r *Registry) Register(data []byte, filename string) ([]string, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	faces, err := parseFaces(data, filename)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(faces))
	for _, f := range faces {
		key := familyKey(f.Family)
		if _, ok := r.faces[key]; !ok {
			r.families = append(r.families, f.Family)
		}
		r.faces[key] = f
		names = append(names, f.Family)
	}
	return names, nil
}

// Families returns the registered family names in registration order.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.families)
}

// Has reports whether family was registered. Matching ignores case.
func (r *Registry) Has(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.faces[familyKey(family)]
	return ok
}

// Lookup returns the face registered for family, or the fallback face.
func (r *Registry) Lookup(family string) (*Face, error) {
	r.mu.RLock()
	f, ok := r.faces[familyKey(family)]
	r.mu.RUnlock()
	if ok {
		return f, nil
	}
	return r.fallback()
}

func familyKey(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// parseFaces parses every font in data with both backends.
func parseFaces(data []byte, filename string) ([]*Face, error) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, &FontError{Filename: filename, Err: err}
	}
	shaped, err := gotext.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return nil, &FontError{Filename: filename, Err: err}
	}
	if len(shaped) != coll.NumFonts() {
		return nil, &FontError{
			Filename: filename,
			Err:      fmt.Errorf("collection size mismatch: %d != %d", len(shaped), coll.NumFonts()),
		}
	}

	faces := make([]*Face, 0, len(shaped))
	var buf sfnt.Buffer
	for i := range coll.NumFonts() {
		f, err := coll.Font(i)
		if err != nil {
			return nil, &FontError{Filename: filename, Err: err}
		}
		family, err := f.Name(&buf, sfnt.NameIDFamily)
		if err != nil || family == "" {
			continue
		}
		faces = append(faces, &Face{Family: family, sfnt: f, shaped: shaped[i].Font})
	}
	if len(faces) == 0 {
		return nil, ErrNoFamilies
	}
	return faces, nil
}

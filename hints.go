package psdrun

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// hintsFormatKey marks a hints document; its value is the format version.
const hintsFormatKey = "qtpsdparser.hint"

type hintJSON struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name,omitempty"`
	Native     int      `json:"native"`
	Properties []string `json:"properties,omitempty"`
	Type       int      `json:"type"`
	Visible    bool     `json:"visible"`
}

// Hints returns every non-default layer hint as JSON keyed by layer id.
func (r *Runtime) Hints(h int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return nil, err
	}

	layers := make(map[string]hintJSON)
	e.doc.Walk(func(n *Node) bool {
		if !n.Hint.IsDefault() {
			layers[strconv.Itoa(n.ID)] = hintJSON{
				ID:         n.Hint.ID,
				Name:       n.Hint.Name,
				Native:     n.Hint.Native,
				Properties: n.Hint.sortedProperties(),
				Type:       int(n.Hint.Type),
				Visible:    n.Hint.Visible,
			}
		}
		return true
	})

	data, err := json.Marshal(map[string]any{
		"layers":       layers,
		hintsFormatKey: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("psdrun: encode hints: %w", err)
	}
	return data, nil
}

// SetHints restores hints produced by Hints and returns how many layers
// were updated. Entries for unknown layer ids are skipped. Fields that are
// missing or of the wrong type take their zero value, so a missing
// "visible" field means hidden.
func (r *Runtime) SetHints(h int, data []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.lookup(h)
	if err != nil {
		return 0, err
	}
	if !json.Valid(data) {
		return 0, ErrInvalidJSON
	}

	var root struct {
		Layers map[string]json.RawMessage `json:"layers"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		Logger().Debug("hints document has no layer map", "err", err)
		return 0, nil
	}

	restored := 0
	for key, raw := range root.Layers {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		node := e.doc.Find(id)
		if node == nil {
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			Logger().Debug("hint entry is not an object", "id", id)
		}
		node.Hint = Hint{
			ID:         hintField[string](fields, "id"),
			Type:       HintType(hintField[int](fields, "type")),
			Name:       hintField[string](fields, "name"),
			Native:     hintField[int](fields, "native"),
			Visible:    hintField[bool](fields, "visible"),
			Properties: hintField[[]string](fields, "properties"),
		}
		restored++
	}
	return restored, nil
}

// hintField decodes fields[key], or returns the zero value when the field
// is missing or does not decode as T.
func hintField[T any](fields map[string]json.RawMessage, key string) T {
	var v T
	raw, ok := fields[key]
	if !ok {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		Logger().Debug("ignoring hint field", "field", key, "err", err)
		var zero T
		return zero
	}
	return v
}

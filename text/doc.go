// Package text produces the pixels of text layers.
//
// A text layer carries one or more styled runs. Registry resolves a run's
// font family to a parsed font, Measure reports a run's advance using
// HarfBuzz shaping, and Rasterizer draws runs onto a transparent
// straight-alpha image sized to the layer.
//
// Fonts registered with a Registry are looked up by family name. Families
// that are not registered fall back to Go Regular.
package text

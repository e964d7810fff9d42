package psdrun

import "github.com/signal-slot/psd-run/internal/blend"

// BlendMode is a layer blend mode as recorded by the authoring tool.
// The zero value is BlendNormal.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	// BlendPassThrough marks a group that flattens into its parent instead
	// of compositing as an isolated unit.
	BlendPassThrough
	// BlendDissolve composites like BlendNormal; no noise pattern is applied.
	BlendDissolve
	BlendDarken
	BlendMultiply
	BlendColorBurn
	BlendLinearBurn
	BlendDarkerColor
	BlendLighten
	BlendScreen
	BlendColorDodge
	BlendLinearDodge
	BlendLighterColor
	BlendOverlay
	BlendSoftLight
	BlendHardLight
	BlendVividLight
	BlendLinearLight
	BlendPinLight
	BlendHardMix
	BlendDifference
	BlendExclusion
	BlendSubtract
	BlendDivide
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity

	blendModeCount
)

var blendModeInfo = [blendModeCount]struct {
	name string
	op   blend.BlendMode
}{
	BlendNormal:       {"normal", blend.BlendSourceOver},
	BlendPassThrough:  {"passThrough", blend.BlendSourceOver},
	BlendDissolve:     {"dissolve", blend.BlendSourceOver},
	BlendDarken:       {"darken", blend.BlendDarken},
	BlendMultiply:     {"multiply", blend.BlendMultiply},
	BlendColorBurn:    {"colorBurn", blend.BlendColorBurn},
	BlendLinearBurn:   {"linearBurn", blend.BlendLinearBurn},
	BlendDarkerColor:  {"darkerColor", blend.BlendDarkerColor},
	BlendLighten:      {"lighten", blend.BlendLighten},
	BlendScreen:       {"screen", blend.BlendScreen},
	BlendColorDodge:   {"colorDodge", blend.BlendColorDodge},
	BlendLinearDodge:  {"linearDodge", blend.BlendLinearDodge},
	BlendLighterColor: {"lighterColor", blend.BlendLighterColor},
	BlendOverlay:      {"overlay", blend.BlendOverlay},
	BlendSoftLight:    {"softLight", blend.BlendSoftLight},
	BlendHardLight:    {"hardLight", blend.BlendHardLight},
	BlendVividLight:   {"vividLight", blend.BlendVividLight},
	BlendLinearLight:  {"linearLight", blend.BlendLinearLight},
	BlendPinLight:     {"pinLight", blend.BlendPinLight},
	BlendHardMix:      {"hardMix", blend.BlendHardMix},
	BlendDifference:   {"difference", blend.BlendDifference},
	BlendExclusion:    {"exclusion", blend.BlendExclusion},
	BlendSubtract:     {"subtract", blend.BlendSubtract},
	BlendDivide:       {"divide", blend.BlendDivide},
	BlendHue:          {"hue", blend.BlendHue},
	BlendSaturation:   {"saturation", blend.BlendSaturation},
	BlendColor:        {"color", blend.BlendColor},
	BlendLuminosity:   {"luminosity", blend.BlendLuminosity},
}

// String returns the camelCase mode name, e.g. "colorDodge".
// Out-of-range values report "normal".
func (m BlendMode) String() string {
	if m >= blendModeCount {
		return "normal"
	}
	return blendModeInfo[m].name
}

// ParseBlendMode returns the mode named s. Unknown names are BlendNormal.
func ParseBlendMode(s string) BlendMode {
	for m := range blendModeCount {
		if blendModeInfo[m].name == s {
			return m
		}
	}
	return BlendNormal
}

// MarshalText implements encoding.TextMarshaler.
func (m BlendMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *BlendMode) UnmarshalText(b []byte) error {
	*m = ParseBlendMode(string(b))
	return nil
}

// blendFunc returns the pixel operator compositing with this mode.
func (m BlendMode) blendFunc() blend.BlendFunc {
	if m >= blendModeCount {
		return blend.GetBlendFunc(blend.BlendSourceOver)
	}
	return blend.GetBlendFunc(blendModeInfo[m].op)
}

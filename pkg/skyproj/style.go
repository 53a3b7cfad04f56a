package skyproj

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/skyproj/pkg/errors"
)

// Style is a bundle of drawing keywords (edgecolor, facecolor, color,
// linewidth, alpha, s, ...). Unknown keys are ignored by the primitives that
// do not use them.
type Style map[string]any

// Merge returns a new style with the keys of each layer applied in order.
func Merge(layers ...Style) Style {
	out := Style{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Float returns the numeric value of key, or def if it is absent or not a
// number.
func (s Style) Float(key string, def float64) float64 {
	if f, ok := toFloat(s[key]); ok {
		return f
	}
	return def
}

// Bool returns the boolean value of key, or def.
func (s Style) Bool(key string, def bool) bool {
	if b, ok := s[key].(bool); ok {
		return b
	}
	return def
}

// String returns the string value of key, or def.
func (s Style) String(key string, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// Color resolves key to a colour. A value of "none" yields (nil, true); an
// absent key yields def.
func (s Style) Color(key string, def color.Color) (color.Color, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return def, nil
	}
	switch c := v.(type) {
	case color.Color:
		return c, nil
	case string:
		return ParseColor(c)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: cannot use %T as a colour", key, v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"cyan":    {0, 255, 255, 255},
	"magenta": {255, 0, 255, 255},
	"purple":  {128, 0, 128, 255},
	"brown":   {165, 42, 42, 255},
	"pink":    {255, 192, 203, 255},
	"k":       {0, 0, 0, 255},
	"w":       {255, 255, 255, 255},
	"r":       {255, 0, 0, 255},
	"g":       {0, 128, 0, 255},
	"b":       {0, 0, 255, 255},
	"y":       {191, 191, 0, 255},
}

// ParseColor parses a colour name, "#rrggbb", "#rrggbbaa" or "none". "none"
// returns a nil colour.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "none" {
		return nil, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 9) {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			if len(s) == 7 {
				return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
			}
			return color.NRGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown colour %q", s)
}

// hexColor formats c as an SVG colour string.
func hexColor(c color.Color) string {
	if c == nil {
		return "none"
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// opacity returns the alpha of c in [0, 1].
func opacity(c color.Color) float64 {
	if c == nil {
		return 0
	}
	return float64(color.NRGBAModel.Convert(c).(color.NRGBA).A) / 255
}

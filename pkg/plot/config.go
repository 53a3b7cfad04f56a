package plot

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/skyproj/pkg/almanac"
	"github.com/matzehuels/skyproj/pkg/cache"
	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// Config is one layer of plot options, keyed by option name.
type Config map[string]any

// Option keys understood by the plotters.
const (
	KeySubplot             = "subplot"
	KeySkyproj             = "skyproj"
	KeySkyprojKwargs       = "skyproj_kwargs"
	KeyDecorations         = "decorations"
	KeyFigsize             = "figsize"
	KeyEclipticKwargs      = "ecliptic_kwargs"
	KeyGalacticPlaneKwargs = "galactic_plane_kwargs"
	KeySunKwargs           = "sun_kwargs"
	KeyMoonKwargs          = "moon_kwargs"
	KeyHorizonKwargs       = "horizon_kwargs"
	KeyZenithDistance      = "zenith_distance"
	KeyModelObservatory    = "model_observatory"
	KeyCmap                = "cmap"
	KeyColorMin            = "color_min"
	KeyColorMax            = "color_max"
	KeyPercentileClip      = "percentile_clip"
	KeyLogScale            = "log_scale"
	KeyHpxmapKwargs        = "draw_hpxmap_kwargs"
	KeyXLabel              = "xlabel"
	KeyFontSize            = "fontsize"
	KeyLabelSize           = "labelsize"
	KeyCbarOrientation     = "cbar_orientation"
	KeyCbarFormat          = "cbar_format"
	KeyExtend              = "extend"
	KeyPolygonKwargs       = "draw_polygon_kwargs"
	KeyCameraPerimeterFunc = "camera_perimeter_func"
	KeyTitle               = "title"
)

// Decoration names.
const (
	Ecliptic      = "ecliptic"
	GalacticPlane = "galactic_plane"
	Sun           = "sun"
	Moon          = "moon"
	Horizon       = "horizon"
	ColorbarDeco  = "colorbar"
)

// BaseDefaults returns the library-wide defaults. Every call returns fresh
// maps and slices, so a variant may extend them without affecting others.
func BaseDefaults() Config {
	return Config{
		KeySubplot:             111,
		KeySkyproj:             string(skyproj.Mollweide),
		KeySkyprojKwargs:       map[string]any{"lon_0": 0.0},
		KeyDecorations:         []string{Ecliptic, GalacticPlane},
		KeyEclipticKwargs:      map[string]any{"edgecolor": "green"},
		KeyGalacticPlaneKwargs: map[string]any{"edgecolor": "blue"},
		KeySunKwargs:           map[string]any{"color": "yellow"},
		KeyMoonKwargs:          map[string]any{"color": "orange"},
		KeyHorizonKwargs:       map[string]any{"edgecolor": "black", "linewidth": 3.0},
	}
}

// ============================================================================
// Resolution
// ============================================================================

// null is the type of [Null].
type null struct{}

func (null) String() string { return "null" }

// Null is returned for every option that no layer sets. A nil value in a
// layer also reads as Null.
var Null any = null{}

// IsNull reports whether v is [Null] or nil.
func IsNull(v any) bool {
	return v == nil || v == Null
}

// Resolved is the merged, read-only view of a stack of [Config] layers.
type Resolved struct {
	values Config
}

// Resolve merges layers in order; a later layer replaces the top-level keys
// of earlier ones. Nested maps are replaced, not merged. Values are not
// validated.
func Resolve(layers ...Config) Resolved {
	values := make(Config)
	for _, layer := range layers {
		maps.Copy(values, layer)
	}
	return Resolved{values: values}
}

// Get returns the value of key, or [Null] if no layer set it.
func (r Resolved) Get(key string) any {
	v, ok := r.values[key]
	if !ok || v == nil {
		return Null
	}
	return v
}

// Has reports whether key has a non-null value.
func (r Resolved) Has(key string) bool {
	return !IsNull(r.Get(key))
}

// Keys returns the keys with non-null values, sorted.
func (r Resolved) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for k, v := range r.values {
		if v != nil {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// String returns key as a string.
func (r Resolved) String(key string) (string, bool) {
	s, ok := r.Get(key).(string)
	return s, ok
}

// Float returns key as a float64. Any numeric type is accepted.
func (r Resolved) Float(key string) (float64, bool) {
	return toFloat(r.Get(key))
}

// Int returns key as an int. Floats with a fractional part are rejected.
func (r Resolved) Int(key string) (int, bool) {
	f, ok := toFloat(r.Get(key))
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Bool returns key as a bool.
func (r Resolved) Bool(key string) (bool, bool) {
	b, ok := r.Get(key).(bool)
	return b, ok
}

// Strings returns key as a list of strings. Lists decoded from TOML or JSON
// ([]any of strings) are accepted.
func (r Resolved) Strings(key string) ([]string, bool) {
	switch v := r.Get(key).(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Style returns key as a drawing style. The result is a copy; nil is
// returned when the key is not a map.
func (r Resolved) Style(key string) skyproj.Style {
	var m map[string]any
	switch v := r.Get(key).(type) {
	case map[string]any:
		m = v
	case skyproj.Style:
		m = v
	case Config:
		m = v
	default:
		return nil
	}
	return maps.Clone(skyproj.Style(m))
}

// Contains reports whether the list at key holds s.
func (r Resolved) Contains(key, s string) bool {
	list, _ := r.Strings(key)
	return slices.Contains(list, s)
}

// Hash returns a stable digest of the serialisable options. Functions are
// skipped; an observatory contributes its date and latitude.
func (r Resolved) Hash() string {
	canon := make(map[string]any, len(r.values))
	for _, k := range r.Keys() {
		switch v := r.values[k].(type) {
		case almanac.Observatory:
			canon[k] = map[string]float64{"mjd": v.MJD(), "latitude": v.Latitude()}
		default:
			if _, err := json.Marshal(v); err == nil {
				canon[k] = v
			}
		}
	}
	data, _ := json.Marshal(canon)
	return cache.Hash(data)
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

// ============================================================================
// Files
// ============================================================================

// ParseConfig decodes a TOML plot configuration. Tables become nested maps,
// so styling bundles map onto the *_kwargs keys directly:
//
//	cmap = "magma"
//	decorations = ["ecliptic", "horizon"]
//
//	[horizon_kwargs]
//	edgecolor = "red"
func ParseConfig(data []byte) (Config, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse plot config")
	}
	return Config(m), nil
}

// LoadConfig reads a TOML plot configuration from path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "plot config %s does not exist", path)
	}
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

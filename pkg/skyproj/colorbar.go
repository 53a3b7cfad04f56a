package skyproj

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/scale"

	"github.com/matzehuels/skyproj/pkg/errors"
)

// Orientation of a colour bar.
const (
	Horizontal = "horizontal"
	Vertical   = "vertical"
)

// Colorbar is a colour bar attached to an axis. It describes the filled map
// the axis holds at the time it was drawn.
type Colorbar struct {
	Orientation string
	Location    string // bottom, top, left or right
	Shrink      float64
	Aspect      float64
	Pad         float64
	ExtendRect  bool
	Format      string

	Label         string
	LabelFontSize float64
	TickLabelSize float64

	Colormap Colormap
	Min, Max float64
	Log      bool
}

// Default colour-bar geometry.
const (
	DefaultLabelFontSize     = 12.0
	DefaultTickLabelFontSize = 10.0
)

// newColorbar reads the colour-bar keywords from style.
func newColorbar(style Style, m *FilledMap) (*Colorbar, error) {
	cb := &Colorbar{
		Orientation:   strings.ToLower(style.String("orientation", Horizontal)),
		Shrink:        style.Float("shrink", 0.75),
		Aspect:        style.Float("aspect", 25),
		Pad:           style.Float("pad", 0.1),
		ExtendRect:    style.Bool("extendrect", false),
		Format:        style.String("format", ""),
		LabelFontSize: DefaultLabelFontSize,
		TickLabelSize: DefaultTickLabelFontSize,
		Colormap:      m.Colormap,
		Min:           m.Min,
		Max:           m.Max,
		Log:           m.Log,
	}
	switch cb.Orientation {
	case Horizontal:
		cb.Location = style.String("location", "bottom")
	case Vertical:
		cb.Location = style.String("location", "right")
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "colour bar orientation %q is not supported", cb.Orientation)
	}
	if cb.Shrink <= 0 || cb.Shrink > 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "colour bar shrink %g must be in (0, 1]", cb.Shrink)
	}
	if cb.Aspect <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "colour bar aspect %g must be positive", cb.Aspect)
	}
	return cb, nil
}

// SetLabel sets the label text and its font size. A non-positive size keeps
// the current one.
func (cb *Colorbar) SetLabel(label string, fontSize float64) {
	cb.Label = label
	if fontSize > 0 {
		cb.LabelFontSize = fontSize
	}
}

// SetTickLabelSize sets the tick label font size.
func (cb *Colorbar) SetTickLabelSize(size float64) {
	if size > 0 {
		cb.TickLabelSize = size
	}
}

// maxTicks bounds the number of major ticks on a colour bar.
const maxTicks = 6

// Ticks returns the major tick positions in data units, ascending.
func (cb *Colorbar) Ticks() []float64 {
	lo, hi := cb.Min, cb.Max
	if !(hi > lo) {
		return []float64{lo}
	}
	if cb.Log && lo > 0 {
		var out []float64
		for e := math.Ceil(math.Log10(lo)); e <= math.Floor(math.Log10(hi)); e++ {
			out = append(out, math.Pow(10, e))
		}
		if len(out) > 0 {
			return out
		}
	}

	t := linearTicker{lo: lo, hi: hi}
	opts := scale.TickOptions{Max: maxTicks}
	guess := int(math.Floor(math.Log10((hi-lo)/maxTicks))) * 3
	level, ok := opts.FindLevel(t, guess)
	if !ok {
		return []float64{lo, hi}
	}
	return t.ticks(level)
}

// linearTicker places ticks on multiples of [tickStep] within [lo, hi].
type linearTicker struct {
	lo, hi float64
}

var _ scale.Ticker = linearTicker{}

func (t linearTicker) CountTicks(level int) int {
	step := tickStep(level)
	return int(math.Floor(t.hi/step)-math.Ceil(t.lo/step)) + 1
}

func (t linearTicker) TicksAtLevel(level int) interface{} {
	return t.ticks(level)
}

func (t linearTicker) ticks(level int) []float64 {
	step := tickStep(level)
	var out []float64
	for k := math.Ceil(t.lo / step); k*step <= t.hi*(1+1e-12); k++ {
		out = append(out, k*step)
	}
	return out
}

// tickStep returns the spacing of ticks at level: 1, 2, 5 times a power of
// ten, three levels per decade.
func tickStep(level int) float64 {
	decade := math.Floor(float64(level) / 3)
	mult := [3]float64{1, 2, 5}[level-int(decade)*3]
	return mult * math.Pow(10, decade)
}

// braceFormat matches a Python-style "{x:.2f}" format.
var braceFormat = regexp.MustCompile(`^\{[a-zA-Z_]*:([^}]*)\}$`)

// FormatTick formats a tick value with the colour bar's format. Both printf
// ("%.1f") and brace ("{x:.1f}") forms are accepted.
func (cb *Colorbar) FormatTick(v float64) string {
	f := cb.Format
	if m := braceFormat.FindStringSubmatch(f); m != nil {
		f = "%" + m[1]
	}
	if f == "" || !strings.Contains(f, "%") {
		return strconv.FormatFloat(roundTick(v), 'g', 6, 64)
	}
	if strings.HasSuffix(f, "d") {
		return fmt.Sprintf(f, int64(math.Round(v)))
	}
	return fmt.Sprintf(f, v)
}

// roundTick removes floating-point noise from k*step products.
func roundTick(v float64) float64 {
	if v == 0 {
		return 0
	}
	p := math.Pow(10, 12-math.Ceil(math.Log10(math.Abs(v))))
	return math.Round(v*p) / p
}

// Fraction returns where v falls on the bar, in [0, 1].
func (cb *Colorbar) Fraction(v float64) float64 {
	return normalize(v, cb.Min, cb.Max, cb.Log)
}

// normalize maps v into [0, 1] relative to [lo, hi].
func normalize(v, lo, hi float64, log bool) float64 {
	if log && lo > 0 && v > 0 {
		v, lo, hi = math.Log10(v), math.Log10(lo), math.Log10(hi)
	}
	if hi == lo {
		return 0.5
	}
	return clamp((v-lo)/(hi-lo), 0, 1)
}

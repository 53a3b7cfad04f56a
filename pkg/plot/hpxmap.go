package plot

import (
	"fmt"
	"maps"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/metric"
	"github.com/matzehuels/skyproj/pkg/partition"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// Variant is one way of drawing metric values onto an axis.
type Variant interface {
	// Name identifies the variant in logs and cache keys.
	Name() string
	// Defaults returns the variant's configuration layer, applied on top
	// of [BaseDefaults].
	Defaults() Config
	// Draw draws values onto ax.
	Draw(ax *skyproj.Axis, values metric.Values, part partition.Partition, cfg Resolved) error
}

// DecorationSet is implemented by variants that support only some
// decorations. Variants without it support all of [Decorations].
type DecorationSet interface {
	Decorations() []string
}

// Hpxmap draws one filled cell per partition cell and adds a colour bar.
type Hpxmap struct {
	Logger *log.Logger
}

var _ Variant = (*Hpxmap)(nil)

func (*Hpxmap) Name() string { return "hpxmap" }

// Defaults appends the colour bar to the base decorations.
func (*Hpxmap) Defaults() Config {
	decorations, _ := BaseDefaults()[KeyDecorations].([]string)
	return Config{
		KeyDecorations: append(decorations, ColorbarDeco),
	}
}

// Draw draws the filled map. An unknown cmap is logged and replaced by the
// default colour map.
func (h *Hpxmap) Draw(ax *skyproj.Axis, values metric.Values, part partition.Partition, cfg Resolved) error {
	if part == nil {
		return errors.New(errors.ErrCodeInvalidInput, "filled map needs a partition")
	}
	style := skyproj.Style{"zoom": false}
	maps.Copy(style, cfg.Style(KeyHpxmapKwargs))

	switch c := cfg.Get(KeyCmap).(type) {
	case skyproj.Colormap:
		style["cmap"] = c
	case string:
		cmap, err := skyproj.LookupColormap(c)
		if err != nil {
			h.logger().Warn("invalid colour map, using the default", "cmap", c, "default", skyproj.DefaultColormap)
			break
		}
		style["cmap"] = cmap
	default:
		if cfg.Has(KeyCmap) {
			h.logger().Warn("colour map must be a name, using the default",
				"cmap", c, "type", fmt.Sprintf("%T", c), "default", skyproj.DefaultColormap)
		}
	}

	style["vmin"], style["vmax"] = ColorLimits(values, cfg)
	if logScale, _ := cfg.Bool(KeyLogScale); logScale {
		style["norm"] = "log"
	}

	drawTitle(ax, cfg)
	return ax.DrawHpxmap(skyproj.Map{
		Values:    values.Data,
		Mask:      values.Mask,
		Partition: part,
	}, style)
}

func (h *Hpxmap) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

// drawTitle sets the axis title when one is configured.
func drawTitle(ax *skyproj.Axis, cfg Resolved) {
	if title, ok := cfg.String(KeyTitle); ok {
		ax.SetTitle(title)
	}
}

// Package plot composes sky maps: it resolves plot options, finds or creates
// the projection axis for a canvas subplot, lets a [Variant] draw the data and
// finally adds the configured decorations.
//
// # Configuration
//
// Options come in [Config] layers: [BaseDefaults], the variant's defaults and
// the caller's overrides, merged by [Resolve]. Any option that no layer sets
// reads as [Null], so lookups never fail.
//
// # Axis reuse
//
// Axes are tracked per canvas and subplot in a [Registry]. Rendering a second
// plot onto the same canvas and subplot draws onto the existing axis, which is
// how overlays are built up:
//
//	canvas, err := plot.NewHpxmapPlotter().Render(depth, hp, nil, nil)
//	...
//	_, err = plot.NewVisitPerimeterPlotter().Render(visits, nil, plot.Config{
//	    "decorations": []string{"horizon"},
//	    "model_observatory": obs,
//	}, canvas)
//
// The registry holds canvases weakly; entries disappear when a canvas is
// garbage collected.
package plot

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/metric"
	"github.com/matzehuels/skyproj/pkg/partition"
	"github.com/matzehuels/skyproj/pkg/skyproj"
	"github.com/matzehuels/skyproj/pkg/sphere"
)

// Plotter renders one variant.
type Plotter struct {
	variant     Variant
	registry    *Registry
	transformer sphere.Transformer
	logger      *log.Logger
}

// Option configures a [Plotter].
type Option func(*Plotter)

// WithLogger sets the logger used for warnings.
func WithLogger(logger *log.Logger) Option {
	return func(p *Plotter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRegistry uses r instead of [DefaultRegistry].
func WithRegistry(r *Registry) Option {
	return func(p *Plotter) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithTransformer sets the coordinate transformer used by decorations.
func WithTransformer(t sphere.Transformer) Option {
	return func(p *Plotter) {
		if t != nil {
			p.transformer = t
		}
	}
}

// NewPlotter returns a plotter for v.
func NewPlotter(v Variant, opts ...Option) *Plotter {
	p := &Plotter{
		variant:     v,
		registry:    DefaultRegistry,
		transformer: sphere.Spherical{},
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHpxmapPlotter returns a filled-map plotter.
func NewHpxmapPlotter(opts ...Option) *Plotter {
	p := NewPlotter(nil, opts...)
	p.variant = &Hpxmap{Logger: p.logger}
	return p
}

// NewVisitPerimeterPlotter returns a plotter that outlines visits.
func NewVisitPerimeterPlotter(opts ...Option) *Plotter {
	return NewPlotter(VisitPerimeter{}, opts...)
}

// Variant returns the plotter's variant.
func (p *Plotter) Variant() Variant { return p.variant }

// Config returns the options a render with overrides would use.
func (p *Plotter) Config(overrides Config) Resolved {
	return Resolve(BaseDefaults(), p.variant.Defaults(), overrides)
}

// Render draws values onto canvas and returns it. A nil canvas is created
// from the figsize option. The axis for the configured subplot is reused when
// canvas already has one.
func (p *Plotter) Render(values metric.Values, part partition.Partition, overrides Config, canvas *skyproj.Canvas) (*skyproj.Canvas, error) {
	cfg := p.Config(overrides)

	kind, err := projectionKind(cfg)
	if err != nil {
		return nil, err
	}
	axisOpts, err := skyproj.AxisOptionsFrom(cfg.Style(KeySkyprojKwargs))
	if err != nil {
		return nil, err
	}
	if canvas == nil {
		if canvas, err = newCanvas(cfg); err != nil {
			return nil, err
		}
	}

	ax, err := p.registry.Acquire(canvas, cfg.Get(KeySubplot), kind, axisOpts)
	if err != nil {
		return nil, err
	}
	if err := p.variant.Draw(ax, values, part, cfg); err != nil {
		return nil, err
	}
	deco := NewDecorator(p.transformer, p.logger)
	if set, ok := p.variant.(DecorationSet); ok {
		deco = deco.Only(set.Decorations()...)
	}
	if err := deco.Decorate(ax, cfg); err != nil {
		return nil, err
	}

	p.logger.Debug("rendered plot",
		"variant", p.variant.Name(),
		"projection", kind,
		"subplot", ax.Region().Subplot())
	return canvas, nil
}

// projectionKind reads the skyproj option, a name or a [skyproj.Kind].
func projectionKind(cfg Resolved) (skyproj.Kind, error) {
	switch v := cfg.Get(KeySkyproj).(type) {
	case skyproj.Kind:
		return v, nil
	case string:
		return skyproj.ParseKind(v)
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "skyproj: cannot use %T as a projection", cfg.Get(KeySkyproj))
}

// newCanvas creates a canvas sized by the figsize option, [w, h] in inches.
func newCanvas(cfg Resolved) (*skyproj.Canvas, error) {
	if !cfg.Has(KeyFigsize) {
		return skyproj.NewCanvas(), nil
	}
	var size []float64
	switch v := cfg.Get(KeyFigsize).(type) {
	case []float64:
		size = v
	case [2]float64:
		size = v[:]
	case []any:
		for _, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidConfig, "figsize: cannot use %T as a number", e)
			}
			size = append(size, f)
		}
	}
	if len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "figsize must be two positive numbers, got %v", cfg.Get(KeyFigsize))
	}
	return skyproj.NewCanvas(skyproj.WithSize(size[0], size[1])), nil
}

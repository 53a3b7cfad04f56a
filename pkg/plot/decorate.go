package plot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skyproj/pkg/almanac"
	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/skyproj"
	"github.com/matzehuels/skyproj/pkg/sphere"
)

// DefaultZenithDistance is the horizon radius used when none is configured.
const DefaultZenithDistance = 90.0

// Decorations lists every decoration in the order they are drawn.
var Decorations = []string{Ecliptic, GalacticPlane, Sun, Moon, Horizon, ColorbarDeco}

// Decorator draws the overlays named in the "decorations" option.
type Decorator struct {
	transformer sphere.Transformer
	logger      *log.Logger
	allowed     []string
}

// NewDecorator returns a decorator using t for frame conversions. A nil
// transformer means [sphere.Spherical]; a nil logger means log.Default().
func NewDecorator(t sphere.Transformer, logger *log.Logger) *Decorator {
	if t == nil {
		t = sphere.Spherical{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Decorator{transformer: t, logger: logger, allowed: Decorations}
}

// Only returns a copy of d that draws just the named decorations. Requested
// decorations outside names are skipped.
func (d *Decorator) Only(names ...string) *Decorator {
	c := *d
	c.allowed = slices.Clone(names)
	return &c
}

// Decorate draws the requested decorations onto ax. The order is fixed by
// [Decorations] whatever the order of the configured list. Decorations that
// need an observatory are skipped with a warning when none is configured.
func (d *Decorator) Decorate(ax *skyproj.Axis, cfg Resolved) error {
	requested, _ := cfg.Strings(KeyDecorations)
	for _, name := range requested {
		if !slices.Contains(Decorations, name) {
			d.logger.Warn("ignoring unknown decoration", "name", name)
		}
	}

	steps := []struct {
		name string
		draw func(*skyproj.Axis, Resolved) error
	}{
		{Ecliptic, d.drawEcliptic},
		{GalacticPlane, d.drawGalacticPlane},
		{Sun, d.drawSun},
		{Moon, d.drawMoon},
		{Horizon, d.drawHorizon},
		{ColorbarDeco, d.drawColorbar},
	}
	for _, step := range steps {
		if !slices.Contains(requested, step.name) {
			continue
		}
		if !slices.Contains(d.allowed, step.name) {
			d.logger.Debug("decoration does not apply here; skipping", "decoration", step.name)
			continue
		}
		if err := step.draw(ax, cfg); err != nil {
			return fmt.Errorf("draw %s: %w", step.name, err)
		}
	}
	return nil
}

// ============================================================================
// Reference circles
// ============================================================================

// drawCircle draws a closed circle of radius degrees around center.
func (d *Decorator) drawCircle(ax *skyproj.Axis, center sphere.Coord, radius float64, style skyproj.Style) error {
	curve, err := sphere.ComputeArc(d.transformer, center.Lon, center.Lat, sphere.WithRadius(radius))
	if err != nil {
		return err
	}
	return ax.DrawPolygon(curve.RA(), curve.Decl(), style)
}

// drawPole draws the great circle 90 degrees from the pole of frame.
func (d *Decorator) drawPole(ax *skyproj.Axis, frame sphere.Frame, style skyproj.Style) error {
	pole, err := d.transformer.ToICRS(frame, sphere.Coord{Lon: 0, Lat: 90})
	if err != nil {
		return err
	}
	return d.drawCircle(ax, pole, 90, style)
}

func (d *Decorator) drawEcliptic(ax *skyproj.Axis, cfg Resolved) error {
	return d.drawPole(ax, sphere.GeocentricMeanEcliptic, cfg.Style(KeyEclipticKwargs))
}

func (d *Decorator) drawGalacticPlane(ax *skyproj.Axis, cfg Resolved) error {
	return d.drawPole(ax, sphere.Galactic, cfg.Style(KeyGalacticPlaneKwargs))
}

// drawHorizon draws the circle at the configured zenith distance around the
// zenith. A "zd" entry in horizon_kwargs wins over zenith_distance.
func (d *Decorator) drawHorizon(ax *skyproj.Axis, cfg Resolved) error {
	obs, ok := d.observatory(cfg, Horizon)
	if !ok {
		return nil
	}
	style := cfg.Style(KeyHorizonKwargs)
	zd := DefaultZenithDistance
	if v, ok := style["zd"]; ok {
		f, ok := toFloat(v)
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "horizon zd: cannot use %T as a number", v)
		}
		zd = f
		delete(style, "zd")
	} else if f, ok := cfg.Float(KeyZenithDistance); ok {
		zd = f
	}
	zenith := sphere.Coord{Lon: obs.LMST() * 360 / 24, Lat: obs.Latitude()}
	return d.drawCircle(ax, zenith, zd, style)
}

// ============================================================================
// Sun and moon
// ============================================================================

func (d *Decorator) drawSun(ax *skyproj.Axis, cfg Resolved) error {
	return d.drawBody(ax, cfg, Sun, cfg.Style(KeySunKwargs))
}

func (d *Decorator) drawMoon(ax *skyproj.Axis, cfg Resolved) error {
	return d.drawBody(ax, cfg, Moon, cfg.Style(KeyMoonKwargs))
}

// drawBody marks the sun or moon at the observatory's current date.
func (d *Decorator) drawBody(ax *skyproj.Axis, cfg Resolved, body string, style skyproj.Style) error {
	obs, ok := d.observatory(cfg, body)
	if !ok {
		return nil
	}
	pos, err := obs.Almanac().SunMoonPositions(obs.MJD())
	if err != nil {
		return err
	}
	ra, decl := pos.SunRA, pos.SunDec
	if body == Moon {
		ra, decl = pos.MoonRA, pos.MoonDec
	}
	return ax.Scatter([]float64{ra}, []float64{decl}, style)
}

// observatory returns the configured observatory, warning when it is
// missing.
func (d *Decorator) observatory(cfg Resolved, decoration string) (almanac.Observatory, bool) {
	obs, ok := cfg.Get(KeyModelObservatory).(almanac.Observatory)
	if !ok {
		d.logger.Warn("model_observatory must be set to draw this decoration; skipping", "decoration", decoration)
		return nil, false
	}
	return obs, true
}

// ============================================================================
// Colour bar
// ============================================================================

// colorbarDefaults is the horizontal preset under the map.
func colorbarDefaults() skyproj.Style {
	return skyproj.Style{
		"location":    "bottom",
		"shrink":      0.75,
		"aspect":      25.0,
		"pad":         0.1,
		"orientation": skyproj.Horizontal,
	}
}

func (d *Decorator) drawColorbar(ax *skyproj.Axis, cfg Resolved) error {
	style := colorbarDefaults()
	if cfg.Has(KeyExtend) {
		extend, _ := cfg.String(KeyExtend)
		style["extendrect"] = extend == "neither"
	}
	if format, ok := cfg.String(KeyCbarFormat); ok {
		style["format"] = format
	}
	if cfg.Has(KeyCbarOrientation) {
		orientation, ok := cfg.String(KeyCbarOrientation)
		if !ok {
			return errors.New(errors.ErrCodeUnsupported, "cbar_orientation %v is not supported", cfg.Get(KeyCbarOrientation))
		}
		style["orientation"] = orientation
		switch strings.ToLower(orientation) {
		case skyproj.Vertical:
			style["shrink"] = 0.5
			style["location"] = "right"
		case skyproj.Horizontal:
			style["location"] = "bottom"
		default:
			return errors.New(errors.ErrCodeUnsupported, "cbar_orientation %s is not supported", orientation)
		}
	}

	cb, err := ax.DrawColorbar(style)
	if err != nil {
		return err
	}
	label, _ := cfg.String(KeyXLabel)
	fontSize, _ := cfg.Float(KeyFontSize)
	cb.SetLabel(label, fontSize)
	if size, ok := cfg.Float(KeyLabelSize); ok {
		cb.SetTickLabelSize(size)
	}
	return nil
}

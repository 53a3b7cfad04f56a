package skyproj

import (
	"image/color"
	"math"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/partition"
)

// AxisOptions configures a new [Axis].
type AxisOptions struct {
	// Lon0 is the right ascension at the centre of the map, in degrees.
	Lon0 float64
	// NoGraticule disables the RA/Dec grid.
	NoGraticule bool
}

// AxisOptionsFrom reads projection keywords (lon_0, graticule).
func AxisOptionsFrom(kwargs map[string]any) (AxisOptions, error) {
	var opts AxisOptions
	for k, v := range kwargs {
		switch k {
		case "lon_0":
			f, ok := toFloat(v)
			if !ok {
				return AxisOptions{}, errors.New(errors.ErrCodeInvalidConfig, "lon_0: cannot use %T as a number", v)
			}
			opts.Lon0 = f
		case "graticule":
			b, ok := v.(bool)
			if !ok {
				return AxisOptions{}, errors.New(errors.ErrCodeInvalidConfig, "graticule: cannot use %T as a bool", v)
			}
			opts.NoGraticule = !b
		default:
			return AxisOptions{}, errors.New(errors.ErrCodeUnsupported, "projection keyword %q is not supported", k)
		}
	}
	return opts, nil
}

// Polygon is a recorded polygon primitive.
type Polygon struct {
	RA, Decl  []float64
	Edge      color.Color // nil: no outline
	Face      color.Color // nil: no fill
	LineWidth float64     // points
	Alpha     float64
}

// Scatter is a recorded set of point markers.
type Scatter struct {
	RA, Decl []float64
	Color    color.Color
	Size     float64 // marker area in points^2
	Alpha    float64
}

// Map is a metric map over a sky partition.
type Map struct {
	Values    []float64
	Mask      []bool // true = masked
	Partition partition.Partition
}

// FilledMap is a recorded filled map primitive.
type FilledMap struct {
	Map
	Colormap Colormap
	Min, Max float64
	Log      bool
	Alpha    float64
}

// Value returns the value of the cell at (ra, decl) and whether it is
// unmasked.
func (m *FilledMap) Value(ra, decl float64) (float64, bool) {
	i := m.Partition.Locate(ra, decl)
	if i < 0 || i >= len(m.Values) {
		return 0, false
	}
	if i < len(m.Mask) && m.Mask[i] {
		return 0, false
	}
	v := m.Values[i]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Axis is a projection bound to a canvas region. Drawing calls record
// primitives in sky coordinates.
type Axis struct {
	kind      Kind
	proj      Projection
	region    *Region
	graticule bool
	view      [4]float64 // xmin, xmax, ymin, ymax in projected units

	title    string
	polygons []Polygon
	scatters []Scatter
	hpxmap   *FilledMap
	colorbar *Colorbar
}

// NewAxis creates an axis of kind on region. Any axis previously bound to the
// region is replaced.
func NewAxis(region *Region, kind Kind, opts AxisOptions) (*Axis, error) {
	if region == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "axis needs a region")
	}
	proj, err := NewProjection(kind, opts.Lon0)
	if err != nil {
		return nil, err
	}
	a := &Axis{
		kind:      kind,
		proj:      proj,
		region:    region,
		graticule: !opts.NoGraticule,
	}
	a.view[0], a.view[1], a.view[2], a.view[3] = proj.Bounds()
	region.axis = a
	return a, nil
}

func (a *Axis) Kind() Kind             { return a.kind }
func (a *Axis) Projection() Projection { return a.proj }
func (a *Axis) Region() *Region        { return a.region }
func (a *Axis) Title() string          { return a.title }
func (a *Axis) SetTitle(title string)  { a.title = title }
func (a *Axis) Polygons() []Polygon    { return a.polygons }
func (a *Axis) Scatters() []Scatter    { return a.scatters }
func (a *Axis) Hpxmap() *FilledMap     { return a.hpxmap }
func (a *Axis) Colorbar() *Colorbar    { return a.colorbar }
func (a *Axis) View() (xmin, xmax, ymin, ymax float64) {
	return a.view[0], a.view[1], a.view[2], a.view[3]
}

// DrawPolygon records a closed polygon. Recognised style keys: edgecolor
// (default black), facecolor (default none), linewidth (points, default 1),
// alpha.
func (a *Axis) DrawPolygon(ra, decl []float64, style Style) error {
	if len(ra) != len(decl) {
		return errors.New(errors.ErrCodeInvalidInput, "polygon has %d RA and %d Dec values", len(ra), len(decl))
	}
	if len(ra) < 2 {
		return errors.New(errors.ErrCodeInvalidInput, "polygon needs at least 2 vertices, got %d", len(ra))
	}
	edge, err := style.Color("edgecolor", namedColors["black"])
	if err != nil {
		return err
	}
	face, err := style.Color("facecolor", nil)
	if err != nil {
		return err
	}
	a.polygons = append(a.polygons, Polygon{
		RA:        append([]float64(nil), ra...),
		Decl:      append([]float64(nil), decl...),
		Edge:      edge,
		Face:      face,
		LineWidth: style.Float("linewidth", 1),
		Alpha:     style.Float("alpha", 1),
	})
	return nil
}

// Scatter records point markers. Recognised style keys: color (default
// blue), s (marker area in points^2, default 36), alpha.
func (a *Axis) Scatter(ra, decl []float64, style Style) error {
	if len(ra) != len(decl) {
		return errors.New(errors.ErrCodeInvalidInput, "scatter has %d RA and %d Dec values", len(ra), len(decl))
	}
	c, err := style.Color("color", namedColors["blue"])
	if err != nil {
		return err
	}
	a.scatters = append(a.scatters, Scatter{
		RA:    append([]float64(nil), ra...),
		Decl:  append([]float64(nil), decl...),
		Color: c,
		Size:  style.Float("s", 36),
		Alpha: style.Float("alpha", 1),
	})
	return nil
}

// DrawHpxmap records a filled map, replacing any previous one. Recognised
// style keys: cmap (name or [Colormap]), vmin, vmax, norm ("linear" or
// "log"), zoom (fit the view to the unmasked cells), alpha.
func (a *Axis) DrawHpxmap(m Map, style Style) error {
	if m.Partition == nil {
		return errors.New(errors.ErrCodeInvalidInput, "filled map needs a partition")
	}
	if len(m.Values) != m.Partition.Len() {
		return errors.New(errors.ErrCodeInvalidInput, "map has %d values, partition has %d cells", len(m.Values), m.Partition.Len())
	}
	if m.Mask != nil && len(m.Mask) != len(m.Values) {
		return errors.New(errors.ErrCodeInvalidInput, "map has %d values and %d mask entries", len(m.Values), len(m.Mask))
	}

	var cmap Colormap
	switch c := style["cmap"].(type) {
	case Colormap:
		cmap = c
	case string:
		var err error
		if cmap, err = LookupColormap(c); err != nil {
			return err
		}
	case nil:
		cmap = MustColormap(DefaultColormap)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cmap: cannot use %T as a colour map", c)
	}

	fm := &FilledMap{
		Map:      m,
		Colormap: cmap,
		Log:      style.String("norm", "linear") == "log",
		Alpha:    style.Float("alpha", 1),
	}
	lo, hi := dataRange(fm)
	fm.Min = style.Float("vmin", lo)
	fm.Max = style.Float("vmax", hi)
	if fm.Log && fm.Min <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "log colour scale needs a positive minimum, got %g", fm.Min)
	}
	a.hpxmap = fm

	if style.Bool("zoom", false) {
		a.zoomTo(fm)
	}
	return nil
}

// DrawColorbar attaches a colour bar describing the axis's filled map.
// Recognised style keys: orientation, location, shrink, aspect, pad,
// extendrect, format.
func (a *Axis) DrawColorbar(style Style) (*Colorbar, error) {
	if a.hpxmap == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "colour bar needs a filled map on the axis")
	}
	cb, err := newColorbar(style, a.hpxmap)
	if err != nil {
		return nil, err
	}
	a.colorbar = cb
	return cb, nil
}

func dataRange(m *FilledMap) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, v := range m.Values {
		if (i < len(m.Mask) && m.Mask[i]) || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}

// zoomTo shrinks the view to the projected extent of the unmasked cells.
func (a *Axis) zoomTo(m *FilledMap) {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, v := range m.Values {
		if (i < len(m.Mask) && m.Mask[i]) || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		ra, decl := m.Partition.Center(i)
		x, y := a.proj.Forward(ra, decl)
		xmin, xmax = math.Min(xmin, x), math.Max(xmax, x)
		ymin, ymax = math.Min(ymin, y), math.Max(ymax, y)
	}
	if xmin > xmax {
		return
	}
	bx0, bx1, by0, by1 := a.proj.Bounds()
	padX := 0.05 * (bx1 - bx0)
	padY := 0.05 * (by1 - by0)
	a.view = [4]float64{
		math.Max(bx0, xmin-padX), math.Min(bx1, xmax+padX),
		math.Max(by0, ymin-padY), math.Min(by1, ymax+padY),
	}
}

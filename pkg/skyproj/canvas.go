// Package skyproj draws on spherical map projections.
//
// A [Canvas] is the drawing surface (a figure). It is divided into sub-regions
// ([Region]) laid out on a rows x columns grid, and each region hosts at most
// one projection [Axis]. Axes record drawing primitives (polygons, scatter
// markers, filled HEALPix maps, a colour bar) in sky coordinates; the sinks
// [RenderSVG], [RenderPNG] and [RenderPDF] project and draw them.
//
// Regions and axes never reference their canvas. Holding an axis therefore
// does not keep its canvas alive, which lets callers associate axes with a
// canvas through weak references.
//
// Basic usage:
//
//	c := skyproj.NewCanvas(skyproj.WithSize(10, 6))
//	region, err := c.AddSubplot(skyproj.Subplot{Rows: 1, Cols: 1, Index: 1})
//	ax, err := skyproj.NewAxis(region, skyproj.Mollweide, skyproj.AxisOptions{})
//	err = ax.DrawPolygon(ra, decl, skyproj.Style{"edgecolor": "green"})
//	svg := skyproj.RenderSVG(c)
package skyproj

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/skyproj/pkg/errors"
)

const (
	DefaultWidth  = 10.0 // inches
	DefaultHeight = 6.0  // inches
	DefaultDPI    = 100.0
)

// Subplot identifies a sub-region: cell Index (1-based, row-major) of a
// Rows x Cols grid.
type Subplot struct {
	Rows, Cols, Index int
}

func (s Subplot) String() string {
	return fmt.Sprintf("(%d, %d, %d)", s.Rows, s.Cols, s.Index)
}

// Validate checks that the grid is non-empty and Index is within it.
func (s Subplot) Validate() error {
	if s.Rows < 1 || s.Cols < 1 || s.Index < 1 || s.Index > s.Rows*s.Cols {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid subplot %s", s)
	}
	return nil
}

// ParseSubplot normalises a sub-region specifier. A three-digit integer such as
// 111 is read digit by digit and is equivalent to the triple [1, 1, 1]. Triples
// may be given as any integer slice or array, or as a []any of numbers (as
// decoded from TOML or JSON).
func ParseSubplot(v any) (Subplot, error) {
	var s Subplot
	switch x := v.(type) {
	case Subplot:
		s = x
	case int:
		return parseSubplotInt(int64(x))
	case int64:
		return parseSubplotInt(x)
	case float64:
		if x != float64(int64(x)) {
			return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "invalid subplot %v", v)
		}
		return parseSubplotInt(int64(x))
	case [3]int:
		s = Subplot{x[0], x[1], x[2]}
	case []int:
		if len(x) != 3 {
			return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "subplot needs 3 values, got %d", len(x))
		}
		s = Subplot{x[0], x[1], x[2]}
	case []int64:
		if len(x) != 3 {
			return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "subplot needs 3 values, got %d", len(x))
		}
		s = Subplot{int(x[0]), int(x[1]), int(x[2])}
	case []any:
		if len(x) != 3 {
			return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "subplot needs 3 values, got %d", len(x))
		}
		var vals [3]int
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok || f != float64(int(f)) {
				return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "subplot value %v is not an integer", e)
			}
			vals[i] = int(f)
		}
		s = Subplot{vals[0], vals[1], vals[2]}
	default:
		return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "cannot use %T as a subplot", v)
	}
	return s, s.Validate()
}

func parseSubplotInt(n int64) (Subplot, error) {
	digits := strconv.FormatInt(n, 10)
	if len(digits) != 3 {
		return Subplot{}, errors.New(errors.ErrCodeInvalidConfig, "integer subplot %d must have three digits", n)
	}
	s := Subplot{int(digits[0] - '0'), int(digits[1] - '0'), int(digits[2] - '0')}
	return s, s.Validate()
}

// Rect is a rectangle in figure-fraction coordinates, origin bottom-left.
type Rect struct {
	X, Y, W, H float64
}

// Region is a rectangular area of a canvas that hosts one axis.
type Region struct {
	subplot Subplot
	bounds  Rect
	axis    *Axis
}

// Subplot returns the grid cell of the region.
func (r *Region) Subplot() Subplot { return r.subplot }

// Bounds returns the region in figure-fraction coordinates.
func (r *Region) Bounds() Rect { return r.bounds }

// Axis returns the axis bound to the region, or nil.
func (r *Region) Axis() *Axis { return r.axis }

// Canvas is a drawing surface.
type Canvas struct {
	width, height float64 // inches
	dpi           float64
	regions       []*Region
}

// CanvasOption configures a [Canvas].
type CanvasOption func(*Canvas)

// WithSize sets the canvas size in inches. Non-positive values keep the
// default.
func WithSize(width, height float64) CanvasOption {
	return func(c *Canvas) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}

// WithDPI sets the pixel density used by raster sinks.
func WithDPI(dpi float64) CanvasOption {
	return func(c *Canvas) {
		if dpi > 0 {
			c.dpi = dpi
		}
	}
}

// NewCanvas creates an empty canvas.
func NewCanvas(opts ...CanvasOption) *Canvas {
	c := &Canvas{width: DefaultWidth, height: DefaultHeight, dpi: DefaultDPI}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Size returns the canvas size in inches.
func (c *Canvas) Size() (width, height float64) { return c.width, c.height }

// DPI returns the canvas pixel density.
func (c *Canvas) DPI() float64 { return c.dpi }

// Pixels returns the canvas size in pixels at its DPI.
func (c *Canvas) Pixels() (width, height float64) { return c.width * c.dpi, c.height * c.dpi }

// Regions returns the regions in creation order.
func (c *Canvas) Regions() []*Region { return c.regions }

// AddSubplot adds a region for s. Every call creates a new region, even for a
// cell that already has one; callers that want reuse must track regions
// themselves.
func (c *Canvas) AddSubplot(s Subplot) (*Region, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	row := (s.Index - 1) / s.Cols
	col := (s.Index - 1) % s.Cols
	w := 1 / float64(s.Cols)
	h := 1 / float64(s.Rows)
	r := &Region{
		subplot: s,
		bounds: Rect{
			X: float64(col) * w,
			Y: 1 - float64(row+1)*h,
			W: w,
			H: h,
		},
	}
	c.regions = append(c.regions, r)
	return r, nil
}

package skyproj

import (
	"image"
	"image/color"
	"math"
)

// The scene is the device-space form of a canvas shared by all sinks:
// pixel coordinates with the origin at the top-left.

type pt struct{ X, Y float64 }

type pathItem struct {
	class    string
	subpaths [][]pt
	closed   bool
	stroke   color.Color
	width    float64 // pixels
	fill     color.Color
	alpha    float64
}

type markerItem struct {
	class  string
	points []pt
	radius float64
	fill   color.Color
	alpha  float64
}

type imageItem struct {
	class      string
	img        *image.NRGBA
	x, y, w, h float64
}

type textItem struct {
	class    string
	text     string
	x, y     float64
	size     float64 // pixels
	anchor   string  // start, middle or end
	vertical bool    // rotated 90 degrees counter-clockwise
}

type scene struct {
	width, height float64
	items         []any
}

// ============================================================================
// Scene construction
// ============================================================================

const (
	pointsPerInch  = 72.0
	graticuleStep  = 30.0
	seamEpsilon    = 1e-7
	titleGapFactor = 1.6
)

var (
	graticuleColor = color.RGBA{204, 204, 204, 255}
	frameColor     = color.RGBA{0, 0, 0, 255}
)

// buildScene lays out every axis on c at scale times the canvas DPI.
func buildScene(c *Canvas, scale float64) *scene {
	w, h := c.Pixels()
	s := &scene{width: w * scale, height: h * scale}
	px := c.DPI() * scale / pointsPerInch // pixels per point

	for _, r := range c.Regions() {
		if r.axis == nil {
			continue
		}
		b := r.Bounds()
		box := rectPx{
			x: b.X * s.width,
			y: (1 - b.Y - b.H) * s.height,
			w: b.W * s.width,
			h: b.H * s.height,
		}
		s.addAxis(r.axis, box, px)
	}
	return s
}

type rectPx struct{ x, y, w, h float64 }

// axisLayout places the map and colour bar inside an axis box.
type axisLayout struct {
	mapBox  rectPx
	barBox  rectPx
	titleAt pt
	view    [4]float64
}

func (l axisLayout) project(p Projection, ra, decl float64) pt {
	x, y := p.Forward(ra, decl)
	return l.toPx(x, y)
}

func (l axisLayout) toPx(x, y float64) pt {
	v := l.view
	return pt{
		X: l.mapBox.x + (x-v[0])/(v[1]-v[0])*l.mapBox.w,
		Y: l.mapBox.y + (v[3]-y)/(v[3]-v[2])*l.mapBox.h,
	}
}

func (l axisLayout) fromPx(px, py float64) (float64, float64) {
	v := l.view
	return v[0] + (px-l.mapBox.x)/l.mapBox.w*(v[1]-v[0]),
		v[3] - (py-l.mapBox.y)/l.mapBox.h*(v[3]-v[2])
}

func layoutAxis(a *Axis, box rectPx, px float64) axisLayout {
	margin := 0.04 * math.Min(box.w, box.h)
	inner := rectPx{box.x + margin, box.y + margin, box.w - 2*margin, box.h - 2*margin}
	l := axisLayout{view: a.view}

	if a.title != "" {
		size := DefaultLabelFontSize * px
		l.titleAt = pt{inner.x + inner.w/2, inner.y + size}
		inner.y += titleGapFactor * size
		inner.h -= titleGapFactor * size
	}

	// Reserve room for the colour bar.
	var reserve float64
	cb := a.colorbar
	if cb != nil {
		ticks := cb.TickLabelSize * px
		label := 0.0
		if cb.Label != "" {
			label = 1.5 * cb.LabelFontSize * px
		}
		if cb.Orientation == Vertical {
			thick := inner.h * cb.Shrink / cb.Aspect
			reserve = cb.Pad*inner.w*0.5 + thick + 4*ticks + label
			if cb.Location == "left" {
				inner.x += reserve
			}
			inner.w -= reserve
		} else {
			thick := inner.w * cb.Shrink / cb.Aspect
			reserve = cb.Pad*inner.h*0.5 + thick + 2*ticks + label
			if cb.Location == "top" {
				inner.y += reserve
			}
			inner.h -= reserve
		}
	}

	// Fit the view into what is left, preserving its aspect ratio.
	vw, vh := a.view[1]-a.view[0], a.view[3]-a.view[2]
	k := math.Min(inner.w/vw, inner.h/vh)
	mw, mh := vw*k, vh*k
	l.mapBox = rectPx{inner.x + (inner.w-mw)/2, inner.y + (inner.h-mh)/2, mw, mh}

	if cb != nil {
		if cb.Orientation == Vertical {
			length := mh * cb.Shrink
			thick := length / cb.Aspect
			gap := cb.Pad * mw * 0.5
			x := l.mapBox.x + mw + gap
			if cb.Location == "left" {
				x = l.mapBox.x - gap - thick
			}
			l.barBox = rectPx{x, l.mapBox.y + (mh-length)/2, thick, length}
		} else {
			length := mw * cb.Shrink
			thick := length / cb.Aspect
			gap := cb.Pad * mh * 0.5
			y := l.mapBox.y + mh + gap
			if cb.Location == "top" {
				y = l.mapBox.y - gap - thick
			}
			l.barBox = rectPx{l.mapBox.x + (mw-length)/2, y, length, thick}
		}
	}
	return l
}

func (s *scene) addAxis(a *Axis, box rectPx, px float64) {
	l := layoutAxis(a, box, px)
	p := a.proj

	if a.hpxmap != nil {
		s.items = append(s.items, imageItem{
			class: "hpxmap",
			img:   rasterize(a.hpxmap, p, l),
			x:     l.mapBox.x, y: l.mapBox.y, w: l.mapBox.w, h: l.mapBox.h,
		})
	}

	if a.graticule {
		s.items = append(s.items, pathItem{
			class:    "graticule",
			subpaths: graticule(p, l),
			stroke:   graticuleColor,
			width:    0.5 * px,
			alpha:    1,
		})
	}
	s.items = append(s.items, pathItem{
		class:    "frame",
		subpaths: [][]pt{boundary(p, l)},
		closed:   true,
		stroke:   frameColor,
		width:    1 * px,
		alpha:    1,
	})

	for _, poly := range a.polygons {
		pieces, closed := splitAtSeam(poly.RA, poly.Decl, p.Lon0(), true)
		item := pathItem{
			class:  "polygon",
			closed: closed,
			stroke: poly.Edge,
			width:  poly.LineWidth * px,
			fill:   poly.Face,
			alpha:  poly.Alpha,
		}
		for _, piece := range pieces {
			item.subpaths = append(item.subpaths, projectPiece(p, l, piece))
		}
		s.items = append(s.items, item)
	}

	for _, sc := range a.scatters {
		m := markerItem{
			class:  "scatter",
			radius: math.Sqrt(sc.Size) / 2 * px,
			fill:   sc.Color,
			alpha:  sc.Alpha,
		}
		for i := range sc.RA {
			m.points = append(m.points, l.project(p, sc.RA[i], sc.Decl[i]))
		}
		s.items = append(s.items, m)
	}

	if a.colorbar != nil {
		s.addColorbar(a.colorbar, l.barBox, px)
	}
	if a.title != "" {
		s.items = append(s.items, textItem{
			class:  "title",
			text:   a.title,
			x:      l.titleAt.X,
			y:      l.titleAt.Y,
			size:   DefaultLabelFontSize * px,
			anchor: "middle",
		})
	}
}

func (s *scene) addColorbar(cb *Colorbar, box rectPx, px float64) {
	vertical := cb.Orientation == Vertical
	s.items = append(s.items, imageItem{
		class: "colorbar",
		img:   gradientImage(cb, vertical),
		x:     box.x, y: box.y, w: box.w, h: box.h,
	})
	s.items = append(s.items, pathItem{
		class:    "colorbar-frame",
		subpaths: [][]pt{{{box.x, box.y}, {box.x + box.w, box.y}, {box.x + box.w, box.y + box.h}, {box.x, box.y + box.h}}},
		closed:   true,
		stroke:   frameColor,
		width:    0.8 * px,
		alpha:    1,
	})

	tickLen := 3.5 * px
	tickSize := cb.TickLabelSize * px
	var ticks [][]pt
	for _, v := range cb.Ticks() {
		f := cb.Fraction(v)
		label := textItem{class: "colorbar-tick", text: cb.FormatTick(v), size: tickSize}
		if vertical {
			y := box.y + box.h*(1-f)
			ticks = append(ticks, []pt{{box.x + box.w, y}, {box.x + box.w + tickLen, y}})
			label.x, label.y, label.anchor = box.x+box.w+tickLen+2*px, y+tickSize/3, "start"
		} else {
			x := box.x + box.w*f
			ticks = append(ticks, []pt{{x, box.y + box.h}, {x, box.y + box.h + tickLen}})
			label.x, label.y, label.anchor = x, box.y+box.h+tickLen+tickSize, "middle"
		}
		s.items = append(s.items, label)
	}
	s.items = append(s.items, pathItem{class: "colorbar-ticks", subpaths: ticks, stroke: frameColor, width: 0.8 * px, alpha: 1})

	if cb.Label != "" {
		size := cb.LabelFontSize * px
		label := textItem{class: "colorbar-label", text: cb.Label, size: size, anchor: "middle"}
		if vertical {
			label.x = box.x + box.w + tickLen + 4*tickSize + size
			label.y = box.y + box.h/2
			label.vertical = true
		} else {
			label.x = box.x + box.w/2
			label.y = box.y + box.h + tickLen + 2*tickSize + size
		}
		s.items = append(s.items, label)
	}
}

// ============================================================================
// Geometry helpers
// ============================================================================

// skyPt is a sky position with longitude relative to the map centre.
type skyPt struct{ rel, decl float64 }

// splitAtSeam cuts a polyline where it crosses the antimeridian of lon0,
// inserting a vertex on each side of the seam at the interpolated
// declination. For a closed ring that crosses the seam the first and last
// pieces are joined and the result is reported as open.
func splitAtSeam(ra, decl []float64, lon0 float64, closed bool) ([][]skyPt, bool) {
	n := len(ra)
	if n == 0 {
		return nil, closed
	}
	pts := make([]skyPt, 0, n+1)
	for i := range ra {
		pts = append(pts, skyPt{wrap180(ra[i] - lon0), decl[i]})
	}
	if closed {
		pts = append(pts, pts[0])
	}

	var pieces [][]skyPt
	cur := []skyPt{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if math.Abs(b.rel-a.rel) > 180 {
			var da, db, aEdge, bEdge float64
			if a.rel > 0 {
				da, db = 180-a.rel, b.rel+180
				aEdge, bEdge = 180-seamEpsilon, -180+seamEpsilon
			} else {
				da, db = a.rel+180, 180-b.rel
				aEdge, bEdge = -180+seamEpsilon, 180-seamEpsilon
			}
			f := 0.5
			if da+db > 0 {
				f = da / (da + db)
			}
			d := a.decl + f*(b.decl-a.decl)
			cur = append(cur, skyPt{aEdge, d})
			pieces = append(pieces, cur)
			cur = []skyPt{{bEdge, d}}
		}
		cur = append(cur, b)
	}
	pieces = append(pieces, cur)

	if len(pieces) == 1 {
		if closed {
			pieces[0] = pieces[0][:len(pieces[0])-1]
		}
		return pieces, closed
	}
	if closed {
		last := pieces[len(pieces)-1]
		pieces[0] = append(last, pieces[0][1:]...)
		pieces = pieces[:len(pieces)-1]
	}
	return pieces, false
}

func projectPiece(p Projection, l axisLayout, piece []skyPt) []pt {
	out := make([]pt, len(piece))
	for i, q := range piece {
		out[i] = l.project(p, p.Lon0()+q.rel, q.decl)
	}
	return out
}

// graticule returns meridians and parallels every graticuleStep degrees.
func graticule(p Projection, l axisLayout) [][]pt {
	var lines [][]pt
	for rel := -180 + graticuleStep; rel < 180; rel += graticuleStep {
		var line []pt
		for d := -90.0; d <= 90; d += 2 {
			line = append(line, l.project(p, p.Lon0()+rel, d))
		}
		lines = append(lines, line)
	}
	for d := -90 + graticuleStep; d < 90; d += graticuleStep {
		var line []pt
		for rel := -180 + seamEpsilon; rel <= 180-seamEpsilon; rel += 2 {
			line = append(line, l.project(p, p.Lon0()+rel, d))
		}
		line = append(line, l.project(p, p.Lon0()+180-seamEpsilon, d))
		lines = append(lines, line)
	}
	return lines
}

// boundary traces the outline of the whole-sky map.
func boundary(p Projection, l axisLayout) []pt {
	var out []pt
	for d := -90.0; d <= 90; d++ {
		out = append(out, l.project(p, p.Lon0()+180-seamEpsilon, d))
	}
	for d := 90.0; d >= -90; d-- {
		out = append(out, l.project(p, p.Lon0()-180+seamEpsilon, d))
	}
	return out
}

// rasterize samples the filled map at every pixel of the map box.
func rasterize(m *FilledMap, p Projection, l axisLayout) *image.NRGBA {
	w := max(1, int(math.Round(l.mapBox.w)))
	h := max(1, int(math.Round(l.mapBox.h)))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	alpha := clamp(m.Alpha, 0, 1)

	for j := range h {
		for i := range w {
			x, y := l.fromPx(l.mapBox.x+(float64(i)+0.5)*l.mapBox.w/float64(w), l.mapBox.y+(float64(j)+0.5)*l.mapBox.h/float64(h))
			ra, decl, ok := p.Inverse(x, y)
			if !ok {
				continue
			}
			v, ok := m.Value(ra, decl)
			var c color.Color
			if ok {
				c = m.Colormap.Map(normalize(v, m.Min, m.Max, m.Log))
			} else if m.Colormap.Bad != nil {
				c = m.Colormap.Bad
			} else {
				continue
			}
			n := color.NRGBAModel.Convert(c).(color.NRGBA)
			n.A = uint8(float64(n.A) * alpha)
			img.SetNRGBA(i, j, n)
		}
	}
	return img
}

// gradientImage renders the colour ramp of cb, low values at the left or
// bottom.
func gradientImage(cb *Colorbar, vertical bool) *image.NRGBA {
	const n = 256
	var img *image.NRGBA
	if vertical {
		img = image.NewNRGBA(image.Rect(0, 0, 1, n))
	} else {
		img = image.NewNRGBA(image.Rect(0, 0, n, 1))
	}
	for k := range n {
		c := color.NRGBAModel.Convert(cb.Colormap.Map((float64(k) + 0.5) / n)).(color.NRGBA)
		if vertical {
			img.SetNRGBA(0, n-1-k, c)
		} else {
			img.SetNRGBA(k, 0, c)
		}
	}
	return img
}

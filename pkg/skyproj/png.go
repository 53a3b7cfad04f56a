package skyproj

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background color.Color
}

// WithScale sets the PNG scale factor relative to the canvas DPI (default 1).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGBackground sets the background colour; nil leaves it transparent.
func WithPNGBackground(c color.Color) PNGOption {
	return func(r *pngRenderer) { r.background = c }
}

// RenderPNG rasterises the canvas.
func RenderPNG(c *Canvas, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1, background: color.White}
	for _, opt := range opts {
		opt(&r)
	}
	s := buildScene(c, r.scale)

	dc := gg.NewContext(int(math.Ceil(s.width)), int(math.Ceil(s.height)))
	if r.background != nil {
		dc.SetColor(r.background)
		dc.Clear()
	}

	faces := newFaceCache()
	for _, item := range s.items {
		switch it := item.(type) {
		case pathItem:
			drawPath(dc, it)
		case markerItem:
			drawMarkers(dc, it)
		case imageItem:
			drawImage(dc, it)
		case textItem:
			face, err := faces.get(it.size)
			if err != nil {
				return nil, err
			}
			drawText(dc, face, it)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func withAlpha(c color.Color, alpha float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * clamp(alpha, 0, 1)))
	return n
}

func tracePath(dc *gg.Context, p pathItem) {
	dc.NewSubPath()
	for _, sp := range p.subpaths {
		for i, q := range sp {
			if i == 0 {
				dc.MoveTo(q.X, q.Y)
			} else {
				dc.LineTo(q.X, q.Y)
			}
		}
		if p.closed {
			dc.ClosePath()
		}
		dc.NewSubPath()
	}
}

func drawPath(dc *gg.Context, p pathItem) {
	if len(p.subpaths) == 0 {
		return
	}
	if p.fill != nil {
		tracePath(dc, p)
		dc.SetColor(withAlpha(p.fill, p.alpha))
		dc.Fill()
	}
	if p.stroke != nil && p.width > 0 {
		tracePath(dc, p)
		dc.SetColor(withAlpha(p.stroke, p.alpha))
		dc.SetLineWidth(p.width)
		dc.Stroke()
	}
}

func drawMarkers(dc *gg.Context, m markerItem) {
	if m.fill == nil {
		return
	}
	dc.SetColor(withAlpha(m.fill, m.alpha))
	for _, q := range m.points {
		dc.DrawCircle(q.X, q.Y, m.radius)
		dc.Fill()
	}
}

func drawImage(dc *gg.Context, im imageItem) {
	b := im.img.Bounds()
	dc.Push()
	dc.Translate(im.x, im.y)
	dc.Scale(im.w/float64(b.Dx()), im.h/float64(b.Dy()))
	dc.DrawImage(im.img, 0, 0)
	dc.Pop()
}

func drawText(dc *gg.Context, face font.Face, t textItem) {
	ax := 0.0
	switch t.anchor {
	case "middle":
		ax = 0.5
	case "end":
		ax = 1
	}
	dc.SetFontFace(face)
	dc.SetColor(color.Black)
	if t.vertical {
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), t.x, t.y)
		dc.DrawStringAnchored(t.text, t.x, t.y, ax, 0)
		dc.Pop()
		return
	}
	dc.DrawStringAnchored(t.text, t.x, t.y, ax, 0)
}

// faceCache holds Go Regular faces keyed by pixel size.
type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

func newFaceCache() *faceCache {
	return &faceCache{faces: make(map[float64]font.Face)}
}

func (fc *faceCache) get(size float64) (font.Face, error) {
	size = math.Round(size*4) / 4
	if f, ok := fc.faces[size]; ok {
		return f, nil
	}
	if fc.font == nil {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}
		fc.font = f
	}
	face, err := opentype.NewFace(fc.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	fc.faces[size] = face
	return face, nil
}

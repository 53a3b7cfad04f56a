package skyproj

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"strings"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale      float64
	background string
}

// WithSVGScale scales the output size relative to the canvas DPI.
func WithSVGScale(s float64) SVGOption {
	return func(r *svgRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithBackground sets the page colour. "none" leaves it transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// RenderSVG renders the canvas as a standalone SVG document. Filled maps are
// embedded as PNG images; every other primitive is vector.
func RenderSVG(c *Canvas, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 1, background: "white"}
	for _, opt := range opts {
		opt(&r)
	}
	s := buildScene(c, r.scale)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.width, s.height, s.width, s.height)
	if r.background != "none" {
		fmt.Fprintf(&buf, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}
	for _, item := range s.items {
		switch it := item.(type) {
		case pathItem:
			writePath(&buf, it)
		case markerItem:
			writeMarkers(&buf, it)
		case imageItem:
			writeImage(&buf, it)
		case textItem:
			writeText(&buf, it)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writePath(buf *bytes.Buffer, p pathItem) {
	if len(p.subpaths) == 0 {
		return
	}
	var d strings.Builder
	for _, sp := range p.subpaths {
		for i, q := range sp {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.2f,%.2f ", cmd, q.X, q.Y)
		}
		if p.closed {
			d.WriteString("Z ")
		}
	}
	fill := "none"
	if p.fill != nil {
		fill = hexColor(p.fill)
	}
	fmt.Fprintf(buf, `  <path class="%s" d="%s" fill="%s" fill-opacity="%.3g" stroke="%s" stroke-opacity="%.3g" stroke-width="%.2f" stroke-linejoin="round"/>`+"\n",
		p.class, strings.TrimSpace(d.String()), fill, opacity(p.fill)*p.alpha, hexColor(p.stroke), opacity(p.stroke)*p.alpha, p.width)
}

func writeMarkers(buf *bytes.Buffer, m markerItem) {
	fmt.Fprintf(buf, `  <g class="%s" fill="%s" fill-opacity="%.3g">`+"\n", m.class, hexColor(m.fill), opacity(m.fill)*m.alpha)
	for _, q := range m.points {
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", q.X, q.Y, m.radius)
	}
	buf.WriteString("  </g>\n")
}

func writeImage(buf *bytes.Buffer, im imageItem) {
	data, err := encodePNG(im.img)
	if err != nil {
		return
	}
	fmt.Fprintf(buf, `  <image class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="none" style="image-rendering:pixelated" xlink:href="data:image/png;base64,%s"/>`+"\n",
		im.class, im.x, im.y, im.w, im.h, base64.StdEncoding.EncodeToString(data))
}

func writeText(buf *bytes.Buffer, t textItem) {
	transform := ""
	if t.vertical {
		transform = fmt.Sprintf(` transform="rotate(-90 %.2f %.2f)"`, t.x, t.y)
	}
	fmt.Fprintf(buf, `  <text class="%s" x="%.2f" y="%.2f" font-family="sans-serif" font-size="%.2f" text-anchor="%s"%s>%s</text>`+"\n",
		t.class, t.x, t.y, t.size, t.anchor, transform, escapeXML(t.text))
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s)) //nolint:errcheck // bytes.Buffer never fails
	return buf.String()
}

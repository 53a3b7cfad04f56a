package skyproj

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"
)

func TestSplitAtSeam(t *testing.T) {
	tests := []struct {
		name       string
		ra, decl   []float64
		lon0       float64
		wantPieces int
		wantClosed bool
	}{
		{"inside", []float64{-10, 10, 10, -10}, []float64{-10, -10, 10, 10}, 0, 1, true},
		{"straddles seam", []float64{170, 190, 190, 170}, []float64{-10, -10, 10, 10}, 0, 2, false},
		{"moved centre", []float64{170, 190, 190, 170}, []float64{-10, -10, 10, 10}, 180, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pieces, closed := splitAtSeam(tt.ra, tt.decl, tt.lon0, true)
			if len(pieces) != tt.wantPieces || closed != tt.wantClosed {
				t.Fatalf("splitAtSeam() = %d pieces closed=%v, want %d closed=%v", len(pieces), closed, tt.wantPieces, tt.wantClosed)
			}
			for _, piece := range pieces {
				for i := 1; i < len(piece); i++ {
					if math.Abs(piece[i].rel-piece[i-1].rel) > 180 {
						t.Errorf("piece jumps across the seam: %v", piece)
					}
				}
			}
		})
	}

	pieces, _ := splitAtSeam([]float64{170, 190}, []float64{0, 20}, 0, false)
	if len(pieces) != 2 {
		t.Fatalf("open line: %d pieces, want 2", len(pieces))
	}
	if d := pieces[0][len(pieces[0])-1].decl; math.Abs(d-10) > 1e-9 {
		t.Errorf("seam crossing at decl %v, want 10", d)
	}
}

func testCanvas(t *testing.T) (*Canvas, *Axis) {
	t.Helper()
	c := NewCanvas(WithSize(4, 2), WithDPI(25))
	r, err := c.AddSubplot(Subplot{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAxis(r, Mollweide, AxisOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return c, a
}

func TestRenderSVG(t *testing.T) {
	c, a := testCanvas(t)
	rings := [][2][]float64{
		{{0, 10, 10, 0}, {0, 0, 10, 10}},
		{{170, 190, 190, 170}, {-5, -5, 5, 5}},
		{{300, 310, 305}, {-60, -60, -50}},
	}
	for _, ring := range rings {
		if err := a.DrawPolygon(ring[0], ring[1], Style{"facecolor": "orange", "alpha": 0.5}); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Scatter([]float64{0, 90}, []float64{0, 30}, nil); err != nil {
		t.Fatal(err)
	}
	if err := a.DrawHpxmap(testMap(t, 1), nil); err != nil {
		t.Fatal(err)
	}
	cb, err := a.DrawColorbar(nil)
	if err != nil {
		t.Fatal(err)
	}
	cb.SetLabel("Nvisits <all>", 0)
	a.SetTitle("Coadded depth")

	svg := string(RenderSVG(c))
	checks := []struct {
		substr string
		count  int
	}{
		{`<path class="polygon"`, len(rings)},
		{`<path class="frame"`, 1},
		{`<g class="scatter"`, 1},
		{`<image class="hpxmap"`, 1},
		{`<image class="colorbar"`, 1},
		{`<text class="title"`, 1},
		{`Nvisits &lt;all&gt;`, 1},
		{`<rect class="background"`, 1},
	}
	for _, ch := range checks {
		if got := strings.Count(svg, ch.substr); got != ch.count {
			t.Errorf("count(%q) = %d, want %d", ch.substr, got, ch.count)
		}
	}
	if !strings.Contains(svg, `width="100" height="50"`) {
		t.Errorf("svg header = %q", svg[:min(len(svg), 200)])
	}

	svg = string(RenderSVG(c, WithBackground("none"), WithSVGScale(2)))
	if strings.Contains(svg, `class="background"`) {
		t.Error("transparent background still drew a rect")
	}
	if !strings.Contains(svg, `width="200" height="100"`) {
		t.Error("WithSVGScale(2) did not double the size")
	}
}

func TestRenderSVGNoGraticule(t *testing.T) {
	c := NewCanvas()
	r, _ := c.AddSubplot(Subplot{1, 1, 1})
	if _, err := NewAxis(r, Hammer, AxisOptions{NoGraticule: true}); err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(c))
	if strings.Contains(svg, `class="graticule"`) {
		t.Error("graticule drawn although disabled")
	}
}

func TestRenderPNG(t *testing.T) {
	c, a := testCanvas(t)
	if err := a.DrawPolygon([]float64{0, 40, 40, 0}, []float64{0, 0, 40, 40}, Style{"facecolor": "red"}); err != nil {
		t.Fatal(err)
	}
	if err := a.DrawHpxmap(testMap(t, 1), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := a.DrawColorbar(nil); err != nil {
		t.Fatal(err)
	}
	a.SetTitle("map")

	tests := []struct {
		scale         float64
		width, height int
	}{
		{1, 100, 50},
		{2, 200, 100},
	}
	for _, tt := range tests {
		data, err := RenderPNG(c, WithScale(tt.scale))
		if err != nil {
			t.Fatalf("RenderPNG() error = %v", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("png.Decode() error = %v", err)
		}
		if b := img.Bounds(); b.Dx() != tt.width || b.Dy() != tt.height {
			t.Errorf("scale %v: image %dx%d, want %dx%d", tt.scale, b.Dx(), b.Dy(), tt.width, tt.height)
		}
	}
}

package skyproj

import (
	"image/color"
	"math"
	"testing"

	"github.com/matzehuels/skyproj/pkg/errors"
)

func TestLookupColormap(t *testing.T) {
	for _, name := range ColormapNames() {
		m, err := LookupColormap(name)
		if err != nil {
			t.Fatalf("LookupColormap(%q) error = %v", name, err)
		}
		lo := color.NRGBAModel.Convert(m.Map(0)).(color.NRGBA)
		hi := color.NRGBAModel.Convert(m.Map(1)).(color.NRGBA)
		if lo == hi {
			t.Errorf("%s: Map(0) == Map(1) = %v", name, lo)
		}
	}

	v := MustColormap("viridis")
	if got := v.Map(0); !nearColor(got, color.RGBA{0x44, 0x01, 0x54, 255}) {
		t.Errorf("viridis(0) = %v", got)
	}
	if got := color.RGBAModel.Convert(v.Map(2)).(color.RGBA); got != (color.RGBA{0xfd, 0xe7, 0x25, 255}) {
		t.Errorf("viridis(2) = %v, want clamped to the top colour", got)
	}
	if v.Map(0.05) == v.Map(0) {
		t.Error("viridis does not vary within its first segment")
	}

	r := MustColormap("Viridis_r")
	if got := r.Map(0); !nearColor(got, color.RGBA{0xfd, 0xe7, 0x25, 255}) {
		t.Errorf("viridis_r(0) = %v", got)
	}

	if _, err := LookupColormap("jet2"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("LookupColormap(jet2) error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func nearColor(got color.Color, want color.RGBA) bool {
	g := color.RGBAModel.Convert(got).(color.RGBA)
	d := func(a, b uint8) bool { return math.Abs(float64(a)-float64(b)) <= 2 }
	return d(g.R, want.R) && d(g.G, want.G) && d(g.B, want.B) && g.A == want.A
}

func testFilledMap() *FilledMap {
	return &FilledMap{Colormap: MustColormap("viridis"), Min: 0, Max: 10}
}

func TestNewColorbarPresets(t *testing.T) {
	tests := []struct {
		name         string
		style        Style
		wantLocation string
		wantShrink   float64
		wantErr      Code
	}{
		{"default", Style{}, "bottom", 0.75, ""},
		{"vertical", Style{"orientation": "vertical", "shrink": 0.5}, "right", 0.5, ""},
		{"upper case", Style{"orientation": "VERTICAL", "location": "left", "shrink": 0.5}, "left", 0.5, ""},
		{"diagonal", Style{"orientation": "diagonal"}, "", 0, errors.ErrCodeUnsupported},
		{"bad shrink", Style{"shrink": 2.0}, "", 0, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := newColorbar(tt.style, testFilledMap())
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("newColorbar() error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("newColorbar() error = %v", err)
			}
			if cb.Location != tt.wantLocation || cb.Shrink != tt.wantShrink {
				t.Errorf("newColorbar() location=%s shrink=%v, want %s %v", cb.Location, cb.Shrink, tt.wantLocation, tt.wantShrink)
			}
		})
	}
}

// Code aliases errors.Code for table readability.
type Code = errors.Code

func TestColorbarTicks(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		log      bool
		want     []float64
	}{
		{"unit range", 0, 1, false, []float64{0, 0.2, 0.4, 0.6, 0.8, 1}},
		{"decades", 0, 100, false, []float64{0, 20, 40, 60, 80, 100}},
		{"offset", 23, 31, false, []float64{24, 26, 28, 30}},
		{"negative", -5, 5, false, []float64{-4, -2, 0, 2, 4}},
		{"log", 1, 1000, true, []float64{1, 10, 100, 1000}},
		{"degenerate", 3, 3, false, []float64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := &Colorbar{Min: tt.min, Max: tt.max, Log: tt.log}
			got := cb.Ticks()
			if len(got) != len(tt.want) {
				t.Fatalf("Ticks() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Fatalf("Ticks() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLinearTickerCounts(t *testing.T) {
	tk := linearTicker{lo: -4, hi: 16}
	for level := 0; level <= 6; level++ {
		ticks, ok := tk.TicksAtLevel(level).([]float64)
		if !ok {
			t.Fatalf("TicksAtLevel(%d) returned %T", level, tk.TicksAtLevel(level))
		}
		if got := tk.CountTicks(level); got != len(ticks) {
			t.Errorf("CountTicks(%d) = %d, TicksAtLevel has %d", level, got, len(ticks))
		}
	}
}

func TestFormatTick(t *testing.T) {
	tests := []struct {
		format string
		v      float64
		want   string
	}{
		{"", 0.30000000000000004, "0.3"},
		{"", 1500, "1500"},
		{"%.2f", 1.5, "1.50"},
		{"{x:.1f}", 2.25, "2.2"},
		{"%d", 4.6, "5"},
		{"%.0e", 12000, "1e+04"},
	}
	for _, tt := range tests {
		cb := &Colorbar{Format: tt.format}
		if got := cb.FormatTick(tt.v); got != tt.want {
			t.Errorf("FormatTick(%q, %v) = %q, want %q", tt.format, tt.v, got, tt.want)
		}
	}
}

func TestColorbarLabel(t *testing.T) {
	cb, err := newColorbar(Style{}, testFilledMap())
	if err != nil {
		t.Fatal(err)
	}
	cb.SetLabel("Number of visits", 0)
	if cb.Label != "Number of visits" || cb.LabelFontSize != DefaultLabelFontSize {
		t.Errorf("SetLabel() = %q at %v", cb.Label, cb.LabelFontSize)
	}
	cb.SetLabel("Depth", 16)
	cb.SetTickLabelSize(8)
	if cb.LabelFontSize != 16 || cb.TickLabelSize != 8 {
		t.Errorf("label size %v, tick size %v", cb.LabelFontSize, cb.TickLabelSize)
	}
}

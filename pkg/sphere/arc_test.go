package sphere

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/skyproj/pkg/errors"
)

func TestComputeArcQuarterSteps(t *testing.T) {
	curve, err := ComputeArc(Spherical{}, 0, 0, WithRadius(90), WithBearings(0, 360), WithStep(90))
	if err != nil {
		t.Fatalf("ComputeArc() error = %v", err)
	}
	if len(curve) != 5 {
		t.Fatalf("len(curve) = %d, want 5", len(curve))
	}
	for i, want := range []float64{0, 90, 180, 270, 360} {
		if curve[i].Bearing != want {
			t.Errorf("curve[%d].Bearing = %v, want %v", i, curve[i].Bearing, want)
		}
	}

	first := Coord{Lon: curve[0].RA, Lat: curve[0].Decl}
	last := Coord{Lon: curve[4].RA, Lat: curve[4].Decl}
	if d := Separation(first, last); d > 1e-9 {
		t.Errorf("bearing 0 and 360 are %g degrees apart, want same location", d)
	}
	if math.Abs(curve[0].Decl-90) > 1e-9 {
		t.Errorf("bearing 0 declination = %v, want 90", curve[0].Decl)
	}
	if math.Abs(curve[1].RA-90) > 1e-9 || math.Abs(curve[1].Decl) > 1e-9 {
		t.Errorf("bearing 90 = (%v, %v), want (90, 0)", curve[1].RA, curve[1].Decl)
	}
}

func TestComputeArcDefaults(t *testing.T) {
	curve, err := ComputeArc(Spherical{}, 45, -30)
	if err != nil {
		t.Fatalf("ComputeArc() error = %v", err)
	}
	if len(curve) != 361 {
		t.Errorf("len(curve) = %d, want 361", len(curve))
	}
	center := Coord{Lon: 45, Lat: -30}
	for _, p := range curve {
		if d := Separation(center, Coord{Lon: p.RA, Lat: p.Decl}); math.Abs(d-90) > 1e-6 {
			t.Fatalf("bearing %v is %v degrees from centre, want 90", p.Bearing, d)
		}
	}
}

func TestComputeArcNoJumps(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		ra := rng.Float64() * 360
		decl := rng.Float64()*180 - 90
		radius := rng.Float64() * 180
		start := rng.Float64() * 180
		end := start + rng.Float64()*360
		step := 0.5 + rng.Float64()*20

		curve, err := ComputeArc(Spherical{}, ra, decl, WithRadius(radius), WithBearings(start, end), WithStep(step))
		if err != nil {
			t.Fatalf("ComputeArc(%v, %v) error = %v", ra, decl, err)
		}
		for i := 1; i < len(curve); i++ {
			if jump := math.Abs(curve[i].RA - curve[i-1].RA); jump > 180 {
				t.Fatalf("ComputeArc(%v, %v, r=%v): jump of %v at bearing %v", ra, decl, radius, jump, curve[i].Bearing)
			}
			if curve[i].Bearing <= curve[i-1].Bearing {
				t.Fatalf("bearings not ascending at %d", i)
			}
		}
		if last := curve[len(curve)-1].Bearing; last > end {
			t.Fatalf("last bearing %v exceeds end %v", last, end)
		}
	}
}

func TestComputeArcBearingSampling(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		step       float64
		want       []float64
	}{
		{"exact multiple", 0, 10, 5, []float64{0, 5, 10}},
		{"not a multiple", 0, 10, 3, []float64{0, 3, 6, 9}},
		{"single point", 30, 30, 1, []float64{30}},
		{"fractional", 0, 0.3, 0.1, []float64{0, 0.1, 0.2, 0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve, err := ComputeArc(Spherical{}, 10, 10, WithBearings(tt.start, tt.end), WithStep(tt.step))
			if err != nil {
				t.Fatalf("ComputeArc() error = %v", err)
			}
			if len(curve) != len(tt.want) {
				t.Fatalf("len(curve) = %d, want %d", len(curve), len(tt.want))
			}
			for i, w := range tt.want {
				if math.Abs(curve[i].Bearing-w) > 1e-9 {
					t.Errorf("curve[%d].Bearing = %v, want %v", i, curve[i].Bearing, w)
				}
			}
		})
	}
}

func TestComputeArcInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts []ArcOption
	}{
		{"zero step", []ArcOption{WithStep(0)}},
		{"negative step", []ArcOption{WithStep(-1)}},
		{"reversed bearings", []ArcOption{WithBearings(90, 10)}},
		{"NaN step", []ArcOption{WithStep(math.NaN())}},
		{"infinite step", []ArcOption{WithStep(math.Inf(1))}},
		{"tiny step", []ArcOption{WithStep(1e-300)}},
		{"too many points", []ArcOption{WithBearings(0, MaxArcPoints), WithStep(1)}},
		{"infinite end", []ArcOption{WithBearings(0, math.Inf(1))}},
		{"NaN start", []ArcOption{WithBearings(math.NaN(), 360)}},
		{"NaN end", []ArcOption{WithBearings(0, math.NaN())}},
		{"NaN radius", []ArcOption{WithRadius(math.NaN())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeArc(Spherical{}, 0, 0, tt.opts...)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("ComputeArc() error = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

type failingTransformer struct{ Spherical }

func (failingTransformer) Offset(Coord, []float64, float64) ([]Coord, error) {
	return nil, errors.New(errors.ErrCodeInvalidFrame, "no frame")
}

func TestComputeArcPropagatesTransformerError(t *testing.T) {
	_, err := ComputeArc(failingTransformer{}, 0, 0)
	if !errors.Is(err, errors.ErrCodeInvalidFrame) {
		t.Errorf("ComputeArc() error = %v, want %s", err, errors.ErrCodeInvalidFrame)
	}
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"empty", nil, nil},
		{"no wrap", []float64{10, 20, 30}, []float64{10, 20, 30}},
		{"wrap forward", []float64{350, 355, 2, 8}, []float64{350, 355, 362, 368}},
		{"wrap backward", []float64{5, 1, 358, 350}, []float64{5, 1, -2, -10}},
		{"swing", []float64{0, 100, 300, 100}, []float64{0, 100, -60, 100}},
		{"exactly half turn", []float64{0, 180, 0}, []float64{0, 180, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]float64(nil), tt.in...)
			Unwrap(got)
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("Unwrap(%v) = %v, want %v", tt.in, got, tt.want)
					break
				}
			}
		})
	}
}

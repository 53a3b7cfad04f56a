package sphere

import (
	"math"
	"testing"

	"github.com/matzehuels/skyproj/pkg/errors"
)

func TestToICRSPoles(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  Coord
	}{
		{"galactic pole", Galactic, Coord{Lon: 192.85948, Lat: 27.12825}},
		{"ecliptic pole", GeocentricMeanEcliptic, Coord{Lon: 270, Lat: 90 - J2000Obliquity}},
		{"icrs pole", ICRS, Coord{Lon: 0, Lat: 90}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Spherical{}.ToICRS(tt.frame, Coord{Lon: 0, Lat: 90})
			if err != nil {
				t.Fatalf("ToICRS() error = %v", err)
			}
			if d := Separation(got, tt.want); d > 1e-4 {
				t.Errorf("ToICRS(%s pole) = %+v, want %+v (off by %g)", tt.frame, got, tt.want, d)
			}
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	coords := []Coord{{0, 0}, {83.6, 22.0}, {266.4, -29.0}, {359.9, 89.5}, {120, -60}}
	for _, frame := range []Frame{ICRS, Galactic, GeocentricMeanEcliptic} {
		for _, c := range coords {
			native, err := Spherical{}.FromICRS(frame, c)
			if err != nil {
				t.Fatalf("FromICRS(%s) error = %v", frame, err)
			}
			back, err := Spherical{}.ToICRS(frame, native)
			if err != nil {
				t.Fatalf("ToICRS(%s) error = %v", frame, err)
			}
			if d := Separation(c, back); d > 1e-9 {
				t.Errorf("%s round trip of %+v = %+v", frame, c, back)
			}
		}
	}
}

func TestGalacticCenter(t *testing.T) {
	// Sgr A* region: l=0, b=0 is at roughly RA 266.40, Dec -28.94.
	got, err := Spherical{}.ToICRS(Galactic, Coord{Lon: 0, Lat: 0})
	if err != nil {
		t.Fatalf("ToICRS() error = %v", err)
	}
	if d := Separation(got, Coord{Lon: 266.405, Lat: -28.936}); d > 0.01 {
		t.Errorf("galactic centre = %+v", got)
	}
}

func TestUnknownFrame(t *testing.T) {
	_, err := Spherical{}.ToICRS("supergalactic", Coord{})
	if !errors.Is(err, errors.ErrCodeInvalidFrame) {
		t.Errorf("ToICRS() error = %v, want %s", err, errors.ErrCodeInvalidFrame)
	}
	_, err = Spherical{}.FromICRS("fk4", Coord{})
	if !errors.Is(err, errors.ErrCodeInvalidFrame) {
		t.Errorf("FromICRS() error = %v, want %s", err, errors.ErrCodeInvalidFrame)
	}
}

func TestOffsetNormalizesLongitude(t *testing.T) {
	out, err := Spherical{}.Offset(Coord{Lon: 359, Lat: 0}, []float64{90, 270}, 5)
	if err != nil {
		t.Fatalf("Offset() error = %v", err)
	}
	if math.Abs(out[0].Lon-4) > 1e-9 {
		t.Errorf("east offset lon = %v, want 4", out[0].Lon)
	}
	if math.Abs(out[1].Lon-354) > 1e-9 {
		t.Errorf("west offset lon = %v, want 354", out[1].Lon)
	}
}

func TestNormalizeLon(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {-1, 359}, {725, 5}, {-360, 0},
	}
	for _, tt := range tests {
		if got := NormalizeLon(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizeLon(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package partition

import (
	"math"
	"testing"

	"github.com/matzehuels/skyproj/pkg/errors"
)

func TestHealpixRoundTrip(t *testing.T) {
	for _, nside := range []int{1, 2, 4, 8, 16, 32} {
		h := Healpix{Nside: nside}
		for i := range h.Len() {
			ra, decl := h.Center(i)
			if got := h.Locate(ra, decl); got != i {
				t.Fatalf("nside %d: Locate(Center(%d)) = %d", nside, i, got)
			}
		}
	}
}

func TestHealpixLocateCoversSky(t *testing.T) {
	h := Healpix{Nside: 8}
	seen := make([]bool, h.Len())
	for decl := -89.75; decl < 90; decl += 0.5 {
		for ra := 0.25; ra < 360; ra += 0.5 {
			i := h.Locate(ra, decl)
			if i < 0 || i >= h.Len() {
				t.Fatalf("Locate(%v, %v) = %d, out of range", ra, decl, i)
			}
			seen[i] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("pixel %d never located", i)
		}
	}
}

func TestHealpixPoles(t *testing.T) {
	h := Healpix{Nside: 4}
	if got := h.Locate(0, 90); got > 3 {
		t.Errorf("Locate(north pole) = %d, want one of the first four pixels", got)
	}
	if got := h.Locate(0, -90); got < h.Len()-4 {
		t.Errorf("Locate(south pole) = %d, want one of the last four pixels", got)
	}
	if got := h.Locate(-10, 0); got != h.Locate(350, 0) {
		t.Errorf("Locate(-10, 0) = %d, want same as Locate(350, 0) = %d", got, h.Locate(350, 0))
	}
}

func TestHealpixCenterRange(t *testing.T) {
	h := Healpix{Nside: 16}
	for i := range h.Len() {
		ra, decl := h.Center(i)
		if ra < 0 || ra >= 360 || decl < -90 || decl > 90 {
			t.Fatalf("Center(%d) = (%v, %v), out of range", i, ra, decl)
		}
	}
}

func TestNsideForLen(t *testing.T) {
	tests := []struct {
		n       int
		want    int
		wantErr bool
	}{
		{12, 1, false},
		{48, 2, false},
		{3072, 16, false},
		{196608, 128, false},
		{0, 0, true},
		{49, 0, true},
		{108, 0, true}, // nside 3 is not a power of two
	}

	for _, tt := range tests {
		got, err := NsideForLen(tt.n)
		if (err != nil) != tt.wantErr {
			t.Errorf("NsideForLen(%d) error = %v, wantErr %v", tt.n, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("NsideForLen(%d) code = %v", tt.n, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("NsideForLen(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestNewHealpix(t *testing.T) {
	if _, err := NewHealpix(0); err == nil {
		t.Error("NewHealpix(0) succeeded, want error")
	}
	if _, err := NewHealpix(6); err == nil {
		t.Error("NewHealpix(6) succeeded, want error")
	}
	h, err := NewHealpix(64)
	if err != nil {
		t.Fatalf("NewHealpix(64) error = %v", err)
	}
	if got := h.Resolution(); math.Abs(got-0.916) > 0.001 {
		t.Errorf("Resolution() = %v, want ~0.916", got)
	}
}

// Package partition divides the sky into discrete cells.
//
// A [Partition] maps sky positions to cell indices and back. [Healpix]
// implements the HEALPix RING scheme, which is how metric maps computed over
// the sky are usually laid out: cell i of a map of length 12*nside^2 is ring
// pixel i.
package partition

import (
	"math"

	"github.com/matzehuels/skyproj/pkg/errors"
)

// Partition is a division of the sky into Len cells.
type Partition interface {
	// Len returns the number of cells.
	Len() int
	// Locate returns the cell containing (ra, decl), in degrees.
	Locate(ra, decl float64) int
	// Center returns the centre of cell i, in degrees.
	Center(i int) (ra, decl float64)
}

// Healpix is the HEALPix RING-ordered partition with resolution Nside.
type Healpix struct {
	Nside int
}

var _ Partition = Healpix{}

// NewHealpix returns a partition of resolution nside. nside must be a positive
// power of two.
func NewHealpix(nside int) (Healpix, error) {
	if nside <= 0 || nside&(nside-1) != 0 {
		return Healpix{}, errors.New(errors.ErrCodeInvalidInput, "nside must be a positive power of two, got %d", nside)
	}
	return Healpix{Nside: nside}, nil
}

// NsideForLen recovers nside from the length of a full-sky map.
func NsideForLen(n int) (int, error) {
	if n <= 0 || n%12 != 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "map length %d is not a HEALPix map length", n)
	}
	nside := int(math.Round(math.Sqrt(float64(n / 12))))
	if 12*nside*nside != n || nside&(nside-1) != 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "map length %d is not a HEALPix map length", n)
	}
	return nside, nil
}

// Len returns 12*nside^2.
func (h Healpix) Len() int {
	return 12 * h.Nside * h.Nside
}

// Resolution returns the approximate pixel side length in degrees.
func (h Healpix) Resolution() float64 {
	return math.Sqrt(4*math.Pi/float64(h.Len())) * 180 / math.Pi
}

// Locate implements [Partition].
func (h Healpix) Locate(ra, decl float64) int {
	n := h.Nside
	z := math.Sin(decl * math.Pi / 180)
	za := math.Abs(z)
	tt := math.Mod(ra*math.Pi/180, 2*math.Pi) * 2 / math.Pi
	if tt < 0 {
		tt += 4
	}
	ncap := 2 * n * (n - 1)

	if za <= 2.0/3.0 {
		temp1 := float64(n) * (0.5 + tt)
		temp2 := float64(n) * z * 0.75
		jp := int(temp1 - temp2)
		jm := int(temp1 + temp2)
		ir := n + 1 + jp - jm
		kshift := 1 - (ir & 1)
		ip := imod((jp+jm-n+kshift+1)/2, 4*n)
		return ncap + (ir-1)*4*n + ip
	}

	tp := tt - math.Floor(tt)
	tmp := float64(n) * math.Sqrt(3*(1-za))
	jp := int(tp * tmp)
	jm := int((1 - tp) * tmp)
	ir := jp + jm + 1
	ip := imod(int(tt*float64(ir)), 4*ir)
	if z > 0 {
		return 2*ir*(ir-1) + ip
	}
	return h.Len() - 2*ir*(ir+1) + ip
}

// Center implements [Partition].
func (h Healpix) Center(i int) (ra, decl float64) {
	n := h.Nside
	npix := h.Len()
	ncap := 2 * n * (n - 1)
	fact2 := 4 / float64(npix)

	var z, phi float64
	switch {
	case i < ncap:
		iring := (1 + isqrt(1+2*i)) >> 1
		iphi := i + 1 - 2*iring*(iring-1)
		z = 1 - float64(iring*iring)*fact2
		phi = (float64(iphi) - 0.5) * math.Pi / float64(2*iring)
	case i < npix-ncap:
		fact1 := float64(2*n) * fact2
		ip := i - ncap
		tmp := ip / (4 * n)
		iring := tmp + n
		iphi := ip - 4*n*tmp + 1
		fodd := 0.5
		if (iring+n)&1 != 0 {
			fodd = 1
		}
		z = float64(2*n-iring) * fact1
		phi = (float64(iphi) - fodd) * math.Pi * 0.75 * fact1
	default:
		ip := npix - i
		iring := (1 + isqrt(2*ip-1)) >> 1
		iphi := 4*iring + 1 - (ip - 2*iring*(iring-1))
		z = -1 + float64(iring*iring)*fact2
		phi = (float64(iphi) - 0.5) * math.Pi / float64(2*iring)
	}
	return phi * 180 / math.Pi, 90 - math.Acos(z)*180/math.Pi
}

func isqrt(v int) int {
	return int(math.Sqrt(float64(v) + 0.5))
}

func imod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

package almanac

import (
	"math"

	"github.com/matzehuels/skyproj/pkg/sphere"
)

const (
	deg2rad = math.Pi / 180

	// j2000 is the Julian date of the J2000.0 epoch.
	j2000 = 2451545.0
	// mjdOffset converts MJD to JD.
	mjdOffset = 2400000.5
)

// Ephemeris computes sun and moon positions from low-precision series.
// Ecliptic coordinates are converted to equatorial through Transformer.
type Ephemeris struct {
	Transformer sphere.Transformer
}

var _ Almanac = Ephemeris{}

// SunMoonPositions implements [Almanac].
func (e Ephemeris) SunMoonPositions(mjd float64) (Positions, error) {
	sun, err := e.Sun(mjd)
	if err != nil {
		return Positions{}, err
	}
	moon, err := e.Moon(mjd)
	if err != nil {
		return Positions{}, err
	}
	return Positions{
		SunRA: sun.Lon, SunDec: sun.Lat,
		MoonRA: moon.Lon, MoonDec: moon.Lat,
	}, nil
}

// Sun returns the equatorial position of the sun at mjd.
func (e Ephemeris) Sun(mjd float64) (sphere.Coord, error) {
	return e.transformer().ToICRS(sphere.GeocentricMeanEcliptic, SunEcliptic(mjd))
}

// Moon returns the geocentric equatorial position of the moon at mjd.
func (e Ephemeris) Moon(mjd float64) (sphere.Coord, error) {
	return e.transformer().ToICRS(sphere.GeocentricMeanEcliptic, MoonEcliptic(mjd))
}

func (e Ephemeris) transformer() sphere.Transformer {
	if e.Transformer == nil {
		return sphere.Spherical{}
	}
	return e.Transformer
}

// SunEcliptic returns the apparent ecliptic longitude and latitude (zero) of
// the sun at mjd.
func SunEcliptic(mjd float64) sphere.Coord {
	n := mjd + mjdOffset - j2000
	l := 280.460 + 0.9856474*n
	g := (357.528 + 0.9856003*n) * deg2rad
	lambda := l + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)
	return sphere.Coord{Lon: sphere.NormalizeLon(lambda), Lat: 0}
}

// MoonEcliptic returns the geocentric ecliptic longitude and latitude of the
// moon at mjd, using the principal periodic terms only.
func MoonEcliptic(mjd float64) sphere.Coord {
	t := (mjd + mjdOffset - j2000) / 36525
	sin := func(deg float64) float64 { return math.Sin(deg * deg2rad) }

	lambda := 218.32 + 481267.881*t +
		6.29*sin(135.0+477198.87*t) -
		1.27*sin(259.3-413335.36*t) +
		0.66*sin(235.7+890534.22*t) +
		0.21*sin(269.9+954397.74*t) -
		0.19*sin(357.5+35999.05*t) -
		0.11*sin(186.5+966404.03*t)
	beta := 5.13*sin(93.3+483202.02*t) +
		0.28*sin(228.2+960400.89*t) -
		0.28*sin(318.3+6003.15*t) -
		0.17*sin(217.6-407332.21*t)

	return sphere.Coord{Lon: sphere.NormalizeLon(lambda), Lat: beta}
}

// GMST returns the Greenwich mean sidereal time at mjd, in hours.
func GMST(mjd float64) float64 {
	d := mjd + mjdOffset - j2000
	return wrapHours(18.697374558 + 24.06570982441908*d)
}

// LMST returns the local mean sidereal time in hours at east longitude lon
// (degrees).
func LMST(mjd, lon float64) float64 {
	return wrapHours(GMST(mjd) + lon/15)
}

func wrapHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}

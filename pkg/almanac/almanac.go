// Package almanac supplies the observatory context used by sky-map
// decorations: the current date, the site latitude, the local mean sidereal
// time, and sun/moon positions.
//
// [ModelObservatory] is a self-contained implementation that uses
// low-precision solar and lunar theory (good to a few arcminutes for the sun
// and a fraction of a degree for the moon), which is ample for marking the
// bodies on an all-sky map.
package almanac

import (
	"math"
	"time"

	"github.com/matzehuels/skyproj/pkg/sphere"
)

// Observatory is the context required by the sun, moon and horizon
// decorations.
type Observatory interface {
	// MJD returns the current modified Julian date (UTC).
	MJD() float64
	// Latitude returns the site latitude in degrees.
	Latitude() float64
	// LMST returns the local mean sidereal time in hours.
	LMST() float64
	// Almanac returns the ephemeris used for sun and moon positions.
	Almanac() Almanac
}

// Almanac looks up body positions for a date.
type Almanac interface {
	SunMoonPositions(mjd float64) (Positions, error)
}

// Positions holds apparent geocentric equatorial coordinates, in degrees.
type Positions struct {
	SunRA, SunDec   float64
	MoonRA, MoonDec float64
}

// Site is an observatory location.
type Site struct {
	Name      string  `mapstructure:"name" toml:"name"`
	Latitude  float64 `mapstructure:"latitude" toml:"latitude"`   // degrees, north positive
	Longitude float64 `mapstructure:"longitude" toml:"longitude"` // degrees, east positive
	Elevation float64 `mapstructure:"elevation" toml:"elevation"` // metres
}

// Rubin is the Vera C. Rubin Observatory on Cerro Pachon.
var Rubin = Site{
	Name:      "rubin",
	Latitude:  -30.2444,
	Longitude: -70.7494,
	Elevation: 2650,
}

// Sites lists the named site presets.
var Sites = map[string]Site{
	Rubin.Name: Rubin,
}

// MJDUnixOffset is the MJD of the Unix epoch.
const MJDUnixOffset = 40587.0

// MJDFromTime converts t to a modified Julian date.
func MJDFromTime(t time.Time) float64 {
	return float64(t.UnixNano())/float64(24*time.Hour) + MJDUnixOffset
}

// TimeFromMJD converts a modified Julian date to UTC.
func TimeFromMJD(mjd float64) time.Time {
	ns := (mjd - MJDUnixOffset) * float64(24*time.Hour)
	return time.Unix(0, int64(math.Round(ns))).UTC()
}

// ModelObservatory is an [Observatory] at a fixed site and settable date.
type ModelObservatory struct {
	site    Site
	mjd     float64
	almanac Ephemeris
}

var _ Observatory = (*ModelObservatory)(nil)

// NewModelObservatory creates an observatory at site, set to mjd.
func NewModelObservatory(site Site, mjd float64) *ModelObservatory {
	return &ModelObservatory{
		site:    site,
		mjd:     mjd,
		almanac: Ephemeris{Transformer: sphere.Spherical{}},
	}
}

// SetMJD moves the observatory clock.
func (o *ModelObservatory) SetMJD(mjd float64) { o.mjd = mjd }

// Site returns the observatory location.
func (o *ModelObservatory) Site() Site { return o.site }

func (o *ModelObservatory) MJD() float64      { return o.mjd }
func (o *ModelObservatory) Latitude() float64 { return o.site.Latitude }
func (o *ModelObservatory) LMST() float64     { return LMST(o.mjd, o.site.Longitude) }
func (o *ModelObservatory) Almanac() Almanac  { return o.almanac }

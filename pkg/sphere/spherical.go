package sphere

import (
	"math"

	"github.com/matzehuels/skyproj/pkg/errors"
)

// J2000Obliquity is the mean obliquity of the ecliptic at J2000.0, in degrees.
const J2000Obliquity = 23.4392911

// galacticMatrix rotates ICRS unit vectors into the galactic frame.
var galacticMatrix = [3][3]float64{
	{-0.0548755604162154, -0.8734370902348850, -0.4838350155487132},
	{+0.4941094278755837, -0.4448296299600112, +0.7469822444972189},
	{-0.8676661490190047, -0.1980763734312015, +0.4559837761750669},
}

// eclipticMatrix rotates ICRS unit vectors into the mean ecliptic of J2000.
var eclipticMatrix = func() [3][3]float64 {
	s, c := math.Sincos(J2000Obliquity * deg2rad)
	return [3][3]float64{
		{1, 0, 0},
		{0, c, s},
		{0, -s, c},
	}
}()

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// Spherical is the default [Transformer]. It is stateless and safe for
// concurrent use.
type Spherical struct{}

var _ Transformer = Spherical{}

// Offset implements [Transformer] using the direct geodesic on a unit sphere.
func (Spherical) Offset(center Coord, bearings []float64, radius float64) ([]Coord, error) {
	if math.IsNaN(center.Lon) || math.IsNaN(center.Lat) || math.IsNaN(radius) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "offset from (%g, %g) by %g: not a number", center.Lon, center.Lat, radius)
	}
	sinLat, cosLat := math.Sincos(center.Lat * deg2rad)
	sinD, cosD := math.Sincos(radius * deg2rad)

	out := make([]Coord, len(bearings))
	for i, b := range bearings {
		sinB, cosB := math.Sincos(b * deg2rad)
		sinLat2 := sinLat*cosD + cosLat*sinD*cosB
		lat2 := math.Asin(clamp(sinLat2, -1, 1))
		dLon := math.Atan2(sinB*sinD*cosLat, cosD-sinLat*sinLat2)
		out[i] = Coord{
			Lon: NormalizeLon(center.Lon + dLon*rad2deg),
			Lat: lat2 * rad2deg,
		}
	}
	return out, nil
}

// ToICRS implements [Transformer].
func (Spherical) ToICRS(frame Frame, c Coord) (Coord, error) {
	m, err := frameMatrix(frame)
	if err != nil {
		return Coord{}, err
	}
	return fromVector(mulT(m, toVector(c))), nil
}

// FromICRS implements [Transformer].
func (Spherical) FromICRS(frame Frame, c Coord) (Coord, error) {
	m, err := frameMatrix(frame)
	if err != nil {
		return Coord{}, err
	}
	return fromVector(mul(m, toVector(c))), nil
}

// Separation returns the great-circle distance between a and b.
func Separation(a, b Coord) float64 {
	sa, ca := math.Sincos(a.Lat * deg2rad)
	sb, cb := math.Sincos(b.Lat * deg2rad)
	dLon := (b.Lon - a.Lon) * deg2rad
	// Vincenty form; stable for small and antipodal separations.
	num := math.Hypot(cb*math.Sin(dLon), ca*sb-sa*cb*math.Cos(dLon))
	den := sa*sb + ca*cb*math.Cos(dLon)
	return math.Atan2(num, den) * rad2deg
}

// NormalizeLon maps lon into [0, 360).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon, 360)
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon = 0
	}
	return lon
}

func frameMatrix(frame Frame) ([3][3]float64, error) {
	switch frame {
	case ICRS:
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, nil
	case Galactic:
		return galacticMatrix, nil
	case GeocentricMeanEcliptic:
		return eclipticMatrix, nil
	}
	return [3][3]float64{}, errors.New(errors.ErrCodeInvalidFrame, "frame %q is not supported", frame)
}

func toVector(c Coord) [3]float64 {
	sLon, cLon := math.Sincos(c.Lon * deg2rad)
	sLat, cLat := math.Sincos(c.Lat * deg2rad)
	return [3]float64{cLat * cLon, cLat * sLon, sLat}
}

func fromVector(v [3]float64) Coord {
	lon := math.Atan2(v[1], v[0]) * rad2deg
	lat := math.Atan2(v[2], math.Hypot(v[0], v[1])) * rad2deg
	return Coord{Lon: NormalizeLon(lon), Lat: lat}
}

func mul(m [3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := range 3 {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func mulT(m [3][3]float64, v [3]float64) [3]float64 {
	var out [3]float64
	for i := range 3 {
		out[i] = m[0][i]*v[0] + m[1][i]*v[1] + m[2][i]*v[2]
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Package sphere provides great-circle geometry on the celestial sphere.
//
// The main entry point is [ComputeArc], which samples the points lying a fixed
// angular distance from a centre along a range of bearings. The resulting
// [Curve] is unwrapped in right ascension so that it can be handed straight to a
// polygon-drawing primitive without producing a spurious line across the whole
// map where the curve crosses RA = 0/360.
//
// Coordinate conversions between celestial frames are delegated to a
// [Transformer]. [Spherical] is the default, pure-Go implementation and covers
// the ICRS, galactic and J2000 mean-ecliptic frames.
//
// All angles are in degrees.
package sphere

// Frame names a celestial coordinate frame.
type Frame string

// Supported frames.
const (
	ICRS                   Frame = "icrs"
	Galactic               Frame = "galactic"
	GeocentricMeanEcliptic Frame = "geocentricmeanecliptic"
)

// Coord is a position on the sphere. For ICRS, Lon is right ascension and Lat is
// declination.
type Coord struct {
	Lon float64
	Lat float64
}

// Point is one sample of a [Curve].
type Point struct {
	Bearing float64
	RA      float64
	Decl    float64
}

// Curve is an ordered sequence of points, ascending by bearing.
type Curve []Point

// RA returns the right-ascension column of the curve.
func (c Curve) RA() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.RA
	}
	return out
}

// Decl returns the declination column of the curve.
func (c Curve) Decl() []float64 {
	out := make([]float64, len(c))
	for i, p := range c {
		out[i] = p.Decl
	}
	return out
}

// Transformer performs spherical offsets and frame conversions.
type Transformer interface {
	// Offset returns the points reached by travelling radius degrees from
	// center along each bearing (degrees east of north). Longitudes are
	// normalised to [0, 360).
	Offset(center Coord, bearings []float64, radius float64) ([]Coord, error)

	// ToICRS converts a coordinate given in frame to ICRS.
	ToICRS(frame Frame, c Coord) (Coord, error)

	// FromICRS converts an ICRS coordinate to frame.
	FromICRS(frame Frame, c Coord) (Coord, error)
}

package skyproj

import (
	"math"
	"strings"

	"github.com/matzehuels/skyproj/pkg/errors"
)

// Kind names a projection type.
type Kind string

const (
	Mollweide   Kind = "mollweide"
	Hammer      Kind = "hammer"
	Cylindrical Kind = "cylindrical"
)

// Kinds lists the supported projections.
var Kinds = []Kind{Mollweide, Hammer, Cylindrical}

// ParseKind resolves a projection name. Names are case-insensitive and may
// carry a "Skyproj" suffix, so "MollweideSkyproj" is accepted.
func ParseKind(s string) (Kind, error) {
	name := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "skyproj")
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown projection %q", s)
}

// Projection maps sky coordinates onto a plane. Planar coordinates have x
// increasing to the right and y increasing upward; right ascension increases
// to the left, as seen from inside the sphere.
type Projection interface {
	Kind() Kind
	// Lon0 returns the right ascension at the centre of the map.
	Lon0() float64
	// Forward projects (ra, decl) in degrees.
	Forward(ra, decl float64) (x, y float64)
	// Inverse returns the sky position of (x, y); ok is false outside the map.
	Inverse(x, y float64) (ra, decl float64, ok bool)
	// Bounds returns the planar extent of the whole sky.
	Bounds() (xmin, xmax, ymin, ymax float64)
}

// NewProjection creates a projection of kind centred on lon0.
func NewProjection(kind Kind, lon0 float64) (Projection, error) {
	base := projBase{lon0: lon0}
	switch kind {
	case Mollweide:
		return mollweide{base}, nil
	case Hammer:
		return hammer{base}, nil
	case Cylindrical:
		return cylindrical{base}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown projection %q", kind)
}

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
	sqrt2   = math.Sqrt2
)

type projBase struct {
	lon0 float64
}

func (p projBase) Lon0() float64 { return p.lon0 }

// lambda returns the longitude relative to the map centre in radians, in
// [-pi, pi), with the sign flipped so that RA grows to the left.
func (p projBase) lambda(ra float64) float64 {
	return -wrap180(ra-p.lon0) * deg2rad
}

// ra inverts lambda.
func (p projBase) ra(lambda float64) float64 {
	return normalizeRA(p.lon0 - lambda*rad2deg)
}

// ============================================================================
// Mollweide
// ============================================================================

type mollweide struct{ projBase }

func (mollweide) Kind() Kind { return Mollweide }

func (p mollweide) Forward(ra, decl float64) (float64, float64) {
	lam := p.lambda(ra)
	theta := mollweideTheta(decl * deg2rad)
	return 2 * sqrt2 / math.Pi * lam * math.Cos(theta), sqrt2 * math.Sin(theta)
}

func (p mollweide) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(y) > sqrt2 {
		return 0, 0, false
	}
	theta := math.Asin(y / sqrt2)
	c := math.Cos(theta)
	if c == 0 {
		if x != 0 {
			return 0, 0, false
		}
		return p.ra(0), math.Copysign(90, y), true
	}
	lam := math.Pi * x / (2 * sqrt2 * c)
	if math.Abs(lam) > math.Pi {
		return 0, 0, false
	}
	phi := math.Asin(clamp((2*theta+math.Sin(2*theta))/math.Pi, -1, 1))
	return p.ra(lam), phi * rad2deg, true
}

func (mollweide) Bounds() (float64, float64, float64, float64) {
	return -2 * sqrt2, 2 * sqrt2, -sqrt2, sqrt2
}

// mollweideTheta solves 2t + sin 2t = pi sin(phi) by Newton iteration.
func mollweideTheta(phi float64) float64 {
	if math.Abs(math.Abs(phi)-math.Pi/2) < 1e-12 {
		return phi
	}
	target := math.Pi * math.Sin(phi)
	t := phi
	for range 50 {
		f := 2*t + math.Sin(2*t) - target
		d := 2 + 2*math.Cos(2*t)
		if d == 0 {
			break
		}
		step := f / d
		t -= step
		if math.Abs(step) < 1e-12 {
			break
		}
	}
	return t
}

// ============================================================================
// Hammer
// ============================================================================

type hammer struct{ projBase }

func (hammer) Kind() Kind { return Hammer }

func (p hammer) Forward(ra, decl float64) (float64, float64) {
	lam := p.lambda(ra)
	phi := decl * deg2rad
	d := math.Sqrt(1 + math.Cos(phi)*math.Cos(lam/2))
	return 2 * sqrt2 * math.Cos(phi) * math.Sin(lam/2) / d, sqrt2 * math.Sin(phi) / d
}

func (p hammer) Inverse(x, y float64) (float64, float64, bool) {
	if x*x/8+y*y/2 > 1 {
		return 0, 0, false
	}
	z := math.Sqrt(1 - (x/4)*(x/4) - (y/2)*(y/2))
	lam := 2 * math.Atan2(z*x, 2*(2*z*z-1))
	phi := math.Asin(clamp(z*y, -1, 1))
	return p.ra(lam), phi * rad2deg, true
}

func (hammer) Bounds() (float64, float64, float64, float64) {
	return -2 * sqrt2, 2 * sqrt2, -sqrt2, sqrt2
}

// ============================================================================
// Cylindrical (plate carree)
// ============================================================================

type cylindrical struct{ projBase }

func (cylindrical) Kind() Kind { return Cylindrical }

func (p cylindrical) Forward(ra, decl float64) (float64, float64) {
	return p.lambda(ra), decl * deg2rad
}

func (p cylindrical) Inverse(x, y float64) (float64, float64, bool) {
	if math.Abs(x) > math.Pi || math.Abs(y) > math.Pi/2 {
		return 0, 0, false
	}
	return p.ra(x), y * rad2deg, true
}

func (cylindrical) Bounds() (float64, float64, float64, float64) {
	return -math.Pi, math.Pi, -math.Pi / 2, math.Pi / 2
}

// ============================================================================
// Helpers
// ============================================================================

// wrap180 maps an angle in degrees into [-180, 180).
func wrap180(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	if ra >= 360 {
		ra = 0
	}
	return ra
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

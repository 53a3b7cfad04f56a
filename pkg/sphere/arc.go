package sphere

import (
	"math"

	"github.com/matzehuels/skyproj/pkg/errors"
)

const (
	DefaultRadius       = 90.0
	DefaultStartBearing = 0.0
	DefaultEndBearing   = 360.0
	DefaultStep         = 1.0
)

// bearingTolerance lets the end bearing be reached despite accumulated
// floating-point error in the sampling loop.
const bearingTolerance = 1e-9

// MaxArcPoints bounds the number of samples in one arc.
const MaxArcPoints = 1 << 20

type arcConfig struct {
	radius     float64
	start, end float64
	step       float64
}

// ArcOption configures [ComputeArc].
type ArcOption func(*arcConfig)

// WithRadius sets the angular distance from the centre. Default 90.
func WithRadius(deg float64) ArcOption {
	return func(c *arcConfig) { c.radius = deg }
}

// WithBearings sets the bearing range, both ends inclusive. Default 0..360.
func WithBearings(start, end float64) ArcOption {
	return func(c *arcConfig) { c.start, c.end = start, end }
}

// WithStep sets the bearing increment. Default 1.
func WithStep(deg float64) ArcOption {
	return func(c *arcConfig) { c.step = deg }
}

// ComputeArc samples the curve lying a fixed angular distance from
// (centerRA, centerDecl). Bearings run from start to end inclusive in step
// increments; the last sample never passes end.
//
// The right ascensions of the result are unwrapped (see [Unwrap]), so they may
// fall outside [0, 360) but never jump by more than 180 degrees between
// consecutive points.
func ComputeArc(t Transformer, centerRA, centerDecl float64, opts ...ArcOption) (Curve, error) {
	cfg := arcConfig{
		radius: DefaultRadius,
		start:  DefaultStartBearing,
		end:    DefaultEndBearing,
		step:   DefaultStep,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.step <= 0 || !isFinite(cfg.step) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bearing step must be positive, got %g", cfg.step)
	}
	if !isFinite(cfg.start) || !isFinite(cfg.end) || !isFinite(cfg.radius) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"arc needs finite bearings and radius, got %g..%g radius %g", cfg.start, cfg.end, cfg.radius)
	}
	if cfg.end < cfg.start {
		return nil, errors.New(errors.ErrCodeInvalidInput, "end bearing %g is before start bearing %g", cfg.end, cfg.start)
	}
	if n := (cfg.end - cfg.start) / cfg.step; n >= MaxArcPoints {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"bearing step %g over %g..%g exceeds %d points", cfg.step, cfg.start, cfg.end, MaxArcPoints)
	}

	bearings := sampleBearings(cfg.start, cfg.end, cfg.step)
	coords, err := t.Offset(Coord{Lon: centerRA, Lat: centerDecl}, bearings, cfg.radius)
	if err != nil {
		return nil, err
	}

	ra := make([]float64, len(coords))
	for i, c := range coords {
		ra[i] = c.Lon
	}
	Unwrap(ra)

	curve := make(Curve, len(coords))
	for i, c := range coords {
		curve[i] = Point{Bearing: bearings[i], RA: ra[i], Decl: c.Lat}
	}
	return curve, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// sampleBearings computes start + i*step rather than accumulating, so long
// ranges with fractional steps do not drift.
func sampleBearings(start, end, step float64) []float64 {
	n := int(math.Floor((end-start)/step+bearingTolerance)) + 1
	out := make([]float64, 0, n)
	for i := range n {
		b := start + float64(i)*step
		if b > end {
			b = end
		}
		out = append(out, b)
	}
	return out
}

// Unwrap adjusts ra in place so that no two consecutive values differ by more
// than 180 degrees. Each value is compared with the previous, already adjusted,
// value and shifted by a multiple of 360.
func Unwrap(ra []float64) {
	for i := 1; i < len(ra); i++ {
		if math.IsInf(ra[i], 0) || math.IsInf(ra[i-1], 0) {
			continue
		}
		for ra[i]-ra[i-1] > 180 {
			ra[i] -= 360
		}
		for ra[i]-ra[i-1] < -180 {
			ra[i] += 360
		}
	}
}

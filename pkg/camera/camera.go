// Package camera converts telescope pointings into sky-plane footprint
// outlines.
package camera

import (
	"math"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/sphere"
)

// PerimeterFunc maps visit centres and rotations (all degrees) to one closed
// outline per visit. The i-th returned RA and Dec slices describe visit i.
type PerimeterFunc func(ra, decl, rotSkyPos []float64) (ras, decls [][]float64, err error)

// Vertex is a focal-plane position in degrees: X toward the camera's +x axis,
// Y toward +y. With zero rotation +y points north and +x east.
type Vertex struct {
	X, Y float64
}

// Footprint is the outline of a camera's science area on the focal plane.
type Footprint struct {
	Vertices    []Vertex
	Transformer sphere.Transformer
}

// lsstRaft is the angular size of one LSST raft, in degrees.
const lsstRaft = 0.7

// LSST is the 5x5-raft LSST camera with its four corner rafts removed.
var LSST = Footprint{Vertices: cornerClippedSquare(5*lsstRaft/2, 3*lsstRaft/2)}

// Perimeter is the LSST footprint as a [PerimeterFunc].
func Perimeter(ra, decl, rotSkyPos []float64) ([][]float64, [][]float64, error) {
	return LSST.Perimeter(ra, decl, rotSkyPos)
}

var _ PerimeterFunc = Perimeter

// Perimeter implements [PerimeterFunc] for f. The focal plane is mapped onto
// the sky with a gnomonic projection about each centre, rotated by rotSkyPos
// (east of north).
func (f Footprint) Perimeter(ra, decl, rotSkyPos []float64) ([][]float64, [][]float64, error) {
	if len(ra) != len(decl) || len(ra) != len(rotSkyPos) {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput,
			"visit columns differ in length: ra=%d decl=%d rotSkyPos=%d", len(ra), len(decl), len(rotSkyPos))
	}
	if len(f.Vertices) < 3 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "footprint needs at least 3 vertices, got %d", len(f.Vertices))
	}
	t := f.Transformer
	if t == nil {
		t = sphere.Spherical{}
	}

	bearings := make([]float64, len(f.Vertices))
	dists := make([]float64, len(f.Vertices))
	for j, v := range f.Vertices {
		bearings[j] = math.Atan2(v.X, v.Y) * 180 / math.Pi
		dists[j] = math.Atan(math.Hypot(v.X, v.Y)*math.Pi/180) * 180 / math.Pi
	}

	ras := make([][]float64, len(ra))
	decls := make([][]float64, len(ra))
	rotated := make([]float64, 1)
	for i := range ra {
		vr := make([]float64, len(f.Vertices))
		vd := make([]float64, len(f.Vertices))
		for j := range f.Vertices {
			rotated[0] = bearings[j] + rotSkyPos[i]
			pts, err := t.Offset(sphere.Coord{Lon: ra[i], Lat: decl[i]}, rotated, dists[j])
			if err != nil {
				return nil, nil, err
			}
			vr[j], vd[j] = pts[0].Lon, pts[0].Lat
		}
		sphere.Unwrap(vr)
		ras[i], decls[i] = vr, vd
	}
	return ras, decls, nil
}

// cornerClippedSquare returns a square of half-width outer with each corner
// cut back to inner, listed clockwise from the top-left of the top edge.
func cornerClippedSquare(outer, inner float64) []Vertex {
	return []Vertex{
		{-inner, outer}, {inner, outer},
		{inner, inner}, {outer, inner},
		{outer, -inner}, {inner, -inner},
		{inner, -outer}, {-inner, -outer},
		{-inner, -inner}, {-outer, -inner},
		{-outer, inner}, {-inner, inner},
	}
}

package plot

import (
	"maps"
	"slices"

	"github.com/matzehuels/skyproj/pkg/camera"
	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/metric"
	"github.com/matzehuels/skyproj/pkg/opsim"
	"github.com/matzehuels/skyproj/pkg/partition"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// VisitPerimeter outlines the camera footprint of every visit.
type VisitPerimeter struct{}

var _ Variant = VisitPerimeter{}

func (VisitPerimeter) Name() string { return "visit_perimeter" }

func (VisitPerimeter) Defaults() Config { return Config{} }

// Decorations excludes the colour bar; outlines carry no colour scale.
func (VisitPerimeter) Decorations() []string {
	return slices.DeleteFunc(slices.Clone(Decorations), func(name string) bool {
		return name == ColorbarDeco
	})
}

// Draw draws one closed polygon per visit in values.Visits. The footprint
// comes from camera_perimeter_func, by default [camera.Perimeter]; the
// partition is not used.
func (VisitPerimeter) Draw(ax *skyproj.Axis, values metric.Values, _ partition.Partition, cfg Resolved) error {
	perimeter, err := perimeterFunc(cfg)
	if err != nil {
		return err
	}
	style := skyproj.Style{"edgecolor": "black", "linewidth": 0.2}
	maps.Copy(style, cfg.Style(KeyPolygonKwargs))

	drawTitle(ax, cfg)
	if len(values.Visits) == 0 {
		return nil
	}
	ras, decls, err := perimeter(opsim.Columns(values.Visits))
	if err != nil {
		return err
	}
	if len(ras) != len(decls) {
		return errors.New(errors.ErrCodeInvalidInput, "camera footprint gave %d RA and %d Dec outlines", len(ras), len(decls))
	}
	for i := range ras {
		if err := ax.DrawPolygon(ras[i], decls[i], style); err != nil {
			return err
		}
	}
	return nil
}

func perimeterFunc(cfg Resolved) (camera.PerimeterFunc, error) {
	switch f := cfg.Get(KeyCameraPerimeterFunc).(type) {
	case camera.PerimeterFunc:
		return f, nil
	case func(ra, decl, rotSkyPos []float64) ([][]float64, [][]float64, error):
		return f, nil
	}
	if cfg.Has(KeyCameraPerimeterFunc) {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "camera_perimeter_func: cannot use %T as a footprint function", cfg.Get(KeyCameraPerimeterFunc))
	}
	return camera.Perimeter, nil
}

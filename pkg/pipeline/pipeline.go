// Package pipeline turns metric files and opsim databases into rendered sky
// maps.
//
// It is the shared entry point for the CLI and batch jobs: load the input,
// resolve the plot configuration, draw with a [plot.Plotter] and encode the
// canvas in each requested format. Artifacts are cached by input and
// configuration, so re-running an unchanged job is a cache read.
//
// # Stages
//
//  1. Load: metric values from JSON, or visits from an opsim SQLite file
//  2. Plot: draw the variant and its decorations onto a fresh canvas
//  3. Render: encode SVG, PNG and PDF concurrently
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Variant:    pipeline.VariantHpxmap,
//	    ValuesPath: "coadd_depth.json",
//	    Formats:    []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skyproj/pkg/almanac"
	"github.com/matzehuels/skyproj/pkg/cache"
	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/plot"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// =============================================================================
// Default Values
// =============================================================================

// Variant names.
const (
	VariantHpxmap         = "hpxmap"
	VariantVisitPerimeter = "visit_perimeter"
)

// Format constants for output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidVariants is the set of supported plot variants.
var ValidVariants = map[string]bool{
	VariantHpxmap:         true,
	VariantVisitPerimeter: true,
}

const (
	// DefaultScale is the output scale relative to the canvas DPI.
	DefaultScale = 1.0

	// DefaultBackground is the page colour of SVG and PNG output.
	DefaultBackground = "white"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Variant is VariantHpxmap or VariantVisitPerimeter.
	Variant string `json:"variant"`

	// Input. Filled maps read ValuesPath; perimeter plots read visits from
	// OpsimPath, filtered by Where and Limit.
	ValuesPath string `json:"values_path,omitempty"`
	OpsimPath  string `json:"opsim_path,omitempty"`
	Where      string `json:"where,omitempty"`
	Limit      int    `json:"limit,omitempty"`

	// Plot configuration. ConfigPath is a TOML file; Overrides are applied
	// on top of it.
	ConfigPath string      `json:"config_path,omitempty"`
	Overrides  plot.Config `json:"overrides,omitempty"`

	// Site names an observatory preset used for the sun, moon and horizon
	// decorations at MJD. Zero MJD means the start of the first visit, or
	// now for filled maps.
	Site string  `json:"site,omitempty"`
	MJD  float64 `json:"mjd,omitempty"`

	// Output.
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Background string   `json:"background,omitempty"`

	// Refresh ignores cached artifacts and visits.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Canvas is the drawn figure. It is nil when every artifact came from
	// the cache.
	Canvas *skyproj.Canvas

	// InputHash and ConfigHash form the artifact cache key.
	InputHash  string
	ConfigHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Cells      int // partition cells of a filled map
	Visits     int // visits of a perimeter plot
	LoadTime   time.Duration
	PlotTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	VisitsHit bool // visits came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVariant checks that a variant name is valid.
func ValidateVariant(variant string) error {
	if !ValidVariants[variant] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid variant: %q (must be one of: hpxmap, visit_perimeter)", variant)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateVariant(o.Variant); err != nil {
		return err
	}
	switch o.Variant {
	case VariantHpxmap:
		if o.ValuesPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "values_path is required for %s", o.Variant)
		}
	case VariantVisitPerimeter:
		if o.OpsimPath == "" {
			return errors.New(errors.ErrCodeInvalidInput, "opsim_path is required for %s", o.Variant)
		}
		if err := errors.ValidateWhereClause(o.Where); err != nil {
			return err
		}
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must not be negative, got %d", o.Limit)
	}
	if o.Site != "" {
		if _, ok := o.site(); !ok {
			return errors.New(errors.ErrCodeInvalidInput, "unknown site %q", o.Site)
		}
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if _, err := skyproj.ParseColor(o.Background); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format, configHash string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Variant:    o.Variant,
		Format:     format,
		ConfigHash: configHash + "/" + o.Background,
		Scale:      o.Scale,
	}
}

// site returns the named observatory preset.
func (o *Options) site() (almanac.Site, bool) {
	s, ok := almanac.Sites[strings.ToLower(o.Site)]
	return s, ok
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/skyproj/pkg/almanac"
	"github.com/matzehuels/skyproj/pkg/cache"
	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/metric"
	"github.com/matzehuels/skyproj/pkg/observability"
	"github.com/matzehuels/skyproj/pkg/opsim"
	"github.com/matzehuels/skyproj/pkg/partition"
	"github.com/matzehuels/skyproj/pkg/plot"
	"github.com/matzehuels/skyproj/pkg/skyproj"
)

// Runner executes pipeline runs against a cache.
//
// The Runner holds no per-run state; one Runner may serve concurrent
// Execute calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer]; a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// input is a loaded data set ready for plotting.
type input struct {
	values metric.Values
	part   partition.Partition
	hash   string
}

// Execute runs load → plot → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	in, visitsHit, err := r.load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.InputHash = in.hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Cells = in.values.Len()
	result.Stats.Visits = len(in.values.Visits)
	result.CacheInfo.VisitsHit = visitsHit

	logger.Info("loaded input",
		"cells", result.Stats.Cells,
		"visits", result.Stats.Visits,
		"cached", visitsHit,
		"duration", result.Stats.LoadTime)

	overrides, err := r.overrides(opts, in)
	if err != nil {
		return nil, err
	}
	plotter := newPlotter(opts.Variant, logger)
	result.ConfigHash = plotter.Config(overrides).Hash()

	if !opts.Refresh {
		if artifacts, ok := r.cachedArtifacts(ctx, opts, result); ok {
			result.Artifacts = artifacts
			result.CacheInfo.RenderHit = true
			logger.Info("artifacts from cache", "formats", opts.Formats)
			return result, nil
		}
	}

	// Stage 2: Plot
	plotStart := time.Now()
	observability.Pipeline().OnPlotStart(ctx, opts.Variant)
	canvas, err := plotter.Render(in.values, in.part, overrides, nil)
	result.Stats.PlotTime = time.Since(plotStart)
	observability.Pipeline().OnPlotComplete(ctx, opts.Variant, result.Stats.PlotTime, err)
	if err != nil {
		return nil, fmt.Errorf("plot: %w", err)
	}
	result.Canvas = canvas

	logger.Info("plotted",
		"variant", opts.Variant,
		"duration", result.Stats.PlotTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := RenderCanvas(ctx, canvas, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts

	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(result.InputHash, opts.ArtifactKeyOpts(format, result.ConfigHash))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// =============================================================================
// Load
// =============================================================================

func (r *Runner) load(ctx context.Context, opts Options) (in input, hit bool, err error) {
	source := opts.ValuesPath
	if opts.Variant == VariantVisitPerimeter {
		source = opts.OpsimPath
	}
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)
	defer func() {
		n := in.values.Len() + len(in.values.Visits)
		observability.Pipeline().OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	if opts.Variant == VariantVisitPerimeter {
		return r.loadVisits(ctx, opts)
	}
	in, err = loadValues(opts.ValuesPath)
	return in, false, err
}

// loadValues reads a filled map. The HEALPix resolution follows from the
// number of values.
func loadValues(path string) (input, error) {
	values, raw, err := metric.ReadFile(path)
	if err != nil {
		return input{}, err
	}
	nside, err := partition.NsideForLen(values.Len())
	if err != nil {
		return input{}, fmt.Errorf("%s: %w", path, err)
	}
	hp, err := partition.NewHealpix(nside)
	if err != nil {
		return input{}, err
	}
	return input{values: values, part: hp, hash: cache.Hash(raw)}, nil
}

// loadVisits reads visits from an opsim database, through the cache. The key
// includes the file's modification time, so a rewritten database is reread.
func (r *Runner) loadVisits(ctx context.Context, opts Options) (input, bool, error) {
	path, err := filepath.Abs(opts.OpsimPath)
	if err != nil {
		return input{}, false, errors.Wrap(errors.ErrCodeInvalidPath, err, "opsim path %s", opts.OpsimPath)
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return input{}, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "opsim database %s", opts.OpsimPath)
	}
	if err != nil {
		return input{}, false, err
	}

	key := r.Keyer.VisitsKey(path, cache.VisitsKeyOpts{
		ModTime: info.ModTime().UnixNano(),
		Where:   opts.Where,
		Limit:   opts.Limit,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var visits []opsim.Visit
			if err := json.Unmarshal(data, &visits); err == nil {
				observability.Cache().OnCacheHit(ctx, "visits")
				return input{values: metric.Values{Visits: visits}, hash: cache.Hash(data)}, true, nil
			}
			// Undecodable entries fall through to a fresh read.
		}
		observability.Cache().OnCacheMiss(ctx, "visits")
	}

	db, err := opsim.Open(ctx, path)
	if err != nil {
		return input{}, false, err
	}
	defer db.Close()
	visits, err := db.Visits(ctx, opsim.Query{Where: opts.Where, Limit: opts.Limit})
	if err != nil {
		return input{}, false, err
	}

	data, err := json.Marshal(visits)
	if err != nil {
		return input{}, false, fmt.Errorf("encode visits: %w", err)
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLVisits); err == nil {
		observability.Cache().OnCacheSet(ctx, "visits", len(data))
	}
	return input{values: metric.Values{Visits: visits}, hash: cache.Hash(data)}, false, nil
}

// =============================================================================
// Plot
// =============================================================================

func newPlotter(variant string, logger *log.Logger) *plot.Plotter {
	if variant == VariantVisitPerimeter {
		return plot.NewVisitPerimeterPlotter(plot.WithLogger(logger))
	}
	return plot.NewHpxmapPlotter(plot.WithLogger(logger))
}

// overrides merges the config file, the caller's overrides and the
// observatory into one layer. opts.Overrides is not modified.
func (r *Runner) overrides(opts Options, in input) (plot.Config, error) {
	out := plot.Config{}
	if opts.ConfigPath != "" {
		file, err := plot.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		maps.Copy(out, file)
	}
	maps.Copy(out, opts.Overrides)

	if site, ok := opts.site(); ok {
		mjd := opts.MJD
		if mjd == 0 {
			if len(in.values.Visits) > 0 {
				mjd = in.values.Visits[0].MJD
			} else {
				mjd = almanac.MJDFromTime(time.Now())
			}
		}
		out[plot.KeyModelObservatory] = almanac.NewModelObservatory(site, mjd)
	}
	return out, nil
}

// =============================================================================
// Render
// =============================================================================

func (r *Runner) cachedArtifacts(ctx context.Context, opts Options, result *Result) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(result.InputHash, opts.ArtifactKeyOpts(format, result.ConfigHash))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	return artifacts, true
}

// RenderCanvas encodes canvas in every format of opts, concurrently.
func RenderCanvas(ctx context.Context, canvas *skyproj.Canvas, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	bg, err := skyproj.ParseColor(opts.Background)
	if err != nil {
		return nil, err
	}
	svgOpts := []skyproj.SVGOption{
		skyproj.WithSVGScale(opts.Scale),
		skyproj.WithBackground(opts.Background),
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			var data []byte
			var err error
			switch format {
			case FormatSVG:
				data = skyproj.RenderSVG(canvas, svgOpts...)
			case FormatPNG:
				data, err = skyproj.RenderPNG(canvas, skyproj.WithScale(opts.Scale), skyproj.WithPNGBackground(bg))
			case FormatPDF:
				data, err = skyproj.RenderPDF(gctx, canvas, svgOpts...)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/pipeline"
	"github.com/matzehuels/skyproj/pkg/plot"
)

// renderOpts holds the flags shared by the map and visits commands. Flags
// that mirror settings (format, scale, background, config, site) are read
// back from c.settings after binding.
type renderOpts struct {
	output     string   // output file, or base path for several formats
	sets       []string // key=value plot option overrides
	title      string
	projection string
	cmap       string
	decor      []string
	mjd        float64
	refresh    bool
}

// registerRenderFlags adds the shared rendering flags to cmd.
func registerRenderFlags(cmd *cobra.Command, opts *renderOpts) {
	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	f.StringP("format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	f.Float64("scale", 0, "output scale relative to the canvas resolution")
	f.String("background", "", "page colour, or none for transparent")
	f.StringP("config", "c", "", "TOML plot configuration file")
	f.String("site", "", "observatory site for sun, moon and horizon (e.g. rubin)")
	f.Float64Var(&opts.mjd, "mjd", 0, "observation date as MJD (default: first visit, or now)")
	f.StringArrayVar(&opts.sets, "set", nil, "plot option override as key=value; values are TOML (repeatable)")
	f.StringVar(&opts.title, "title", "", "plot title")
	f.StringVarP(&opts.projection, "projection", "p", "", "sky projection: mollweide, hammer, cylindrical")
	f.StringVar(&opts.cmap, "cmap", "", "colour map name")
	f.StringSliceVar(&opts.decor, "decorations", nil, "decorations to draw (ecliptic, galactic_plane, sun, moon, horizon, colorbar)")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
}

// overrides builds the plot option layer from the flags. Explicit flags win
// over --set entries.
func (o *renderOpts) overrides() (plot.Config, error) {
	cfg := plot.Config{}
	for _, s := range o.sets {
		key, value, err := parseSet(s)
		if err != nil {
			return nil, err
		}
		cfg[key] = value
	}
	if o.title != "" {
		cfg[plot.KeyTitle] = o.title
	}
	if o.projection != "" {
		cfg[plot.KeySkyproj] = o.projection
	}
	if o.cmap != "" {
		cfg[plot.KeyCmap] = o.cmap
	}
	if o.decor != nil {
		cfg[plot.KeyDecorations] = o.decor
	}
	return cfg, nil
}

// parseSet splits key=value and decodes value as a TOML value. Values that
// are not valid TOML are taken as plain strings, so --set cmap=magma works
// without quoting.
func parseSet(s string) (string, any, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, errors.New(errors.ErrCodeInvalidInput, "--set %q: want key=value", s)
	}
	value = strings.TrimSpace(value)
	if parsed, err := plot.ParseConfig([]byte("v = " + value)); err == nil {
		return key, parsed["v"], nil
	}
	return key, value, nil
}

// pipelineOptions combines flags and settings into pipeline options.
func (c *CLI) pipelineOptions(variant string, opts *renderOpts) (pipeline.Options, error) {
	overrides, err := opts.overrides()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Variant:    variant,
		ConfigPath: c.settings.PlotConfig,
		Overrides:  overrides,
		Site:       c.settings.Site,
		MJD:        opts.mjd,
		Formats:    parseFormats(c.settings.Formats),
		Scale:      c.settings.Scale,
		Background: c.settings.Background,
		Refresh:    opts.refresh,
		Logger:     c.Logger,
	}, nil
}

// =============================================================================
// Commands
// =============================================================================

// mapCommand renders a filled HEALPix map.
func (c *CLI) mapCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "map [values.json]",
		Short: "Render a HEALPix metric map",
		Long: `Render a HEALPix metric map with a colour bar.

The values file holds one value per HEALPix cell, in ring order:

  {"values": [21.3, 24.1, null, ...], "mask": [false, false, true, ...]}

null and masked cells are left blank. The map resolution follows from the
number of values.`,
		Example: `  skyproj map depth.json --cmap magma --set percentile_clip=95
  skyproj map depth.json -f svg,png -o depth --site rubin --decorations ecliptic,horizon,colorbar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePath(args[0]); err != nil {
				return err
			}
			po, err := c.pipelineOptions(pipeline.VariantHpxmap, &opts)
			if err != nil {
				return err
			}
			po.ValuesPath = args[0]
			return c.runRender(cmd.Context(), po, outputBase(opts.output, args[0]))
		},
	}
	registerRenderFlags(cmd, &opts)
	return cmd
}

// visitsCommand outlines visits from an opsim database.
func (c *CLI) visitsCommand() *cobra.Command {
	var (
		opts  renderOpts
		where string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "visits [opsim.db]",
		Short: "Outline telescope visits from an opsim database",
		Long: `Draw the camera footprint of each visit in an opsim SQLite database.

--where filters the observations table with an SQL expression over its
columns, e.g. "night < 30 AND band = 'r'".`,
		Example: `  skyproj visits baseline.db --where "night = 12" --site rubin --decorations horizon,moon
  skyproj visits baseline.db --limit 500 -p hammer --set skyproj_kwargs={lon_0=180.0}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePath(args[0]); err != nil {
				return err
			}
			po, err := c.pipelineOptions(pipeline.VariantVisitPerimeter, &opts)
			if err != nil {
				return err
			}
			po.OpsimPath = args[0]
			po.Where = where
			po.Limit = limit
			return c.runRender(cmd.Context(), po, outputBase(opts.output, args[0]))
		},
	}
	registerRenderFlags(cmd, &opts)
	cmd.Flags().StringVar(&where, "where", "", "SQL filter on the observations table")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of visits (0 = all)")
	return cmd
}

// =============================================================================
// Execution
// =============================================================================

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, base string) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Variant))
	spinner.Start()
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError(errors.UserMessage(err))
		return err
	}
	spinner.Stop()
	prog.done("Rendered " + opts.Variant)

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, base)
	if err != nil {
		return err
	}
	printSuccess("Rendered %s", opts.Variant)
	printStats(result.Stats, result.CacheInfo.RenderHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// outputBase returns the path artifacts are written to, without extension.
// An empty output derives it from the input file name.
func outputBase(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return output
}

// writeArtifacts writes one file per format. A base that already carries the
// extension of a single requested format is used as given.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if len(formats) == 1 && strings.TrimPrefix(filepath.Ext(base), ".") == formats[0] {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			return paths, errors.New(errors.ErrCodeInternal, "no %s artifact rendered", format)
		}
		path := base + "." + format
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return paths, err
			}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths, nil
}

// Package cli implements the skyproj command-line interface.
//
// # Commands
//
//   - map: render a HEALPix metric map from a JSON values file
//   - visits: outline opsim visits read from a SQLite database
//   - config: print the resolved plot options of a variant
//   - cache: inspect and clear the artifact cache
//   - completion: generate shell completion scripts
//
// # Settings
//
// Defaults for the observatory site, output formats and cache backend are
// read from skyproj.toml (working directory or the user config directory),
// overridden by SKYPROJ_* environment variables and then by flags:
//
//	site = "rubin"
//	formats = "svg,png"
//	redis_url = "redis://cache.internal:6379/2"
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// travels in the command context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skyproj/pkg/buildinfo"
	"github.com/matzehuels/skyproj/pkg/cache"
	"github.com/matzehuels/skyproj/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "skyproj"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// settingsFlags maps settings keys to the flags that override them.
var settingsFlags = map[string]string{
	"site":         "site",
	"cache_dir":    "cache-dir",
	"redis_url":    "redis-url",
	"cache_prefix": "cache-prefix",
	"formats":      "format",
	"scale":        "scale",
	"background":   "background",
	"plot_config":  "config",
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	settings     Settings
	settingsPath string
	verbose      bool
	noCache      bool
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "skyproj draws survey metrics on all-sky map projections",
		Long:         `skyproj renders HEALPix metric maps and telescope visit footprints on Mollweide, Hammer and cylindrical sky projections, with ecliptic, galactic plane, sun, moon and horizon overlays.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			v := newViper(c.settingsPath)
			for key, name := range settingsFlags {
				if f := cmd.Flags().Lookup(name); f != nil {
					if err := v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}
			s, err := loadSettings(v, c.settingsPath != "")
			if err != nil {
				return err
			}
			c.settings = s
			if used := v.ConfigFileUsed(); used != "" {
				c.Logger.Debug("loaded settings", "file", used)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.settingsPath, "settings", "", "settings file (default: skyproj.toml)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")
	pf.String("cache-dir", "", "file cache directory (default: $XDG_CACHE_HOME/skyproj)")
	pf.String("redis-url", "", "use a Redis artifact cache, e.g. redis://localhost:6379/0")
	pf.String("cache-prefix", "", "namespace prefix for cache keys")

	root.AddCommand(c.mapCommand())
	root.AddCommand(c.visitsCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the root command with ctx.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.settings.CachePrefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.settings.CachePrefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache picks the cache backend: none, Redis when a URL is configured,
// otherwise the file cache. An unusable cache directory disables caching.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if c.settings.RedisURL != "" {
		return cache.NewRedisCache(ctx, c.settings.RedisURL)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.settings.CacheDir != "" {
		return c.settings.CacheDir, nil
	}
	return defaultCacheDir()
}

// defaultCacheDir returns ~/.cache/skyproj, honouring XDG_CACHE_HOME.
func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, strings.ToLower(f))
		}
	}
	return out
}

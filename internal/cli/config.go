package cli

import (
	"fmt"
	"maps"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skyproj/pkg/errors"
	"github.com/matzehuels/skyproj/pkg/pipeline"
	"github.com/matzehuels/skyproj/pkg/plot"
)

// configCommand prints the resolved plot options of a variant as TOML, which
// is a starting point for a plot configuration file.
func (c *CLI) configCommand() *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:       "config [hpxmap|visit_perimeter]",
		Short:     "Print the resolved plot options of a variant",
		Example:   `  skyproj config hpxmap --set cmap=magma > plot.toml`,
		ValidArgs: []string{pipeline.VariantHpxmap, pipeline.VariantVisitPerimeter},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := plot.Config{}
			if c.settings.PlotConfig != "" {
				file, err := plot.LoadConfig(c.settings.PlotConfig)
				if err != nil {
					return err
				}
				maps.Copy(overrides, file)
			}
			for _, s := range sets {
				key, value, err := parseSet(s)
				if err != nil {
					return err
				}
				overrides[key] = value
			}

			var variant plot.Variant = &plot.Hpxmap{}
			if args[0] == pipeline.VariantVisitPerimeter {
				variant = plot.VisitPerimeter{}
			}
			resolved := plot.NewPlotter(variant).Config(overrides)
			return writeConfig(cmd, resolved)
		},
	}
	cmd.Flags().StringP("config", "c", "", "TOML plot configuration file to merge")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "plot option override as key=value (repeatable)")
	return cmd
}

// writeConfig encodes the options that TOML can represent. Options holding
// functions or observatories are skipped.
func writeConfig(cmd *cobra.Command, cfg plot.Resolved) error {
	out := make(map[string]any)
	for _, k := range cfg.Keys() {
		v := cfg.Get(k)
		if _, err := toml.Marshal(map[string]any{k: v}); err != nil {
			loggerFromContext(cmd.Context()).Debug("skipping option", "key", k, "type", fmt.Sprintf("%T", v))
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return errors.New(errors.ErrCodeInternal, "no printable options")
	}
	enc := toml.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(out)
}

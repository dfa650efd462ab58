package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"Pokedex/internal/app"
	"Pokedex/internal/config"
	"Pokedex/internal/logging"
)

type globals struct {
	configPath string
	logLevel   string
	appOpts    []app.Option
}

// RootCommand creates the pokedex command tree. Options are passed through
// to every Application the subcommands build.
func RootCommand(opts ...app.Option) *cobra.Command {
	g := &globals{appOpts: opts}

	rootCmd := &cobra.Command{
		Use:          "pokedex",
		Short:        "Browse the Pokédex catalog from the terminal",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML config file (defaults to $POKEDEX_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		listCommand(g),
		showCommand(g),
		exportCommand(g),
	)

	return rootCmd
}

func (g *globals) newApp() (*app.Application, error) {
	var cfg config.Config
	if g.configPath != "" {
		cfg = config.LoadFrom(g.configPath)
	} else {
		cfg = config.Load()
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}

	return app.New(cfg, logging.New(cfg.Logging.Level), g.appOpts...)
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

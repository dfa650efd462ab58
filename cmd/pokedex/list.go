package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"Pokedex/internal/app"
	"Pokedex/internal/infrastructure/render"
	"Pokedex/internal/view"
)

type pageFlags struct {
	page   int
	search string
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page number to show")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Case-insensitive name filter")
}

// settlePage runs the application, moves the view to the requested page and
// waits for its entries to be enriched.
func (f *pageFlags) settlePage(ctx context.Context, a *app.Application) (view.Page, error) {
	if err := a.Run(ctx); err != nil {
		return view.Page{}, err
	}

	v := a.View()
	if f.search != "" {
		v.SetSearchTerm(ctx, f.search)
	}
	if f.page != 1 {
		v.GoTo(ctx, f.page)
	}
	a.Settle()

	return v.Page(), nil
}

func listCommand(g *globals) *cobra.Command {
	var (
		flags   pageFlags
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			page, err := flags.settlePage(cmd.Context(), a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := render.Page(out, page); err != nil {
				return err
			}
			if metrics {
				fmt.Fprintln(out)
				return writeMetrics(out, a.Gatherer())
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Dump collected metrics after the page")
	return cmd
}

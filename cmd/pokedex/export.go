package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"Pokedex/internal/infrastructure/render"
	"Pokedex/internal/view"
)

func exportCommand(g *globals) *cobra.Command {
	var (
		flags pageFlags
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write one page of the catalog as a static HTML file",
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
			if err := writeHTML(out, page); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote page %d of %d to %s\n", page.Number, page.TotalPages, out)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination HTML file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func writeHTML(path string, page view.Page) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return render.HTML(f, page)
}

package main

import (
	"github.com/spf13/cobra"

	"Pokedex/internal/infrastructure/render"
)

func showCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Print the full record of one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Session().Pokemon(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.Detail(cmd.OutOrStdout(), p)
		},
	}
}

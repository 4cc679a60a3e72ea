package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzxrai/claude-sessions/internal/render"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Usage report: totals, top models, daily activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := newStore()
			if err != nil {
				return err
			}
			report := store.BuildStats()
			store.Flush()
			fmt.Print(render.Stats(report))
			return nil
		},
	}
}

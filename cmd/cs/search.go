package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mzxrai/claude-sessions/internal/render"
)

func searchCmd() *cobra.Command {
	var project string
	var max int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Regex search across session transcripts (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := newStore()
			if err != nil {
				return err
			}

			results, err := store.Search(args[0], project, max)
			store.Flush()
			if err != nil {
				return err
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			fmt.Print(render.SearchResults(results, home))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Filter by project path substring")
	cmd.Flags().IntVarP(&max, "max", "m", 50, "Max results")

	return cmd
}

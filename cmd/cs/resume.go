package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id>",
		Short: "Resume a session in its project directory (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := newStore()
			if err != nil {
				return err
			}

			sess, ok := store.Get(args[0])
			store.Flush()
			if !ok {
				return fmt.Errorf("session not found: %s", args[0])
			}
			return runResume(sess, cfg.TmuxWindows)
		},
	}
}

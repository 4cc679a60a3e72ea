package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mzxrai/claude-sessions/internal/open"
)

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <session-id>",
		Short: "Open the raw transcript in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := newStore()
			if err != nil {
				return err
			}

			sess, ok := store.Get(args[0])
			store.Flush()
			if !ok {
				return fmt.Errorf("session not found: %s", args[0])
			}
			if sess.FilePath == "" {
				return fmt.Errorf("no transcript on disk for session %s", sess.ID)
			}
			return open.File(sess.FilePath)
		},
	}
}

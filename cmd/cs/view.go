package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mzxrai/claude-sessions/internal/render"
)

func viewCmd() *cobra.Command {
	var thinking, noPager bool
	var tail int

	cmd := &cobra.Command{
		Use:   "view <session-id>",
		Short: "Show a session's conversation (id or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := newStore()
			if err != nil {
				return err
			}

			sess, ok := store.Get(args[0])
			if !ok {
				store.Flush()
				return fmt.Errorf("session not found: %s", args[0])
			}
			msgs := store.ReadMessages(sess, true)
			store.Flush()

			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			out := render.Conversation(sess, msgs, home, thinking, tail)

			if !noPager && term.IsTerminal(int(os.Stdout.Fd())) {
				if err := pipePager(out); err == nil {
					return nil
				}
				// fall back to a plain print when less is unavailable
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&thinking, "thinking", false, "Include thinking blocks")
	cmd.Flags().IntVarP(&tail, "tail", "t", 0, "Show only the last N messages")
	cmd.Flags().BoolVar(&noPager, "no-pager", false, "Do not pipe output through a pager")

	return cmd
}

func pipePager(out string) error {
	pager := exec.Command("less", "-R")
	pager.Stdin = strings.NewReader(out)
	pager.Stdout = os.Stdout
	pager.Stderr = os.Stderr
	return pager.Run()
}

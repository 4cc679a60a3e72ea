package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mzxrai/claude-sessions/internal/config"
	"github.com/mzxrai/claude-sessions/internal/render"
	"github.com/mzxrai/claude-sessions/internal/resume"
	"github.com/mzxrai/claude-sessions/internal/session"
	"github.com/mzxrai/claude-sessions/internal/tui"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "cs",
		Short:   "Browse, search, and resume Claude Code and Codex sessions",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot()
		},
	}

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(openCmd())
	rootCmd.AddCommand(doctorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newStore loads config and constructs the session store. Callers flush the
// store before exiting.
func newStore() (*config.Config, *session.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, session.New(cfg), nil
}

// runRoot is the bare `cs` invocation: the interactive picker on a terminal,
// the plain list table when piped.
func runRoot() error {
	cfg, store, err := newStore()
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		sessions := sortForList(store.All())
		store.Flush()
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		fmt.Print(render.ListTable(sessions, home))
		return nil
	}

	selected, err := tui.Run(store)
	store.Flush()
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}
	return runResume(*selected, cfg.TmuxWindows)
}

// runResume hands the session back to its CLI, passing the child's exit
// status through.
func runResume(sess session.Session, tmuxWindows bool) error {
	if err := resume.Run(sess, tmuxWindows); err != nil {
		if code, ok := resume.ExitCode(err); ok {
			os.Exit(code)
		}
		return err
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mzxrai/claude-sessions/internal/render"
	"github.com/mzxrai/claude-sessions/internal/session"
)

func listCmd() *cobra.Command {
	var project, since string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := newStore()
			if err != nil {
				return err
			}
			sessions := sortForList(store.All())
			store.Flush()

			if project != "" {
				needle := strings.ToLower(project)
				kept := sessions[:0]
				for _, sess := range sessions {
					if strings.Contains(strings.ToLower(sess.Project), needle) {
						kept = append(kept, sess)
					}
				}
				sessions = kept
			}

			if since != "" {
				day, err := time.ParseInLocation("2006-01-02", since, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --since date %q (want YYYY-MM-DD)", since)
				}
				cutoff := day.UnixMilli()
				kept := sessions[:0]
				for _, sess := range sessions {
					if session.ListTimeMS(sess) >= cutoff {
						kept = append(kept, sess)
					}
				}
				sessions = kept
			}

			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(sessions)
			}

			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			fmt.Print(render.ListTable(sessions, home))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Filter by project path substring")
	cmd.Flags().StringVarP(&since, "since", "s", "", "Only sessions active since date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "Max sessions to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")

	return cmd
}

// sortForList orders sessions by activity time, newest first. Transcript
// mtime takes priority over the history timestamp.
func sortForList(sessions []session.Session) []session.Session {
	sort.SliceStable(sessions, func(i, j int) bool {
		return session.ListTimeMS(sessions[i]) > session.ListTimeMS(sessions[j])
	})
	return sessions
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mzxrai/claude-sessions/internal/render"
	"github.com/mzxrai/claude-sessions/internal/session"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify homes, history files, and the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := newStore()
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			fmt.Printf("  Claude home: %s\n", cfg.ClaudeHome)
			fmt.Printf("  Codex home:  %s\n", cfg.CodexHome)
			fmt.Printf("  Cache path:  %s\n", cfg.CachePath)
			fmt.Printf("  Tmux windows: %v\n", cfg.TmuxWindows)

			fmt.Println("\n=== Sources ===")
			checkDir("Claude home", cfg.ClaudeHome)
			checkDir("Codex home ", cfg.CodexHome)
			checkFile("Claude history", filepath.Join(cfg.ClaudeHome, "history.jsonl"))
			checkFile("Codex history ", filepath.Join(cfg.CodexHome, "history.jsonl"))

			fmt.Println("\n=== Sessions ===")
			sessions := store.All()
			resumable := 0
			perSource := map[session.Source]int{}
			for _, sess := range sessions {
				perSource[sess.Source]++
				if sess.Resumable() {
					resumable++
				}
			}
			fmt.Printf("  Loaded:    %d\n", len(sessions))
			fmt.Printf("  Resumable: %d\n", resumable)
			for _, src := range session.Sources {
				fmt.Printf("  %s: %d\n", src.Label(), perSource[src])
			}

			fmt.Println("\n=== Cache ===")
			fmt.Printf("  Path: %s\n", cfg.CachePath)
			if info, err := os.Stat(cfg.CachePath); err != nil {
				fmt.Println("  Status: NOT FOUND (written on first load)")
			} else {
				fmt.Printf("  Size: %s\n", render.HumanSize(info.Size()))
				if v, ok := cacheFileVersion(cfg.CachePath); ok {
					fmt.Printf("  Version: %d\n", v)
				}
			}
			for src, lines := range store.HistoryLineCounts() {
				fmt.Printf("  %s history lines cached: %s\n", src.Label(), render.Commas(lines))
			}

			store.Flush()
			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}

func checkFile(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (%s)\n", name, path, render.HumanSize(info.Size()))
	}
}

func cacheFileVersion(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	var doc struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, false
	}
	return doc.Version, true
}

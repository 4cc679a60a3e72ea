package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const defaultRecentDayDirs = 21

type Config struct {
	ClaudeHome    string `toml:"claude_home"`
	CodexHome     string `toml:"codex_home"`
	CachePath     string `toml:"cache_path"`
	RecentDayDirs int    `toml:"recent_day_dirs"`
	TmuxWindows   bool   `toml:"tmux_windows"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeHome:    filepath.Join(home, ".claude"),
		CodexHome:     filepath.Join(home, ".codex"),
		CachePath:     filepath.Join(home, ".local", "state", "cs", "session-cache-v1.json"),
		RecentDayDirs: defaultRecentDayDirs,
	}

	cfgPath := filepath.Join(home, ".config", "cs", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	cfg.ClaudeHome = expandHome(cfg.ClaudeHome, home)
	cfg.CodexHome = expandHome(cfg.CodexHome, home)
	cfg.CachePath = expandHome(cfg.CachePath, home)

	if cfg.RecentDayDirs <= 0 {
		cfg.RecentDayDirs = defaultRecentDayDirs
	}

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

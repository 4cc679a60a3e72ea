package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClaudeHome != filepath.Join(home, ".claude") {
		t.Errorf("ClaudeHome = %q", cfg.ClaudeHome)
	}
	if cfg.CodexHome != filepath.Join(home, ".codex") {
		t.Errorf("CodexHome = %q", cfg.CodexHome)
	}
	if cfg.CachePath != filepath.Join(home, ".local", "state", "cs", "session-cache-v1.json") {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.RecentDayDirs != defaultRecentDayDirs {
		t.Errorf("RecentDayDirs = %d", cfg.RecentDayDirs)
	}
	if cfg.TmuxWindows {
		t.Error("TmuxWindows should default to false")
	}
}

func TestLoadFileOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "cs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "claude_home = \"~/ai/claude\"\nrecent_day_dirs = 7\ntmux_windows = true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClaudeHome != filepath.Join(home, "ai", "claude") {
		t.Errorf("ClaudeHome = %q, want ~ expanded", cfg.ClaudeHome)
	}
	if cfg.RecentDayDirs != 7 {
		t.Errorf("RecentDayDirs = %d", cfg.RecentDayDirs)
	}
	if !cfg.TmuxWindows {
		t.Error("TmuxWindows not picked up")
	}
	// untouched keys keep defaults
	if cfg.CodexHome != filepath.Join(home, ".codex") {
		t.Errorf("CodexHome = %q", cfg.CodexHome)
	}
}

func TestLoadBadTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "cs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [toml"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoadGuardsDayDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "cs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("recent_day_dirs = -3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RecentDayDirs != defaultRecentDayDirs {
		t.Errorf("RecentDayDirs = %d, want default", cfg.RecentDayDirs)
	}
}

package session

import (
	"path/filepath"

	"github.com/mzxrai/claude-sessions/internal/config"
)

// Source identifies which CLI wrote a session. The string value doubles as
// the key under which the source's history state is cached.
type Source string

const (
	SourceClaude Source = "claudecode"
	SourceCodex  Source = "codex"
)

// Sources lists every known source in display order.
var Sources = []Source{SourceClaude, SourceCodex}

// Label is the human-readable source name.
func (s Source) Label() string {
	switch s {
	case SourceClaude:
		return "claude code"
	case SourceCodex:
		return "codex"
	}
	return string(s)
}

// ListLabel is the short column form used in list output.
func (s Source) ListLabel() string {
	switch s {
	case SourceClaude:
		return "cc"
	case SourceCodex:
		return "codex"
	}
	return string(s)
}

// Key builds the store map key for a session id. Keys are unique across
// sources.
func (s Source) Key(id string) string {
	return string(s) + "::" + id
}

func (s Source) home(cfg *config.Config) string {
	if s == SourceCodex {
		return cfg.CodexHome
	}
	return cfg.ClaudeHome
}

func (s Source) historyPath(cfg *config.Config) string {
	return filepath.Join(s.home(cfg), "history.jsonl")
}

func (s Source) projectsDir(cfg *config.Config) string {
	return filepath.Join(s.home(cfg), "projects")
}

func (s Source) sessionsDir(cfg *config.Config) string {
	return filepath.Join(s.home(cfg), "sessions")
}

func (s Source) archivedSessionsDir(cfg *config.Config) string {
	return filepath.Join(s.home(cfg), "archived_sessions")
}

package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const cacheVersion = 1

// cachedHistory is the parse state and merged sessions for one source's
// history file.
type cachedHistory struct {
	FileSize     int64     `json:"file_size"`
	FileModified int64     `json:"file_modified_ms"`
	LineCount    int64     `json:"line_count"`
	Sessions     []Session `json:"sessions"`
}

// cachedCodexFile is transcript-derived metadata for one codex session,
// fingerprinted so a rewritten rollout file gets rescanned.
type cachedCodexFile struct {
	FilePath        string `json:"file_path"`
	FileSize        int64  `json:"file_size"`
	FileModified    int64  `json:"file_modified_ms"`
	Cwd             string `json:"cwd,omitempty"`
	TimestampMS     int64  `json:"timestamp_ms,omitempty"`
	Model           string `json:"model,omitempty"`
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
}

// cache is the persisted fingerprint cache: a single versioned JSON document.
// Anything unreadable or from another version resets to empty rather than
// erroring.
type cache struct {
	Version       int                        `json:"version"`
	Histories     map[string]cachedHistory   `json:"histories"`
	CodexSessions map[string]cachedCodexFile `json:"codex_sessions"`

	path  string
	dirty bool
}

func loadCache(path string) *cache {
	c := &cache{
		Version:       cacheVersion,
		Histories:     map[string]cachedHistory{},
		CodexSessions: map[string]cachedCodexFile{},
		path:          path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var onDisk cache
	if err := json.Unmarshal(data, &onDisk); err != nil || onDisk.Version != cacheVersion {
		return c
	}
	if onDisk.Histories != nil {
		c.Histories = onDisk.Histories
	}
	if onDisk.CodexSessions != nil {
		c.CodexSessions = onDisk.CodexSessions
	}
	return c
}

// saveIfDirty persists the cache when something changed since the last
// save. The document is written to a temp file and renamed into place so a
// crashed write never leaves a torn cache.
func (c *cache) saveIfDirty() {
	if !c.dirty {
		return
	}
	if err := c.save(); err == nil {
		c.dirty = false
	}
}

func (c *cache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

package session

import (
	"os"
	"strings"
)

// Session is one conversation tracked by a source's history file, enriched
// with metadata mined from its transcript. The JSON tags define the cache
// file layout.
type Session struct {
	Source          Source `json:"source"`
	ID              string `json:"session_id"`
	Display         string `json:"display"`
	Project         string `json:"project"`
	Timestamp       int64  `json:"timestamp"`
	Model           string `json:"model,omitempty"`
	ReasoningEffort string `json:"reasoning_effort,omitempty"`
	FilePath        string `json:"file_path,omitempty"`
}

// Key is the store map key for this session.
func (s Session) Key() string { return s.Source.Key(s.ID) }

// Resumable reports whether the session can be handed back to its CLI: a
// known project directory plus a transcript that still exists on disk.
func (s Session) Resumable() bool {
	if strings.TrimSpace(s.Project) == "" || s.FilePath == "" {
		return false
	}
	info, err := os.Stat(s.FilePath)
	return err == nil && info.Mode().IsRegular()
}

// ShortID is the trailing 5 hex characters of the id, used wherever a row
// labels a session. Ids with fewer than 5 hex characters fall back to the
// raw tail.
func (s Session) ShortID() string { return hexTail(s.ID, 5) }

func hexTail(id string, n int) string {
	hex := make([]rune, 0, len(id))
	for _, r := range id {
		if isHexDigit(r) {
			hex = append(hex, r)
		}
	}
	if len(hex) >= n {
		return string(hex[len(hex)-n:])
	}
	runes := []rune(id)
	if len(runes) <= n {
		return id
	}
	return string(runes[len(runes)-n:])
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'
}

// ListTimeMS is the timestamp list views sort and display by: the
// transcript's mtime when it can be read, since that tracks activity the
// history log may lag behind, else the history timestamp.
func ListTimeMS(sess Session) int64 {
	if sess.FilePath != "" {
		if _, mtime, ok := fileFingerprint(sess.FilePath); ok {
			return mtime
		}
	}
	return sess.Timestamp
}

package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mzxrai/claude-sessions/internal/parse"
)

// SearchResult is one full-text hit: the first matching line of the first
// matching message in a session.
type SearchResult struct {
	Session Session
	Message parse.Message
	Line    string
}

// Search runs a case-insensitive regex over transcript text, newest session
// first, at most one result per session, stopping at max. An invalid
// pattern is the caller's error to surface.
func (s *Store) Search(query, project string, max int) ([]SearchResult, error) {
	s.Load()

	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	projectNeedle := strings.ToLower(project)

	var results []SearchResult
	for _, sess := range s.All() {
		s.enrichForAccess(sess.Source, sess.ID)
		if current, ok := s.sessions[sess.Key()]; ok {
			sess = *current
		}

		if projectNeedle != "" && !strings.Contains(strings.ToLower(sess.Project), projectNeedle) {
			continue
		}

		for _, msg := range s.ReadMessages(sess, true) {
			text := msg.Text()
			if text == "" {
				continue
			}
			hit := ""
			for _, line := range strings.Split(text, "\n") {
				line = strings.TrimSpace(line)
				if line != "" && re.MatchString(line) {
					hit = line
					break
				}
			}
			if hit == "" {
				continue
			}
			results = append(results, SearchResult{Session: sess, Message: msg, Line: hit})
			break
		}
		if len(results) >= max {
			break
		}
	}
	return results, nil
}

// searchTextEntry memoizes a session's lowercased transcript text for the
// process lifetime, fingerprinted so a changed transcript gets re-read.
type searchTextEntry struct {
	size  int64
	mtime int64
	text  string
}

// ContainsText reports whether the session's transcript contains the
// already-lowercased needle. An empty needle matches everything, so the TUI
// filter can treat "no query" and "matches query" uniformly.
func (s *Store) ContainsText(sess Session, loweredNeedle string) bool {
	if loweredNeedle == "" {
		return true
	}

	key := sess.Key()
	size, mtime := searchTextSignature(sess.FilePath)

	cached, ok := s.searchText[key]
	if !ok || cached.size != size || cached.mtime != mtime {
		var parts []string
		for _, msg := range s.ReadMessages(sess, true) {
			if text := msg.Text(); text != "" {
				parts = append(parts, text)
			}
		}
		cached = searchTextEntry{
			size:  size,
			mtime: mtime,
			text:  strings.ToLower(strings.Join(parts, "\n")),
		}
		s.searchText[key] = cached
	}
	return strings.Contains(cached.text, loweredNeedle)
}

// searchTextSignature fingerprints a transcript for the text cache. A
// missing file signs as (0, 0).
func searchTextSignature(path string) (size, mtime int64) {
	if path == "" {
		return 0, 0
	}
	size, mtime, ok := fileFingerprint(path)
	if !ok {
		return 0, 0
	}
	return size, mtime
}

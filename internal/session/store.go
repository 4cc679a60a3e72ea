package session

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mzxrai/claude-sessions/internal/config"
	"github.com/mzxrai/claude-sessions/internal/parse"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Store owns every session known to this machine. All state is explicit:
// construct with New, read through Load/Get/Search, call Flush once before
// exit to persist cache changes.
type Store struct {
	cfg      *config.Config
	cache    *cache
	sessions map[string]*Session
	loaded   bool

	searchText map[string]searchTextEntry
	codexIndex map[string]string // session id -> rollout path, built lazily
}

func New(cfg *config.Config) *Store {
	return &Store{
		cfg:        cfg,
		cache:      loadCache(cfg.CachePath),
		sessions:   map[string]*Session{},
		searchText: map[string]searchTextEntry{},
	}
}

// Load populates the session map from both history files, parsing only what
// the fingerprint cache says has changed. Idempotent.
func (s *Store) Load() {
	if s.loaded {
		return
	}
	s.loaded = true

	for _, src := range Sources {
		loaded := s.loadSource(src)

		for _, sess := range loaded {
			switch src {
			case SourceClaude:
				s.resolveClaudePath(sess)
			case SourceCodex:
				s.fastEnrichCodex(sess)
			}
			if sess.Display == "" {
				sess.Display = sess.Project
			}
		}

		for key, sess := range loaded {
			if sess.Display == "" && sess.Timestamp == 0 {
				continue
			}
			if !sess.Resumable() {
				continue
			}
			s.sessions[key] = sess
		}
	}
}

// Flush writes buffered cache changes, once, at the end of a command.
func (s *Store) Flush() { s.cache.saveIfDirty() }

// loadSource decides per the fingerprint cache whether the source's history
// file needs no parsing, an incremental parse of appended bytes, or a full
// reparse.
func (s *Store) loadSource(src Source) map[string]*Session {
	path := src.historyPath(s.cfg)
	cached, hasCached := s.cache.Histories[string(src)]

	size, mtime, ok := fileFingerprint(path)
	if !ok {
		// no history file; whatever the cache knew is all there is
		return sessionMapFromCache(cached.Sessions)
	}

	if hasCached && size == cached.FileSize && mtime == cached.FileModified {
		consistent := size == 0 || cached.LineCount >= int64(len(cached.Sessions))
		if consistent {
			return sessionMapFromCache(cached.Sessions)
		}
	}

	seen := map[string]*Session{}
	var offset, lineCount int64
	if hasCached && size > cached.FileSize && mtime >= cached.FileModified {
		// append-only growth: reparse only the new tail
		seen = sessionMapFromCache(cached.Sessions)
		offset = cached.FileSize
		lineCount = cached.LineCount
	}

	lineCount += parseHistoryInto(path, offset, src, seen)

	s.cache.Histories[string(src)] = cachedHistory{
		FileSize:     size,
		FileModified: mtime,
		LineCount:    lineCount,
		Sessions:     sessionSlice(seen),
	}
	s.cache.dirty = true
	return seen
}

// parseHistoryInto merges history lines from offset onward into seen,
// returning the number of non-empty lines. Malformed lines count but
// contribute nothing.
func parseHistoryInto(path string, offset int64, src Source, seen map[string]*Session) int64 {
	var count int64
	err := scanLines(path, offset, func(line []byte) {
		count++
		entry, ok := parse.History(line)
		if !ok {
			return
		}
		mergeHistoryEntry(seen, src, entry)
	})
	if err != nil && count == 0 {
		return 0
	}
	return count
}

func mergeHistoryEntry(seen map[string]*Session, src Source, entry parse.HistoryEntry) {
	key := src.Key(entry.SessionID)
	existing, ok := seen[key]
	if !ok {
		seen[key] = &Session{
			Source:    src,
			ID:        entry.SessionID,
			Display:   entry.Display,
			Project:   entry.Project,
			Timestamp: entry.Timestamp,
		}
		return
	}

	if entry.Timestamp > existing.Timestamp {
		existing.Timestamp = entry.Timestamp
		existing.Display = entry.Display
		existing.Project = entry.Project
		return
	}
	if existing.Display == "" && entry.Display != "" {
		existing.Display = entry.Display
	}
	if existing.Project == "" && entry.Project != "" {
		existing.Project = entry.Project
	}
}

// All returns every loaded session, newest first. Sessions are returned as
// loaded; metadata enrichment stays on the single-session access paths.
func (s *Store) All() []Session {
	s.Load()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}

// Get resolves an id or unique id prefix across both sources. An id that
// exists in both sources, or a prefix matching several sessions, is
// reported as not found so callers can treat ambiguity as absence.
func (s *Store) Get(idOrPrefix string) (Session, bool) {
	s.Load()

	var exact, prefixed []*Session
	for _, sess := range s.sessions {
		switch {
		case sess.ID == idOrPrefix:
			exact = append(exact, sess)
		case strings.HasPrefix(sess.ID, idOrPrefix):
			prefixed = append(prefixed, sess)
		}
	}

	if len(exact) == 1 {
		return s.GetExact(exact[0].Source, exact[0].ID)
	}
	if len(exact) > 1 {
		return Session{}, false
	}
	if len(prefixed) == 1 {
		return s.GetExact(prefixed[0].Source, prefixed[0].ID)
	}
	return Session{}, false
}

// GetExact returns one session after enriching it from its transcript. A
// session with no model of its own borrows the most recently used model of
// its source; the borrowed value is not persisted.
func (s *Store) GetExact(src Source, id string) (Session, bool) {
	s.Load()
	s.enrichForAccess(src, id)

	sess, ok := s.sessions[src.Key(id)]
	if !ok {
		return Session{}, false
	}
	out := *sess
	if strings.TrimSpace(out.Model) == "" {
		if model, ok := s.mostRecentModelForSource(src, out.ID); ok {
			out.Model = model
		}
	}
	return out, true
}

// ReadMessages parses the session's transcript into messages. The session
// should come from Get/GetExact so its file path is freshly resolved.
func (s *Store) ReadMessages(sess Session, skipInternal bool) []parse.Message {
	if sess.FilePath == "" {
		return nil
	}
	var out []parse.Message
	_ = scanLines(sess.FilePath, 0, func(line []byte) {
		var msg parse.Message
		var ok bool
		switch sess.Source {
		case SourceCodex:
			msg, ok = parse.CodexMessage(line)
		default:
			msg, ok = parse.ClaudeMessage(line)
		}
		if !ok {
			return
		}
		if skipInternal && parse.InternalType(msg.Type) {
			return
		}
		out = append(out, msg)
	})
	return out
}

// HistoryLineCounts reports the cached parsed-line count per source.
func (s *Store) HistoryLineCounts() map[Source]int64 {
	s.Load()
	out := make(map[Source]int64, len(Sources))
	for _, src := range Sources {
		out[src] = s.cache.Histories[string(src)].LineCount
	}
	return out
}

func (s *Store) mostRecentModelForSource(src Source, excludeID string) (string, bool) {
	var (
		bestTS    int64
		bestModel string
		found     bool
	)
	for _, sess := range s.sessions {
		if sess.Source != src || sess.ID == excludeID {
			continue
		}
		if strings.TrimSpace(sess.Model) == "" {
			continue
		}
		if !found || sess.Timestamp > bestTS {
			bestTS = sess.Timestamp
			bestModel = sess.Model
			found = true
		}
	}
	return bestModel, found
}

// updateHistoryCacheSession folds an enriched session back into its source's
// cached session list.
func (s *Store) updateHistoryCacheSession(sess Session) {
	cached, ok := s.cache.Histories[string(sess.Source)]
	if !ok {
		return
	}
	for i := range cached.Sessions {
		if cached.Sessions[i].ID != sess.ID {
			continue
		}
		if cached.Sessions[i] != sess {
			cached.Sessions[i] = sess
			s.cache.dirty = true
		}
		return
	}
}

func sessionMapFromCache(cached []Session) map[string]*Session {
	m := make(map[string]*Session, len(cached))
	for _, sess := range cached {
		c := sess
		m[c.Key()] = &c
	}
	return m
}

func sessionSlice(m map[string]*Session) []Session {
	out := make([]Session, 0, len(m))
	for _, sess := range m {
		out = append(out, *sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func fileFingerprint(path string) (size, mtimeMS int64, ok bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, false
	}
	return info.Size(), info.ModTime().UnixMilli(), true
}

func scanLines(path string, offset int64, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return err
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

package session

import (
	"os"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mzxrai/claude-sessions/internal/parse"
)

// codexFileInfo is the metadata recoverable from one pass over a codex
// rollout transcript. Empty fields mean the transcript never mentioned them.
type codexFileInfo struct {
	Cwd             string
	TimestampMS     int64
	Model           string
	ReasoningEffort string
}

func (i codexFileInfo) empty() bool {
	return i.Cwd == "" && i.TimestampMS == 0 && i.Model == "" && i.ReasoningEffort == ""
}

// enrichment is the read-only half of enrich-on-access: everything a
// transcript scan learned about a session, computed without touching the
// store. applyEnrichment folds it into the session afterwards.
type enrichment struct {
	clearPath   bool
	foundPath   string
	path        string // resolved transcript path, "" when none
	fileChanged bool
	codexInfo   *codexFileInfo
	claudeModel string
}

// resolveEnrichment computes the enrichment for a session: drop a dangling
// file path, hunt for a missing transcript, and scan it for metadata when
// the file changed or required fields are still empty.
func (s *Store) resolveEnrichment(sess Session) enrichment {
	var e enrichment

	path := sess.FilePath
	if path != "" && !isRegularFile(path) {
		e.clearPath = true
		path = ""
	}
	if path == "" {
		if found, ok := s.findSessionFile(sess.Source, sess.ID, sess.Project); ok {
			e.foundPath = found
			path = found
		}
	}
	e.path = path
	if path == "" {
		return e
	}

	switch sess.Source {
	case SourceCodex:
		e.fileChanged = s.codexSessionFileChanged(sess.ID, path)
		needsMeta := e.fileChanged ||
			sess.Project == "" || sess.Timestamp == 0 ||
			sess.Model == "" || sess.ReasoningEffort == ""
		if needsMeta {
			if info, ok := codexFileInfoFromTranscript(path, sess.ID); ok {
				e.codexInfo = &info
			}
		}
	case SourceClaude:
		e.claudeModel = claudeModelFromTranscript(path)
	}
	return e
}

// applyEnrichment mutates the session with the resolved fields and reports
// whether anything changed. Freshly scanned codex values overwrite stale
// ones only when the transcript changed; otherwise they just fill gaps.
func applyEnrichment(sess *Session, e enrichment) bool {
	changed := false

	if e.clearPath && sess.FilePath != "" {
		sess.FilePath = ""
		changed = true
	}
	if e.foundPath != "" && sess.FilePath != e.foundPath {
		sess.FilePath = e.foundPath
		changed = true
	}

	if info := e.codexInfo; info != nil {
		if sess.Project == "" && info.Cwd != "" {
			sess.Project = info.Cwd
			changed = true
		}
		if sess.Timestamp == 0 && info.TimestampMS != 0 {
			sess.Timestamp = info.TimestampMS
			changed = true
		}
		if info.Model != "" && (e.fileChanged || sess.Model == "") && sess.Model != info.Model {
			sess.Model = info.Model
			changed = true
		}
		if info.ReasoningEffort != "" && (e.fileChanged || sess.ReasoningEffort == "") &&
			sess.ReasoningEffort != info.ReasoningEffort {
			sess.ReasoningEffort = info.ReasoningEffort
			changed = true
		}
	}

	if e.claudeModel != "" && sess.Model != e.claudeModel {
		sess.Model = e.claudeModel
		changed = true
	}

	if sess.Display == "" && sess.Project != "" {
		sess.Display = sess.Project
		changed = true
	}
	return changed
}

// enrichForAccess resolves and applies enrichment for one session, writing
// any gains back to the caches so the next run gets them for free.
func (s *Store) enrichForAccess(src Source, id string) {
	s.Load()
	sess, ok := s.sessions[src.Key(id)]
	if !ok {
		return
	}

	e := s.resolveEnrichment(*sess)

	if src == SourceCodex {
		if e.clearPath {
			s.clearCodexCachePath(id)
		}
		if e.foundPath != "" {
			s.updateCodexCache(id, e.foundPath, nil)
		}
		if e.codexInfo != nil {
			s.updateCodexCache(id, e.path, e.codexInfo)
		}
	}

	if applyEnrichment(sess, e) {
		s.updateHistoryCacheSession(*sess)
	}
}

// fastEnrichCodex is the cheap load-time variant: cached metadata first,
// then the recent-file index, scanning the transcript only when project or
// timestamp are still unknown.
func (s *Store) fastEnrichCodex(sess *Session) {
	s.applyCachedCodexMetadata(sess)

	if sess.FilePath != "" && !isRegularFile(sess.FilePath) {
		sess.FilePath = ""
		s.clearCodexCachePath(sess.ID)
	}

	if sess.FilePath != "" && sess.Project != "" && sess.Timestamp != 0 {
		return
	}

	path, ok := s.codexPathFromIndex(sess.ID)
	if !ok {
		return
	}
	if sess.FilePath == "" {
		sess.FilePath = path
	}

	if sess.Project != "" && sess.Timestamp != 0 {
		s.updateCodexCache(sess.ID, path, nil)
		return
	}

	if info, found := codexFileInfoFromTranscript(path, sess.ID); found {
		if sess.Project == "" && info.Cwd != "" {
			sess.Project = info.Cwd
		}
		if sess.Timestamp == 0 {
			sess.Timestamp = info.TimestampMS
		}
		if sess.Model == "" && info.Model != "" {
			sess.Model = info.Model
		}
		if sess.ReasoningEffort == "" && info.ReasoningEffort != "" {
			sess.ReasoningEffort = info.ReasoningEffort
		}
		s.updateCodexCache(sess.ID, path, &info)
	} else {
		s.updateCodexCache(sess.ID, path, nil)
	}
}

// applyCachedCodexMetadata fills empty session fields from the per-session
// codex cache entry, if any.
func (s *Store) applyCachedCodexMetadata(sess *Session) {
	cached, ok := s.cache.CodexSessions[sess.ID]
	if !ok {
		return
	}
	if cached.FilePath != "" {
		sess.FilePath = cached.FilePath
	}
	if sess.Project == "" && cached.Cwd != "" {
		sess.Project = cached.Cwd
	}
	if sess.Timestamp == 0 {
		sess.Timestamp = cached.TimestampMS
	}
	if sess.Model == "" && cached.Model != "" {
		sess.Model = cached.Model
	}
	if sess.ReasoningEffort == "" && cached.ReasoningEffort != "" {
		sess.ReasoningEffort = cached.ReasoningEffort
	}
}

// codexSessionFileChanged compares the transcript's current fingerprint
// with the cached one. No cache entry means changed; a stat failure means
// unchanged, since there is nothing new to read either way.
func (s *Store) codexSessionFileChanged(id, path string) bool {
	cached, ok := s.cache.CodexSessions[id]
	if !ok {
		return true
	}
	size, mtime, statOK := fileFingerprint(path)
	if !statOK {
		return false
	}
	return size != cached.FileSize || mtime != cached.FileModified
}

func (s *Store) clearCodexCachePath(id string) {
	entry, ok := s.cache.CodexSessions[id]
	if !ok || entry.FilePath == "" {
		return
	}
	entry.FilePath = ""
	s.cache.CodexSessions[id] = entry
	s.cache.dirty = true
}

// updateCodexCache records the transcript's current fingerprint and any
// scanned metadata for a codex session.
func (s *Store) updateCodexCache(id, path string, info *codexFileInfo) {
	size, mtime, _ := fileFingerprint(path)

	entry := s.cache.CodexSessions[id]
	entry.FilePath = path
	entry.FileSize = size
	entry.FileModified = mtime
	if info != nil {
		if info.Cwd != "" {
			entry.Cwd = info.Cwd
		}
		if info.TimestampMS != 0 {
			entry.TimestampMS = info.TimestampMS
		}
		if info.Model != "" {
			entry.Model = info.Model
		}
		if info.ReasoningEffort != "" {
			entry.ReasoningEffort = info.ReasoningEffort
		}
	}
	s.cache.CodexSessions[id] = entry
	s.cache.dirty = true
}

// codexFileInfoFromTranscript makes one pass over a rollout transcript,
// collecting cwd, timestamp, model, and reasoning effort for the expected
// session. Rollout files can interleave records for other sessions; once a
// session_meta names a different id, id-less lines are skipped until a
// matching one appears.
func codexFileInfoFromTranscript(path, expectedID string) (codexFileInfo, bool) {
	var out codexFileInfo
	sawMeta := false
	currentMatches := true

	_ = scanLines(path, 0, func(line []byte) {
		if !gjson.ValidBytes(line) {
			return
		}
		entryType := gjson.GetBytes(line, "type").String()

		if entryType == "session_meta" {
			sawMeta = true
			id := gjson.GetBytes(line, "payload.id").String()
			currentMatches = id == "" || id == expectedID
			if !currentMatches {
				return
			}
			if cwd := gjson.GetBytes(line, "payload.cwd").String(); cwd != "" {
				out.Cwd = cwd
			}
			ts := gjson.GetBytes(line, "payload.timestamp").String()
			if ts == "" {
				ts = gjson.GetBytes(line, "timestamp").String()
			}
			if ms, ok := isoToMS(ts); ok {
				out.TimestampMS = ms
			}
			return
		}

		if lineID := codexEntrySessionID(line); lineID != "" {
			if lineID != expectedID {
				return
			}
		} else if sawMeta && !currentMatches {
			return
		}

		switch entryType {
		case "turn_context":
			if model := parse.ModelCandidate(gjson.GetBytes(line, "payload.model").String()); model != "" {
				out.Model = model
			}
			if effort := parse.EffortCandidate(gjson.GetBytes(line, "payload.effort").String()); effort != "" {
				out.ReasoningEffort = effort
			} else if out.ReasoningEffort == "" {
				nested := gjson.GetBytes(line, "payload.collaboration_mode.settings.reasoning_effort").String()
				if effort := parse.EffortCandidate(nested); effort != "" {
					out.ReasoningEffort = effort
				}
			}
		case "response_item":
			if gjson.GetBytes(line, "payload.type").String() != "message" {
				return
			}
			if model := parse.ModelCandidate(gjson.GetBytes(line, "payload.model").String()); model != "" {
				out.Model = model
			}
		}
	})

	if out.empty() {
		return codexFileInfo{}, false
	}
	return out, true
}

// codexEntrySessionID reads the session id a rollout line claims to belong
// to, trying every key path the codex CLI has used.
func codexEntrySessionID(line []byte) string {
	for _, keyPath := range []string{"sessionId", "session_id", "payload.sessionId", "payload.session_id"} {
		if v := gjson.GetBytes(line, keyPath); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}

// claudeModelFromTranscript returns the model of the latest assistant
// message in a claude transcript, or "".
func claudeModelFromTranscript(path string) string {
	latest := ""
	_ = scanLines(path, 0, func(line []byte) {
		if gjson.GetBytes(line, "type").String() != "assistant" {
			return
		}
		if model := parse.ModelCandidate(gjson.GetBytes(line, "message.model").String()); model != "" {
			latest = model
		}
	})
	return latest
}

func isoToMS(ts string) (int64, bool) {
	if ts == "" {
		return 0, false
	}
	when, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return 0, false
	}
	return when.UnixMilli(), true
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

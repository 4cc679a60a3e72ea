package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

func encodeProjectPath(project string) string {
	return strings.ReplaceAll(project, "/", "-")
}

// resolveClaudePath fills the deterministic transcript location for a claude
// session: projects/<encoded cwd>/<id>.jsonl under the claude home.
func (s *Store) resolveClaudePath(sess *Session) {
	if sess.Project == "" {
		return
	}
	candidate := filepath.Join(
		SourceClaude.projectsDir(s.cfg), encodeProjectPath(sess.Project), sess.ID+".jsonl")
	if _, err := os.Stat(candidate); err == nil {
		sess.FilePath = candidate
	}
}

// findSessionFile hunts for a transcript when the cached location is gone:
// the project-encoded path first, codex rollout trees next, then a shallow
// scan of every project directory.
func (s *Store) findSessionFile(src Source, id, project string) (string, bool) {
	if project != "" {
		candidate := filepath.Join(src.projectsDir(s.cfg), encodeProjectPath(project), id+".jsonl")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	if src == SourceCodex {
		if found, ok := findFileBySessionID(src.sessionsDir(s.cfg), id, 4); ok {
			return found, true
		}
		if found, ok := findFileBySessionID(src.archivedSessionsDir(s.cfg), id, 4); ok {
			return found, true
		}
	}

	projects := src.projectsDir(s.cfg)
	entries, err := os.ReadDir(projects)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(projects, entry.Name(), id+".jsonl")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// findFileBySessionID walks dir up to depth levels deep looking for a .jsonl
// file whose name contains the session id.
func findFileBySessionID(dir, id string, depth int) (string, bool) {
	if depth == 0 {
		return "", false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		p := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if found, ok := findFileBySessionID(p, id, depth-1); ok {
				return found, true
			}
			continue
		}
		if filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		if strings.Contains(entry.Name(), id) {
			return p, true
		}
	}
	return "", false
}

func sortedChildDirsDesc(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	return dirs
}

// recentCodexDayDirs returns the newest day directories of the
// year/month/day rollout tree, capped at limit.
func (s *Store) recentCodexDayDirs(limit int) []string {
	var out []string
	root := SourceCodex.sessionsDir(s.cfg)
	for _, year := range sortedChildDirsDesc(root) {
		for _, month := range sortedChildDirsDesc(year) {
			for _, day := range sortedChildDirsDesc(month) {
				out = append(out, day)
				if len(out) >= limit {
					return out
				}
			}
		}
	}
	return out
}

// buildRecentCodexFileIndex maps session ids to rollout files across the
// most recent day directories, newest first so the first hit wins. The
// archived tree is appended as a fallback, one nesting level deep.
func (s *Store) buildRecentCodexFileIndex(dayDirLimit int) map[string]string {
	index := map[string]string{}

	addFile := func(path string) {
		id, ok := sessionIDFromFileName(path)
		if !ok {
			return
		}
		if _, exists := index[id]; !exists {
			index[id] = path
		}
	}

	for _, dayDir := range s.recentCodexDayDirs(dayDirLimit) {
		entries, err := os.ReadDir(dayDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
				continue
			}
			addFile(filepath.Join(dayDir, entry.Name()))
		}
	}

	archived := SourceCodex.archivedSessionsDir(s.cfg)
	entries, err := os.ReadDir(archived)
	if err != nil {
		return index
	}
	for _, entry := range entries {
		p := filepath.Join(archived, entry.Name())
		if !entry.IsDir() {
			if filepath.Ext(entry.Name()) == ".jsonl" {
				addFile(p)
			}
			continue
		}
		nested, err := os.ReadDir(p)
		if err != nil {
			continue
		}
		for _, n := range nested {
			if n.IsDir() || filepath.Ext(n.Name()) != ".jsonl" {
				continue
			}
			addFile(filepath.Join(p, n.Name()))
		}
	}
	return index
}

// codexPathFromIndex resolves a codex session id through the recent-file
// index, building it on first use.
func (s *Store) codexPathFromIndex(id string) (string, bool) {
	if s.codexIndex == nil {
		s.codexIndex = s.buildRecentCodexFileIndex(s.cfg.RecentDayDirs)
	}
	path, ok := s.codexIndex[id]
	return path, ok
}

// sessionIDFromFileName extracts the trailing UUID from a rollout filename
// like rollout-2026-02-13T17-21-09-<uuid>.jsonl.
func sessionIDFromFileName(path string) (string, bool) {
	name := filepath.Base(path)
	stem, ok := strings.CutSuffix(name, ".jsonl")
	if !ok || len(stem) < 36 {
		return "", false
	}
	candidate := stem[len(stem)-36:]
	if _, err := uuid.Parse(candidate); err != nil {
		return "", false
	}
	return candidate, true
}

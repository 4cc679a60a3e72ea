package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mzxrai/claude-sessions/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		ClaudeHome:    filepath.Join(dir, "claude"),
		CodexHome:     filepath.Join(dir, "codex"),
		CachePath:     filepath.Join(dir, "state", "session-cache-v1.json"),
		RecentDayDirs: 21,
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func chtimes(t *testing.T, path string, when time.Time) {
	t.Helper()
	if err := os.Chtimes(path, when, when); err != nil {
		t.Fatal(err)
	}
}

func claudeHistoryPath(cfg *config.Config) string {
	return filepath.Join(cfg.ClaudeHome, "history.jsonl")
}

// writeClaudeSession writes a transcript so the session passes the
// resumability check.
func writeClaudeSession(t *testing.T, cfg *config.Config, project, id, body string) {
	t.Helper()
	path := filepath.Join(cfg.ClaudeHome, "projects", encodeProjectPath(project), id+".jsonl")
	writeFile(t, path, body)
}

func historyLine(id, display, project string, ts int64) string {
	return fmt.Sprintf(`{"sessionId":%q,"display":%q,"project":%q,"timestamp":%d}`, id, display, project, ts) + "\n"
}

func TestLoadMergesHistoryLines(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"

	body := historyLine("aaa111", "old title", project, 1700000000000) +
		historyLine("bbb222", "other session", project, 1700000100000) +
		historyLine("aaa111", "new title", project, 1700000200000)
	writeFile(t, claudeHistoryPath(cfg), body)
	writeClaudeSession(t, cfg, project, "aaa111", "")
	writeClaudeSession(t, cfg, project, "bbb222", "")

	store := New(cfg)
	all := store.All()
	if len(all) != 2 {
		t.Fatalf("got %d sessions, want 2", len(all))
	}
	// newest first
	if all[0].ID != "aaa111" || all[0].Display != "new title" {
		t.Errorf("newest = %s %q, want aaa111 with newer display", all[0].ID, all[0].Display)
	}
	if all[0].Timestamp != 1700000200000 {
		t.Errorf("timestamp = %d", all[0].Timestamp)
	}
}

func TestLoadNormalizesSecondTimestamps(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg), historyLine("abc123", "fix bug", project, 1700000000))
	writeClaudeSession(t, cfg, project, "abc123", "")

	store := New(cfg)
	sess, ok := store.Get("abc123")
	if !ok {
		t.Fatal("session not found")
	}
	if sess.Timestamp != 1700000000000 {
		t.Errorf("timestamp = %d, want scaled to ms", sess.Timestamp)
	}
}

func TestLoadOlderLineOnlyBackfills(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"

	// newer line first, then an older line carrying the project the newer
	// one lacked; the older line must not win the display or timestamp
	body := fmt.Sprintf(`{"sessionId":"aaa111","display":"later","timestamp":%d}`, 1700000200000) + "\n" +
		historyLine("aaa111", "earlier", project, 1700000100000)
	writeFile(t, claudeHistoryPath(cfg), body)
	writeClaudeSession(t, cfg, project, "aaa111", "")

	store := New(cfg)
	sess, ok := store.Get("aaa111")
	if !ok {
		t.Fatal("session not found")
	}
	if sess.Display != "later" {
		t.Errorf("display = %q, want newest line's", sess.Display)
	}
	if sess.Timestamp != 1700000200000 {
		t.Errorf("timestamp = %d, want newest line's", sess.Timestamp)
	}
	if sess.Project != project {
		t.Errorf("project = %q, want backfilled from older line", sess.Project)
	}
}

func TestLoadDropsNonResumable(t *testing.T) {
	cfg := testConfig(t)
	body := historyLine("aaa111", "has transcript", "/tmp/p", 1700000000000) +
		historyLine("bbb222", "transcript missing", "/tmp/p", 1700000100000) +
		`{"sessionId":"ccc333"}` + "\n"
	writeFile(t, claudeHistoryPath(cfg), body)
	writeClaudeSession(t, cfg, "/tmp/p", "aaa111", "")

	store := New(cfg)
	all := store.All()
	if len(all) != 1 || all[0].ID != "aaa111" {
		t.Fatalf("got %v, want only the resumable session", all)
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	cfg := testConfig(t)
	body := "not json at all\n" +
		historyLine("aaa111", "ok", "/tmp/p", 1700000000000) +
		"{\"trailing\":\n"
	writeFile(t, claudeHistoryPath(cfg), body)
	writeClaudeSession(t, cfg, "/tmp/p", "aaa111", "")

	store := New(cfg)
	if len(store.All()) != 1 {
		t.Fatal("malformed lines should be skipped, not abort the file")
	}
	// malformed lines still count
	if got := store.HistoryLineCounts()[SourceClaude]; got != 3 {
		t.Errorf("line count = %d, want 3", got)
	}
}

func TestLoadIdempotent(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, claudeHistoryPath(cfg), historyLine("aaa111", "x", "/tmp/p", 1700000000000))
	writeClaudeSession(t, cfg, "/tmp/p", "aaa111", "")

	store := New(cfg)
	store.Load()
	first := store.All()
	store.Load()
	second := store.All()
	if len(first) != len(second) {
		t.Errorf("second Load changed the session set: %d vs %d", len(first), len(second))
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	body := historyLine("aaa111", "cached title", project, 1700000000000)
	writeFile(t, claudeHistoryPath(cfg), body)
	writeClaudeSession(t, cfg, project, "aaa111", "")

	store := New(cfg)
	store.Load()
	store.Flush()

	// replace the history bytes with same-length garbage and restore the
	// mtime: an unchanged fingerprint means the file is never re-read
	info, err := os.Stat(claudeHistoryPath(cfg))
	if err != nil {
		t.Fatal(err)
	}
	garbage := strings.Repeat("x", int(info.Size()))
	writeFile(t, claudeHistoryPath(cfg), garbage)
	chtimes(t, claudeHistoryPath(cfg), info.ModTime())

	fresh := New(cfg)
	sess, ok := fresh.Get("aaa111")
	if !ok {
		t.Fatal("cached session not served")
	}
	if sess.Display != "cached title" {
		t.Errorf("display = %q, want the cached value", sess.Display)
	}
	if got := fresh.HistoryLineCounts()[SourceClaude]; got != 1 {
		t.Errorf("line count = %d, want unchanged 1", got)
	}
}

func TestIncrementalAppendParsesOnlyNewLines(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	path := claudeHistoryPath(cfg)
	writeFile(t, path, historyLine("aaa111", "first", project, 1700000000000))
	writeClaudeSession(t, cfg, project, "aaa111", "")

	store := New(cfg)
	store.Load()
	store.Flush()
	base := store.HistoryLineCounts()[SourceClaude]

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	appended := historyLine("bbb222", "second", project, 1700000100000) +
		historyLine("aaa111", "updated", project, 1700000200000)
	if _, err := f.WriteString(appended); err != nil {
		t.Fatal(err)
	}
	f.Close()
	chtimes(t, path, time.Now().Add(time.Minute))
	writeClaudeSession(t, cfg, project, "bbb222", "")

	fresh := New(cfg)
	fresh.Load()
	if got := fresh.HistoryLineCounts()[SourceClaude]; got != base+2 {
		t.Errorf("line count = %d, want %d (exactly the appended lines)", got, base+2)
	}
	sess, ok := fresh.Get("aaa111")
	if !ok {
		t.Fatal("session lost across incremental parse")
	}
	if sess.Display != "updated" {
		t.Errorf("display = %q, appended line not merged", sess.Display)
	}
	if _, ok := fresh.Get("bbb222"); !ok {
		t.Error("appended session missing")
	}
}

func TestTruncatedHistoryForcesFullReparse(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	path := claudeHistoryPath(cfg)
	writeFile(t, path,
		historyLine("aaa111", "one", project, 1700000000000)+
			historyLine("bbb222", "two", project, 1700000100000))
	writeClaudeSession(t, cfg, project, "aaa111", "")
	writeClaudeSession(t, cfg, project, "bbb222", "")

	store := New(cfg)
	store.Load()
	store.Flush()

	// rotation: the file shrinks
	writeFile(t, path, historyLine("bbb222", "two", project, 1700000100000))
	chtimes(t, path, time.Now().Add(time.Minute))

	fresh := New(cfg)
	if _, ok := fresh.Get("aaa111"); ok {
		t.Error("stale session survived a truncated history file")
	}
	if got := fresh.HistoryLineCounts()[SourceClaude]; got != 1 {
		t.Errorf("line count = %d, want reset to 1", got)
	}
}

func TestMissingHistoryFallsBackToCache(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg), historyLine("aaa111", "kept", project, 1700000000000))
	writeClaudeSession(t, cfg, project, "aaa111", "")

	store := New(cfg)
	store.Load()
	store.Flush()

	if err := os.Remove(claudeHistoryPath(cfg)); err != nil {
		t.Fatal(err)
	}

	fresh := New(cfg)
	if _, ok := fresh.Get("aaa111"); !ok {
		t.Error("cached sessions should survive a vanished history log")
	}
}

func TestCorruptCacheIsColdStart(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg), historyLine("aaa111", "x", project, 1700000000000))
	writeClaudeSession(t, cfg, project, "aaa111", "")
	writeFile(t, cfg.CachePath, "{ this is not json")

	store := New(cfg)
	if _, ok := store.Get("aaa111"); !ok {
		t.Error("corrupt cache should rebuild, not fail")
	}
}

func TestGetPrefixResolution(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg),
		historyLine("abc111", "one", project, 1700000000000)+
			historyLine("abc222", "two", project, 1700000100000)+
			historyLine("def333", "three", project, 1700000200000))
	for _, id := range []string{"abc111", "abc222", "def333"} {
		writeClaudeSession(t, cfg, project, id, "")
	}

	store := New(cfg)
	if _, ok := store.Get("abc"); ok {
		t.Error("ambiguous prefix must be not-found")
	}
	if sess, ok := store.Get("abc1"); !ok || sess.ID != "abc111" {
		t.Errorf("unique prefix: got %v %v", sess.ID, ok)
	}
	if sess, ok := store.Get("def333"); !ok || sess.ID != "def333" {
		t.Errorf("exact id: got %v %v", sess.ID, ok)
	}
	if _, ok := store.Get("zzz"); ok {
		t.Error("unknown id must be not-found")
	}
}

func TestGetExactPrefersFullIDOverPrefix(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg),
		historyLine("abc", "short", project, 1700000000000)+
			historyLine("abcdef", "long", project, 1700000100000))
	writeClaudeSession(t, cfg, project, "abc", "")
	writeClaudeSession(t, cfg, project, "abcdef", "")

	store := New(cfg)
	sess, ok := store.Get("abc")
	if !ok || sess.ID != "abc" {
		t.Errorf("exact match must beat prefix match, got %v %v", sess.ID, ok)
	}
}

func TestGetExactBorrowsMostRecentModel(t *testing.T) {
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg),
		historyLine("aaa111", "with model", project, 1700000200000)+
			historyLine("bbb222", "without model", project, 1700000100000))
	writeClaudeSession(t, cfg, project, "aaa111",
		`{"type":"assistant","message":{"role":"assistant","model":"claude-sonnet-4-5","content":"hi"}}`+"\n")
	writeClaudeSession(t, cfg, project, "bbb222", "")

	store := New(cfg)
	// enrich the donor first so its model is resident
	if sess, ok := store.GetExact(SourceClaude, "aaa111"); !ok || sess.Model != "claude-sonnet-4-5" {
		t.Fatalf("donor session model = %q, %v", sess.Model, ok)
	}

	sess, ok := store.GetExact(SourceClaude, "bbb222")
	if !ok {
		t.Fatal("session not found")
	}
	if sess.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %q, want borrowed from most recent session", sess.Model)
	}
	// the borrow is in-memory only
	if stored := store.sessions[SourceClaude.Key("bbb222")]; stored.Model != "" {
		t.Errorf("stored model = %q, borrow must not persist", stored.Model)
	}
}

func TestFlushWritesCacheAtomically(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, claudeHistoryPath(cfg), historyLine("aaa111", "x", "/tmp/p", 1700000000000))
	writeClaudeSession(t, cfg, "/tmp/p", "aaa111", "")

	store := New(cfg)
	store.Load()
	store.Flush()

	if _, err := os.Stat(cfg.CachePath); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if _, err := os.Stat(cfg.CachePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after rename")
	}

	// a clean cache is not rewritten
	info, _ := os.Stat(cfg.CachePath)
	fresh := New(cfg)
	fresh.Load()
	fresh.Flush()
	after, _ := os.Stat(cfg.CachePath)
	if !after.ModTime().Equal(info.ModTime()) {
		t.Error("clean cache should not be rewritten")
	}
}

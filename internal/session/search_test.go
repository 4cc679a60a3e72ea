package session

import (
	"os"
	"strings"
	"testing"
	"time"
)

func claudeTextLine(role, text string) string {
	return `{"type":"` + role + `","message":{"role":"` + role + `","content":"` + text + `"}}` + "\n"
}

func searchFixture(t *testing.T) *Store {
	t.Helper()
	cfg := testConfig(t)
	project := "/tmp/p"
	writeFile(t, claudeHistoryPath(cfg),
		historyLine("aaa111", "deploy help", project, 1700000200000)+
			historyLine("bbb222", "unrelated", project, 1700000100000)+
			historyLine("ccc333", "more errors", project, 1700000000000))
	writeClaudeSession(t, cfg, project, "aaa111",
		claudeTextLine("user", "the deploy raised an error")+
			claudeTextLine("assistant", "another error here"))
	writeClaudeSession(t, cfg, project, "bbb222",
		claudeTextLine("user", "all fine here"))
	writeClaudeSession(t, cfg, project, "ccc333",
		claudeTextLine("user", "ERROR: build failed"))
	return New(cfg)
}

func TestSearchOneResultPerSession(t *testing.T) {
	store := searchFixture(t)
	results, err := store.Search("error", "", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (one per matching session)", len(results))
	}
	// newest session first, first matching line only
	if results[0].Session.ID != "aaa111" {
		t.Errorf("first result from %s, want aaa111", results[0].Session.ID)
	}
	if results[0].Line != "the deploy raised an error" {
		t.Errorf("line = %q, want the first matching line", results[0].Line)
	}
	if results[1].Session.ID != "ccc333" {
		t.Errorf("second result from %s", results[1].Session.ID)
	}
}

func TestSearchCaseInsensitiveRegex(t *testing.T) {
	store := searchFixture(t)
	results, err := store.Search("^error:", "", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Session.ID != "ccc333" {
		t.Fatalf("got %v, want only the ERROR: line session", results)
	}
}

func TestSearchMaxResults(t *testing.T) {
	store := searchFixture(t)
	results, err := store.Search("error", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want early stop at 1", len(results))
	}
}

func TestSearchProjectFilter(t *testing.T) {
	store := searchFixture(t)
	results, err := store.Search("error", "/nowhere", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want project filter to exclude all", len(results))
	}
}

func TestSearchInvalidPattern(t *testing.T) {
	store := searchFixture(t)
	if _, err := store.Search("(", "", 50); err == nil {
		t.Fatal("invalid regex must be an error, not an empty result")
	}
}

func TestContainsTextEmptyQuery(t *testing.T) {
	store := searchFixture(t)
	sess := store.All()[0]
	if !store.ContainsText(sess, "") {
		t.Error("empty query must match everything")
	}
}

func TestContainsText(t *testing.T) {
	store := searchFixture(t)
	var target Session
	for _, sess := range store.All() {
		if sess.ID == "bbb222" {
			target = sess
		}
	}
	if !store.ContainsText(target, "all fine") {
		t.Error("expected transcript text to match")
	}
	if store.ContainsText(target, "deploy") {
		t.Error("text from another session must not match")
	}
}

func TestContainsTextMemoizesByFingerprint(t *testing.T) {
	store := searchFixture(t)
	var target Session
	for _, sess := range store.All() {
		if sess.ID == "bbb222" {
			target = sess
		}
	}
	if !store.ContainsText(target, "all fine") {
		t.Fatal("setup: match expected")
	}

	// rewrite with same-length different content and restore the mtime:
	// the memoized text must keep serving
	info, err := os.Stat(target.FilePath)
	if err != nil {
		t.Fatal(err)
	}
	replacement := claudeTextLine("user", "not fine here")
	replacement += strings.Repeat(" ", int(info.Size())-len(replacement))
	writeFile(t, target.FilePath, replacement)
	chtimes(t, target.FilePath, info.ModTime())

	if !store.ContainsText(target, "all fine") {
		t.Error("unchanged fingerprint must not trigger a re-read")
	}

	// a touched mtime invalidates the entry
	chtimes(t, target.FilePath, time.Now().Add(time.Minute))
	if store.ContainsText(target, "all fine") {
		t.Error("changed fingerprint must trigger a re-read")
	}
	if !store.ContainsText(target, "not fine") {
		t.Error("re-read text should now match the new content")
	}
}

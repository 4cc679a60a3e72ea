package parse

import "encoding/json"

// HistoryEntry is one parsed line of a source's history.jsonl.
type HistoryEntry struct {
	SessionID string
	Display   string
	Project   string
	Timestamp int64 // epoch ms, 0 when absent
}

// historyLine mirrors the on-disk record. The session id appears under
// different keys depending on the CLI version that wrote the line, and the
// timestamp under two.
type historyLine struct {
	SessionID       string `json:"sessionId"`
	SessionIDSnake  string `json:"session_id"`
	SessionIDLegacy string `json:"session_id_legacy"`
	Timestamp       *int64 `json:"timestamp"`
	TS              *int64 `json:"ts"`
	Display         string `json:"display"`
	Text            string `json:"text"`
	Project         string `json:"project"`
}

// History parses one history.jsonl line. ok is false for malformed JSON or
// a record with no session id.
func History(line []byte) (HistoryEntry, bool) {
	var rec historyLine
	if err := json.Unmarshal(line, &rec); err != nil {
		return HistoryEntry{}, false
	}

	id := rec.SessionID
	if id == "" {
		id = rec.SessionIDSnake
	}
	if id == "" {
		id = rec.SessionIDLegacy
	}
	if id == "" {
		return HistoryEntry{}, false
	}

	display := rec.Display
	if display == "" {
		display = rec.Text
	}

	raw := rec.Timestamp
	if raw == nil {
		raw = rec.TS
	}

	return HistoryEntry{
		SessionID: id,
		Display:   display,
		Project:   rec.Project,
		Timestamp: NormalizeEpochMS(raw),
	}, true
}

// NormalizeEpochMS converts a history timestamp to epoch milliseconds.
// Positive values below 1e12 are taken as seconds.
func NormalizeEpochMS(raw *int64) int64 {
	if raw == nil {
		return 0
	}
	v := *raw
	if v > 0 && v < 1_000_000_000_000 {
		return v * 1000
	}
	return v
}

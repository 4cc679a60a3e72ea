package parse

import (
	"encoding/json"
	"strings"
)

// Block is one content block of a transcript message.
type Block struct {
	Type     string          `json:"type"`
	Text     string          `json:"text"`
	Thinking string          `json:"thinking"`
	Name     string          `json:"name"`
	Input    json.RawMessage `json:"input"`
}

// Message is one conversation message from a transcript file, normalized
// across sources.
type Message struct {
	Type       string
	Role       string
	Model      string
	IsAPIError bool
	Blocks     []Block
}

// Text returns the plain text of the message: text-bearing blocks joined
// with newlines, trimmed.
func (m Message) Text() string {
	var parts []string
	for _, b := range m.Blocks {
		switch b.Type {
		case "text", "input_text", "output_text":
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// InternalType reports whether t names a bookkeeping record rather than a
// conversation message.
func InternalType(t string) bool {
	switch t {
	case "file-history-snapshot", "progress", "queue-operation":
		return true
	}
	return false
}

// contentBlocks accepts either a bare string or an array of blocks.
func contentBlocks(raw json.RawMessage) []Block {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []Block{{Type: "text", Text: s}}
	}

	var blocks []Block
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return blocks
	}
	return nil
}

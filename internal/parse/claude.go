package parse

import "encoding/json"

type claudeLine struct {
	Type       string          `json:"type"`
	IsAPIError bool            `json:"isApiErrorMessage"`
	Message    json.RawMessage `json:"message"`
}

type claudeMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

// ClaudeMessage parses one line of a Claude Code transcript. Any valid JSON
// object yields a message; the role falls back to the record type, then to
// "assistant".
func ClaudeMessage(line []byte) (Message, bool) {
	var rec claudeLine
	if err := json.Unmarshal(line, &rec); err != nil {
		return Message{}, false
	}

	var msg claudeMessage
	if len(rec.Message) > 0 {
		if err := json.Unmarshal(rec.Message, &msg); err != nil {
			msg = claudeMessage{}
		}
	}

	role := msg.Role
	if role == "" {
		role = rec.Type
	}
	if role == "" {
		role = "assistant"
	}

	return Message{
		Type:       rec.Type,
		Role:       role,
		Model:      msg.Model,
		IsAPIError: rec.IsAPIError,
		Blocks:     contentBlocks(msg.Content),
	}, true
}

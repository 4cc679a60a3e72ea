package parse

import "encoding/json"

type codexLine struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type codexMessagePayload struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Content json.RawMessage `json:"content"`
}

// CodexMessage parses one line of a Codex rollout transcript. Only
// response_item records carrying a message payload become messages. The
// "user" role survives; every other role (developer, system) renders as
// assistant output. The message type is the normalized role, so codex
// and claude messages render through the same paths.
func CodexMessage(line []byte) (Message, bool) {
	var rec codexLine
	if err := json.Unmarshal(line, &rec); err != nil {
		return Message{}, false
	}
	if rec.Type != "response_item" || len(rec.Payload) == 0 {
		return Message{}, false
	}

	var payload codexMessagePayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return Message{}, false
	}
	if payload.Type != "message" {
		return Message{}, false
	}

	role := "assistant"
	if payload.Role == "user" {
		role = "user"
	}

	return Message{
		Type:   role,
		Role:   role,
		Model:  payload.Model,
		Blocks: contentBlocks(payload.Content),
	}, true
}

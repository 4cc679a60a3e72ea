package parse

import "strings"

// ModelCandidate extracts a usable model name from a raw value: the first
// whitespace-delimited token, restricted to alphanumerics plus -_.:/ and
// never the "<synthetic>" placeholder. Returns "" when nothing usable.
func ModelCandidate(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	token := fields[0]
	if token == "<synthetic>" {
		return ""
	}
	for _, r := range token {
		if !isModelRune(r) {
			return ""
		}
	}
	return token
}

func isModelRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == ':', r == '/':
		return true
	}
	return false
}

// EffortCandidate extracts a usable reasoning effort: exactly one token,
// lowercased, alphanumerics plus -_ only.
func EffortCandidate(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) != 1 {
		return ""
	}
	token := strings.ToLower(fields[0])
	for _, r := range token {
		ok := r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_'
		if !ok {
			return ""
		}
	}
	return token
}

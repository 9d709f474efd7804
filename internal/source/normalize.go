package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"quiz-session-engine/internal/domain"
)

// Raw options payloads arrive in several shapes from the question API: a
// real JSON array, a JSON-encoded string of an array, a doubly-encoded
// string, or a bracket/quote-laden string that is not valid JSON at all.
const maxDecodeDepth = 3

// NormalizeOptions parses a raw options payload until a real array is
// obtained, then cleans each element. Element order is preserved so index 0
// stays the canonical correct answer. Returns ErrMalformedOptions when no
// usable options can be recovered.
func NormalizeOptions(raw []byte) ([]string, error) {
	payload := raw
	for depth := 0; depth < maxDecodeDepth; depth++ {
		var arr []string
		if err := json.Unmarshal(payload, &arr); err == nil {
			return cleanOptions(arr)
		}
		// Peel one layer of string encoding and try again.
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			break
		}
		payload = []byte(inner)
	}
	// Not valid JSON at any layer; repair the bracket/quote soup manually.
	return cleanOptions(strings.Split(stripBrackets(string(payload)), ","))
}

// NormalizeNotes extracts the explanation from a questionAnswerNotes
// payload, a JSON array whose first element is the explanation. Parse
// failures degrade to an empty explanation rather than failing the question.
func NormalizeNotes(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	payload := raw
	for depth := 0; depth < maxDecodeDepth; depth++ {
		var arr []string
		if err := json.Unmarshal(payload, &arr); err == nil {
			if len(arr) == 0 {
				return ""
			}
			return strings.TrimSpace(arr[0])
		}
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return ""
		}
		payload = []byte(inner)
	}
	return ""
}

func cleanOptions(parts []string) ([]string, error) {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Map(func(r rune) rune {
			switch r {
			case '"', '[', ']', '\\':
				return -1
			}
			return r
		}, part)
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cleaned = append(cleaned, part)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: no options recovered", domain.ErrMalformedOptions)
	}
	return cleaned, nil
}

func stripBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return s
}

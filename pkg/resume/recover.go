package resume

import (
	"encoding/json"
	"strings"
)

// RecoverJSON tries to salvage a single JSON value from an LLM reply.
//
// The whole reply is tried first, then the span from the first '{' to the last
// '}'. Only when that brace span exists and fails to parse is the span from the
// first '[' to the last ']' tried; a reply without braces yields nothing. The
// spans are outermost: braces in surrounding prose end up inside the candidate
// and make it fail. ok is false when nothing parses.
func RecoverJSON(text string) (value json.RawMessage, ok bool) {
	if v, ok := parseJSON(text); ok {
		return v, true
	}
	s, ok := outerSpan(text, "{", "}")
	if !ok {
		return nil, false
	}
	if v, ok := parseJSON(s); ok {
		return v, true
	}
	if s, ok := outerSpan(text, "[", "]"); ok {
		if v, ok := parseJSON(s); ok {
			return v, true
		}
	}
	return nil, false
}

func parseJSON(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

func outerSpan(text, first, last string) (string, bool) {
	i := strings.Index(text, first)
	j := strings.LastIndex(text, last)
	if i < 0 || j <= i {
		return "", false
	}
	return text[i : j+1], true
}

// isEmptyResult reports whether v is a JSON value that carries nothing:
// null, false, 0 or the empty string.
func isEmptyResult(v json.RawMessage) bool {
	var x any
	if err := json.Unmarshal(v, &x); err != nil {
		return true
	}
	switch t := x.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	}
	return false
}

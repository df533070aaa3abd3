// Package onboarding implements the answer-normalization pipeline that folds
// free-form chat answers into the durable chatbot_onboarding record.
package onboarding

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ValueKind discriminates the three shapes an answer can arrive in.
type ValueKind int

const (
	// KindString is a plain text answer.
	KindString ValueKind = iota
	// KindArray is a JSON array (native or decoded from a JSON string).
	KindArray
	// KindObject is a JSON object (native or decoded from a JSON string).
	KindObject
)

// AnswerValue is one chat answer. The wizard submits either a plain string,
// a JSON-encoded string, or a structured value; the decoder makes the three
// cases explicit instead of sniffing shapes downstream.
type AnswerValue struct {
	Kind ValueKind
	Str  string
	Arr  []any
	Obj  map[string]any
}

// String builds a plain-string answer.
func String(s string) AnswerValue {
	return AnswerValue{Kind: KindString, Str: s}
}

// Array builds an array answer.
func Array(items ...any) AnswerValue {
	return AnswerValue{Kind: KindArray, Arr: items}
}

// Object builds an object answer.
func Object(obj map[string]any) AnswerValue {
	return AnswerValue{Kind: KindObject, Obj: obj}
}

// UnmarshalJSON accepts a string, array, or object. Numbers and booleans are
// kept as their literal text so nothing the wizard sends is rejected.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		v.Kind = KindObject
		return json.Unmarshal(data, &v.Obj)
	case strings.HasPrefix(trimmed, "["):
		v.Kind = KindArray
		return json.Unmarshal(data, &v.Arr)
	case strings.HasPrefix(trimmed, `"`):
		v.Kind = KindString
		return json.Unmarshal(data, &v.Str)
	case trimmed == "null":
		v.Kind = KindString
		v.Str = ""
		return nil
	default:
		v.Kind = KindString
		v.Str = trimmed
		return nil
	}
}

// MarshalJSON round-trips the value in its original shape.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindArray:
		return json.Marshal(v.Arr)
	case KindObject:
		return json.Marshal(v.Obj)
	default:
		return json.Marshal(v.Str)
	}
}

// IsEmpty reports whether the value counts as "no answer given".
func (v AnswerValue) IsEmpty() bool {
	switch v.Kind {
	case KindArray:
		return len(v.Arr) == 0
	case KindObject:
		return len(v.Obj) == 0
	default:
		return v.Str == ""
	}
}

// Structured returns the value with JSON-encoded strings decoded: a string
// that parses as an object or array comes back as that structure, anything
// else comes back as-is.
func (v AnswerValue) Structured() any {
	switch v.Kind {
	case KindArray:
		return v.Arr
	case KindObject:
		return v.Obj
	default:
		return parseJSONSafe(v.Str)
	}
}

// AsObject returns the object form of the value, decoding JSON strings when
// needed. ok is false when the value is not object-shaped.
func (v AnswerValue) AsObject() (map[string]any, bool) {
	switch v.Kind {
	case KindObject:
		return v.Obj, true
	case KindString:
		if obj, isObj := parseJSONSafe(v.Str).(map[string]any); isObj {
			return obj, true
		}
	}
	return nil, false
}

// parseJSONSafe decodes s when it holds a JSON object or array, and returns
// the raw string otherwise.
func parseJSONSafe(s string) any {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return s
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return s
	}
	return out
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeString strips HTML tags, trims whitespace, and caps the length.
func sanitizeString(s string, max int) string {
	clean := strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
	runes := []rune(clean)
	if len(runes) > max {
		return string(runes[:max])
	}
	return clean
}

// Package jsonutil formats JSON payloads for terminal output, with
// recursive expansion of JSON strings embedded inside values. Handler
// result data sometimes carries serialized sub-documents (activity
// details, confirmation data) and expanding them keeps the printed
// output readable.
package jsonutil

import (
	"encoding/json"
	"strings"
)

// PrettyPrintValue renders any JSON-marshalable value with nested
// expansion. Values that cannot be marshaled come back empty.
func PrettyPrintValue(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return PrettyPrintWithNestedExpansion(string(raw))
}

// PrettyPrintWithNestedExpansion formats a JSON document with two-space
// indentation, recursively expanding any string values that are
// themselves valid JSON. Input that is not valid JSON is returned
// unchanged.
func PrettyPrintWithNestedExpansion(value string) string {
	var data any
	if err := json.Unmarshal([]byte(value), &data); err != nil {
		return value
	}
	expanded := expandNestedJSON(data)
	pretty, err := json.MarshalIndent(expanded, "", "  ")
	if err != nil {
		return value
	}
	return string(pretty)
}

// expandNestedJSON walks objects and arrays, replacing string values
// that parse as JSON with their parsed form.
func expandNestedJSON(data any) any {
	switch v := data.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = expandNestedJSON(val)
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = expandNestedJSON(val)
		}
		return result
	case string:
		if looksLikeJSON(v) {
			var nested any
			if err := json.Unmarshal([]byte(v), &nested); err == nil {
				return expandNestedJSON(nested)
			}
		}
		return v
	default:
		return v
	}
}

// looksLikeJSON is a cheap structural check before attempting a parse.
func looksLikeJSON(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	return (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"))
}

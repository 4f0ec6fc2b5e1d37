package summarize

import (
	"encoding/json"
	"strings"
)

// recoverJSONObject digs a usable JSON object out of a model reply.
// Models wrap output in markdown fences, prepend prose, append trailing
// commentary, or hand back a single-element array; all of those recover.
// Anything that does not contain an object fails.
func recoverJSONObject(raw string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return nil, false
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx != -1 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	objIdx := strings.IndexByte(cleaned, '{')
	arrIdx := strings.IndexByte(cleaned, '[')
	start := objIdx
	if start == -1 || (arrIdx != -1 && arrIdx < objIdx) {
		start = arrIdx
	}
	if start == -1 {
		return nil, false
	}
	cleaned = cleaned[start:]

	// A Decoder stops at the end of the first value, tolerating whatever
	// the model appended after it.
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, false
	}

	switch v := value.(type) {
	case map[string]any:
		return v, true
	case []any:
		if len(v) == 1 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

func stringField(obj map[string]any, key string) string {
	value, _ := obj[key].(string)
	return strings.TrimSpace(value)
}

// stringListField accepts both a JSON array and a comma- or newline-
// separated string, which smaller models produce for list fields.
func stringListField(obj map[string]any, key string) []string {
	var items []string
	switch value := obj[key].(type) {
	case []any:
		for _, item := range value {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					items = append(items, s)
				}
			}
		}
	case string:
		separator := ","
		if strings.Contains(value, "\n") {
			separator = "\n"
		}
		for _, part := range strings.Split(value, separator) {
			part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "-"))
			if part != "" {
				items = append(items, part)
			}
		}
	}
	return items
}

package youtube

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var ErrInitialDataNotFound = errors.New("embedded state blob not found")

// The page format is not guaranteed stable, so several marker candidates
// are tried in sequence. First successful parse wins.
var initialDataMarkers = []string{
	"var ytInitialData = ",
	`window["ytInitialData"] = `,
	`ytInitialData":`,
}

var playerResponseMarkers = []string{
	"var ytInitialPlayerResponse = ",
	"ytInitialPlayerResponse = ",
}

var apiKeyRe = regexp.MustCompile(`"INNERTUBE_API_KEY":"([^"]+)"`)

// extractJSONObject returns the balanced JSON object starting at the first
// '{' after the marker. A quote-aware brace walk is used instead of a
// regex because the blob contains nested braces and escaped quotes.
func extractJSONObject(html, marker string) (string, bool) {
	idx := strings.Index(html, marker)
	if idx == -1 {
		return "", false
	}
	start := strings.IndexByte(html[idx+len(marker):], '{')
	if start == -1 {
		return "", false
	}
	start += idx + len(marker)

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(html); i++ {
		ch := html[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return html[start : i+1], true
			}
		}
	}
	return "", false
}

func extractByMarkers(html string, markers []string) (map[string]any, error) {
	for _, marker := range markers {
		raw, ok := extractJSONObject(html, marker)
		if !ok {
			continue
		}
		var data map[string]any
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			return data, nil
		}
	}
	return nil, ErrInitialDataNotFound
}

// ExtractInitialData locates and parses the ytInitialData state blob.
func ExtractInitialData(html string) (map[string]any, error) {
	return extractByMarkers(html, initialDataMarkers)
}

// ExtractPlayerResponse locates and parses the ytInitialPlayerResponse
// blob from a watch page.
func ExtractPlayerResponse(html string) (map[string]any, error) {
	return extractByMarkers(html, playerResponseMarkers)
}

// ExtractInnertubeCredentials pulls the API key and request context the
// continuation endpoint expects. Both come embedded in the listing page.
func ExtractInnertubeCredentials(html string) (string, map[string]any) {
	var apiKey string
	if m := apiKeyRe.FindStringSubmatch(html); m != nil {
		apiKey = m[1]
	}
	context := map[string]any{}
	if raw, ok := extractJSONObject(html, `"INNERTUBE_CONTEXT":`); ok {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			context = parsed
		}
	}
	return apiKey, context
}

// Optional field accessors. Platform page JSON is deeply nested and every
// individual field read must degrade to a zero value when the structure
// shifts, so all deserialization goes through these helpers.

func digMap(m map[string]any, keys ...string) map[string]any {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func digSlice(m map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := m
	if len(keys) > 1 {
		parent = digMap(m, keys[:len(keys)-1]...)
	}
	if parent == nil {
		return nil
	}
	value, _ := parent[keys[len(keys)-1]].([]any)
	return value
}

func digString(m map[string]any, keys ...string) string {
	if len(keys) == 0 {
		return ""
	}
	parent := m
	if len(keys) > 1 {
		parent = digMap(m, keys[:len(keys)-1]...)
	}
	if parent == nil {
		return ""
	}
	value, _ := parent[keys[len(keys)-1]].(string)
	return value
}

func digBool(m map[string]any, keys ...string) bool {
	if len(keys) == 0 {
		return false
	}
	parent := m
	if len(keys) > 1 {
		parent = digMap(m, keys[:len(keys)-1]...)
	}
	if parent == nil {
		return false
	}
	value, _ := parent[keys[len(keys)-1]].(bool)
	return value
}

func itemMap(item any) map[string]any {
	m, _ := item.(map[string]any)
	return m
}

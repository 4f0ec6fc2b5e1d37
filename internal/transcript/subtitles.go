package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

var cueTagRe = regexp.MustCompile(`<[^>]+>`)

// StripSubtitleCues flattens WebVTT or SRT content into plain prose.
// Sequence numbers, timing lines, header blocks and inline styling tags
// are dropped; consecutive duplicate lines, which rolling captions
// produce constantly, collapse to one.
func StripSubtitleCues(content string) string {
	var textLines []string
	previous := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "WEBVTT") ||
			strings.HasPrefix(line, "Kind:") ||
			strings.HasPrefix(line, "Language:") ||
			strings.HasPrefix(line, "NOTE") ||
			strings.HasPrefix(line, "STYLE") {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			continue
		}
		line = strings.TrimSpace(cueTagRe.ReplaceAllString(line, ""))
		if line == "" || line == previous {
			continue
		}
		textLines = append(textLines, line)
		previous = line
	}
	return strings.Join(textLines, " ")
}

package store

import "strings"

// Group lists persist as a single semicolon-separated column. Input is
// tolerant: commas and pipes from hand-edited imports also split.
var groupSeparators = strings.NewReplacer(",", ";", "|", ";")

func SplitGroups(raw string) []string {
	var groups []string
	for _, part := range strings.Split(groupSeparators.Replace(raw), ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			groups = append(groups, part)
		}
	}
	return groups
}

func SerializeGroups(groups []string) string {
	var cleaned []string
	for _, group := range groups {
		group = strings.TrimSpace(group)
		if group != "" {
			cleaned = append(cleaned, group)
		}
	}
	return strings.Join(cleaned, ";")
}

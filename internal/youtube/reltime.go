package youtube

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// liveMarkers flag listings that are not aged videos at all. A stream in
// progress or a premiere has no publication age to filter on.
var liveMarkers = []string{
	"live now",
	"ao vivo",
	"transmitindo agora",
	"upcoming",
	"programado",
}

// suffixWords carry no information once the numeric pattern is matched.
var suffixWords = []string{
	"atrás",
	"ago",
	"há",
	"streamed",
	"transmitido",
}

type relativeUnit struct {
	pattern  *regexp.Regexp
	duration time.Duration
}

// Listing pages come back in English or Portuguese depending on the
// Accept-Language negotiation, so both unit vocabularies are matched.
// Months and years are approximated the way the listing itself rounds them.
var relativeUnits = []relativeUnit{
	{regexp.MustCompile(`(\d+)\s*min`), time.Minute},
	{regexp.MustCompile(`(\d+)\s*minute`), time.Minute},
	{regexp.MustCompile(`(\d+)\s*hora`), time.Hour},
	{regexp.MustCompile(`(\d+)\s*hour`), time.Hour},
	{regexp.MustCompile(`(\d+)\s*dia`), 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*day`), 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*semana`), 7 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*week`), 7 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*m[eê]s`), 30 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*month`), 30 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*ano`), 365 * 24 * time.Hour},
	{regexp.MustCompile(`(\d+)\s*year`), 365 * 24 * time.Hour},
}

// ParseRelativeTime converts a human readable relative timestamp such as
// "3 days ago" or "2 semanas atrás" into an absolute instant relative to
// now. It returns nil for live/upcoming markers and for anything it does
// not recognize.
func ParseRelativeTime(text string, now time.Time) *time.Time {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}
	for _, marker := range liveMarkers {
		if strings.Contains(t, marker) {
			return nil
		}
	}
	for _, word := range suffixWords {
		t = strings.ReplaceAll(t, word, "")
	}
	t = strings.TrimSpace(t)

	for _, unit := range relativeUnits {
		m := unit.pattern.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		instant := now.Add(-time.Duration(n) * unit.duration)
		return &instant
	}
	return nil
}

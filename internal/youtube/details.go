package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

// VideoDetails carries the per-video metadata the listing does not
// provide. All fields are best effort.
type VideoDetails struct {
	DurationSeconds int    `json:"duration_seconds"`
	DurationDisplay string `json:"duration_display"`
	DatePublished   string `json:"date_published"`
}

var iso8601DurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration converts the schema.org duration form PT#H#M#S to
// seconds. Zero and false on anything else.
func parseISO8601Duration(s string) (int, bool) {
	m := iso8601DurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*3600 + minutes*60 + seconds
	if total == 0 {
		return 0, false
	}
	return total, true
}

func formatHHMMSS(totalSeconds int) string {
	if totalSeconds <= 0 {
		return ""
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

type VideoDetailFetcher struct {
	fetcher *PageFetcher
	logger  logger.Logger
}

func NewVideoDetailFetcher(fetcher *PageFetcher, log logger.Logger) *VideoDetailFetcher {
	return &VideoDetailFetcher{fetcher: fetcher, logger: log}
}

// Fetch loads a watch page and extracts duration and publish date. The
// structured ld+json block is preferred; the embedded player response
// covers pages that omit it.
func (v *VideoDetailFetcher) Fetch(ctx context.Context, videoID string) (VideoDetails, error) {
	body, err := v.fetcher.Get(ctx, WatchURL(videoID))
	if err != nil {
		return VideoDetails{}, fmt.Errorf("fetch watch page: %w", err)
	}
	html := string(body)

	details := v.fromLinkedData(html)
	if details.DurationSeconds == 0 || details.DatePublished == "" {
		v.fromPlayerResponse(html, &details)
	}
	if details.DurationDisplay == "" {
		details.DurationDisplay = formatHHMMSS(details.DurationSeconds)
	}
	return details, nil
}

// fromLinkedData scans the page's application/ld+json scripts for a
// schema.org VideoObject.
func (v *VideoDetailFetcher) fromLinkedData(html string) VideoDetails {
	var details VideoDetails
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return details
	}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var obj map[string]any
		if err := json.Unmarshal([]byte(sel.Text()), &obj); err != nil {
			return true
		}
		if digString(obj, "@type") != "VideoObject" {
			return true
		}
		if secs, ok := parseISO8601Duration(digString(obj, "duration")); ok {
			details.DurationSeconds = secs
		}
		details.DatePublished = digString(obj, "uploadDate")
		if details.DatePublished == "" {
			details.DatePublished = digString(obj, "datePublished")
		}
		return false
	})
	return details
}

// fromPlayerResponse fills missing fields from ytInitialPlayerResponse.
func (v *VideoDetailFetcher) fromPlayerResponse(html string, details *VideoDetails) {
	player, err := ExtractPlayerResponse(html)
	if err != nil {
		v.logger.WithError(err).Debug("No player response in watch page")
		return
	}
	if details.DurationSeconds == 0 {
		raw := digString(player, "videoDetails", "lengthSeconds")
		if secs, err := strconv.Atoi(raw); err == nil {
			details.DurationSeconds = secs
		}
	}
	if details.DatePublished == "" {
		details.DatePublished = digString(player, "microformat", "playerMicroformatRenderer", "publishDate")
	}
}

package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

const browseEndpoint = "https://www.youtube.com/youtubei/v1/browse"

// VideoStub is one listing entry from a channel's videos tab.
type VideoStub struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	URL               string     `json:"url"`
	PublishedAt       *time.Time `json:"published,omitempty"`
	PublishedRelative string     `json:"published_relative"`
}

// Discoverer walks a channel's video listing, following the continuation
// protocol until an age window or count limit is satisfied.
type Discoverer struct {
	fetcher *PageFetcher
	logger  logger.Logger
	now     func() time.Time
}

func NewDiscoverer(fetcher *PageFetcher, log logger.Logger) *Discoverer {
	return &Discoverer{
		fetcher: fetcher,
		logger:  log,
		now:     time.Now,
	}
}

// NormalizeChannelID maps a raw channel reference to the canonical form
// used in URLs: UC ids pass through, anything else becomes a handle.
func NormalizeChannelID(raw string) string {
	id := strings.TrimSpace(raw)
	if strings.HasPrefix(id, "UC") || strings.HasPrefix(id, "@") {
		return id
	}
	return "@" + id
}

func channelVideosURL(channelID string) string {
	if strings.HasPrefix(channelID, "UC") {
		return fmt.Sprintf("https://www.youtube.com/channel/%s/videos", channelID)
	}
	return fmt.Sprintf("https://www.youtube.com/%s/videos", NormalizeChannelID(channelID))
}

func channelAboutURL(channelID string) string {
	if strings.HasPrefix(channelID, "UC") {
		return fmt.Sprintf("https://www.youtube.com/channel/%s/about", channelID)
	}
	return fmt.Sprintf("https://www.youtube.com/%s/about", NormalizeChannelID(channelID))
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// normalizeTextBasic lower-cases and strips diacritics so tab titles like
// "Vídeos" match their ASCII form.
func normalizeTextBasic(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(strings.TrimSpace(b.String()))
}

// videoScan accumulates accepted stubs and decides, item by item, whether
// the listing walk keeps going. The stop-vs-skip rules live here and
// nowhere else: live/upcoming and unparseable ages skip, a confirmed age
// beyond the window or a reached count limit stops.
type videoScan struct {
	maxAgeDays int
	maxVideos  int
	now        time.Time

	videos  []VideoStub
	stopped bool

	parsed   int
	live     int
	upcoming int
	noDate   int
	older    int
	shelves  int
}

// push applies the acceptance rule to one video renderer. It returns
// false when the whole scan must stop.
func (s *videoScan) push(vr map[string]any) bool {
	videoID := digString(vr, "videoId")
	if videoID == "" {
		return true
	}

	isLive := false
	for _, badge := range digSlice(vr, "badges") {
		label := digString(itemMap(badge), "metadataBadgeRenderer", "label")
		if strings.Contains(strings.ToUpper(label), "LIVE") {
			isLive = true
			break
		}
	}
	if _, upcoming := vr["upcomingEventData"]; upcoming || isLive {
		if isLive {
			s.live++
		} else {
			s.upcoming++
		}
		return true
	}

	title := ""
	if runs := digSlice(vr, "title", "runs"); len(runs) > 0 {
		title = digString(itemMap(runs[0]), "text")
	}
	rel := digString(vr, "publishedTimeText", "simpleText")
	publishedAt := ParseRelativeTime(rel, s.now)

	if s.maxAgeDays > 0 {
		if publishedAt == nil {
			// Age cannot be verified, skip the item but keep scanning.
			s.noDate++
			return true
		}
		ageDays := int(s.now.Sub(*publishedAt).Hours() / 24)
		if ageDays > s.maxAgeDays {
			// Listings are newest first: one confirmed-old item ends the scan.
			s.older++
			return false
		}
	}

	s.videos = append(s.videos, VideoStub{
		ID:                videoID,
		Title:             title,
		URL:               WatchURL(videoID),
		PublishedAt:       publishedAt,
		PublishedRelative: rel,
	})

	if s.maxVideos > 0 && len(s.videos) >= s.maxVideos {
		return false
	}
	return true
}

// consume walks one page of listing items. It returns the continuation
// token found on this page, if any.
func (s *videoScan) consume(items []any) string {
	token := ""
	for _, raw := range items {
		item := itemMap(raw)
		if item == nil {
			continue
		}
		if cont := digString(item, "continuationItemRenderer", "continuationEndpoint", "continuationCommand", "token"); cont != "" {
			token = cont
			continue
		}
		if _, ok := item["reelShelfRenderer"]; ok {
			s.shelves++
			continue
		}
		if _, ok := item["richSectionRenderer"]; ok {
			s.shelves++
			continue
		}
		content := digMap(item, "richItemRenderer", "content")
		if content == nil {
			content = item
		}
		vr := digMap(content, "videoRenderer")
		if vr == nil {
			vr = digMap(content, "gridVideoRenderer")
		}
		if vr == nil {
			continue
		}
		s.parsed++
		if !s.push(vr) {
			s.stopped = true
			return token
		}
	}
	return token
}

// Discover lists recent videos for a channel. maxAgeDays and maxVideos
// are optional; zero disables the corresponding limit. A channel page
// that cannot be fetched or parsed yields an empty result and an error
// the caller logs, never a failed run.
func (d *Discoverer) Discover(ctx context.Context, channelID string, maxAgeDays, maxVideos int) ([]VideoStub, error) {
	pageURL := channelVideosURL(channelID)
	body, err := d.fetcher.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch videos tab: %w", err)
	}
	html := string(body)

	data, err := ExtractInitialData(html)
	if err != nil {
		return nil, fmt.Errorf("videos tab for %s: %w", channelID, err)
	}

	contents, legacyToken := findVideosTab(data)

	scan := &videoScan{
		maxAgeDays: maxAgeDays,
		maxVideos:  maxVideos,
		now:        d.now(),
	}
	token := scan.consume(contents)
	if token == "" {
		token = legacyToken
	}

	if !scan.stopped && token != "" {
		apiKey, innertubeCtx := ExtractInnertubeCredentials(html)
		d.paginate(ctx, scan, token, apiKey, innertubeCtx)
	}

	d.logger.WithFields(logger.Fields{
		"channel":  channelID,
		"parsed":   scan.parsed,
		"accepted": len(scan.videos),
		"live":     scan.live,
		"upcoming": scan.upcoming,
		"no_date":  scan.noDate,
		"older":    scan.older,
		"shelves":  scan.shelves,
	}).Info("Videos tab scanned")

	return scan.videos, nil
}

// paginate follows continuation tokens until the scan stops, the token
// chain ends, or the endpoint misbehaves. Endpoint failures keep whatever
// was collected so far.
func (d *Discoverer) paginate(ctx context.Context, scan *videoScan, token, apiKey string, innertubeCtx map[string]any) {
	if apiKey == "" {
		return
	}
	endpoint := fmt.Sprintf("%s?key=%s", browseEndpoint, apiKey)
	for token != "" && !scan.stopped {
		if ctx.Err() != nil {
			return
		}
		payload := map[string]any{
			"continuation": token,
			"context":      innertubeCtx,
		}
		body, err := d.fetcher.PostJSON(ctx, endpoint, payload)
		if err != nil {
			d.logger.WithError(err).Debug("Continuation request failed, keeping collected videos")
			return
		}
		var data map[string]any
		if err := json.Unmarshal(body, &data); err != nil {
			return
		}

		actions := digSlice(data, "onResponseReceivedActions")
		if len(actions) == 0 {
			return
		}
		items := digSlice(itemMap(actions[0]), "appendContinuationItemsAction", "continuationItems")
		token = scan.consume(items)
	}
}

// findVideosTab locates the tab whose title or selected flag marks the
// videos listing and returns its content items plus the legacy-format
// continuation token when present.
func findVideosTab(data map[string]any) ([]any, string) {
	tabs := digSlice(data, "contents", "twoColumnBrowseResultsRenderer", "tabs")
	for _, rawTab := range tabs {
		tr := digMap(itemMap(rawTab), "tabRenderer")
		if tr == nil {
			continue
		}
		title := normalizeTextBasic(digString(tr, "title"))
		if !strings.Contains(title, "videos") && !digBool(tr, "selected") {
			continue
		}
		rgr := digMap(tr, "content", "richGridRenderer")
		if rgr == nil {
			continue
		}
		token := ""
		if conts := digSlice(rgr, "continuations"); len(conts) > 0 {
			token = digString(itemMap(conts[0]), "nextContinuationData", "continuation")
		}
		return digSlice(rgr, "contents"), token
	}
	return nil, ""
}

package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

var (
	ErrNoCaptions = errors.New("no caption tracks on watch page")
	ErrBlocked    = errors.New("caption access blocked")
)

// CaptionTrack is one entry of the watch page's caption tracklist.
type CaptionTrack struct {
	BaseURL        string `json:"baseUrl"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
	Name           struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
}

// Generated reports whether the track is speech-recognition output rather
// than an uploaded caption file.
func (t CaptionTrack) Generated() bool {
	return t.Kind == "asr"
}

// Matches compares the track language against a preference, treating a
// base language as matching any of its regional variants.
func (t CaptionTrack) Matches(preferred string) bool {
	trackTag, err1 := language.Parse(t.LanguageCode)
	wantTag, err2 := language.Parse(preferred)
	if err1 != nil || err2 != nil {
		return strings.EqualFold(t.LanguageCode, preferred)
	}
	if trackTag == wantTag {
		return true
	}
	trackBase, _ := trackTag.Base()
	wantBase, _ := wantTag.Base()
	return trackBase == wantBase
}

// TrackLister pulls the caption tracklist off a watch page and fetches
// individual tracks from the timed-text endpoint.
type TrackLister struct {
	fetcher *youtube.PageFetcher
	logger  logger.Logger
}

func NewTrackLister(fetcher *youtube.PageFetcher, log logger.Logger) *TrackLister {
	return &TrackLister{fetcher: fetcher, logger: log}
}

// List fetches the watch page and returns its caption tracks. Rate-limit
// and robot-check responses map to ErrBlocked so the caller can switch
// acquisition strategy instead of retrying.
func (l *TrackLister) List(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	body, err := l.fetcher.Get(ctx, youtube.WatchURL(videoID))
	if err != nil {
		if isBlockedError(err, nil) {
			return nil, fmt.Errorf("%w: %s", ErrBlocked, videoID)
		}
		return nil, err
	}
	if isBlockedError(nil, body) {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, videoID)
	}

	player, err := youtube.ExtractPlayerResponse(string(body))
	if err != nil {
		return nil, ErrNoCaptions
	}
	captions, ok := player["captions"]
	if !ok {
		return nil, ErrNoCaptions
	}

	// The blob arrives as generic JSON; a marshal round trip gives typed
	// tracks without hand-walking the nesting.
	raw, err := json.Marshal(captions)
	if err != nil {
		return nil, err
	}
	var blob struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, err
	}
	tracks := blob.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// FetchText downloads a track and returns its cue text flattened to
// prose. translateTo, when non-empty, asks the timed-text endpoint for a
// machine translation of the track.
func (l *TrackLister) FetchText(ctx context.Context, track CaptionTrack, translateTo string) (string, error) {
	trackURL := track.BaseURL
	if translateTo != "" {
		u, err := url.Parse(trackURL)
		if err != nil {
			return "", err
		}
		q := u.Query()
		q.Set("tlang", translateTo)
		u.RawQuery = q.Encode()
		trackURL = u.String()
	}

	body, err := l.fetcher.Get(ctx, trackURL)
	if err != nil {
		if isBlockedError(err, nil) {
			return "", fmt.Errorf("%w: track %s", ErrBlocked, track.LanguageCode)
		}
		return "", err
	}
	text := parseTimedText(body)
	if text == "" {
		return "", fmt.Errorf("empty caption track %s", track.LanguageCode)
	}
	return text, nil
}

// parseTimedText handles both timed-text layouts: the flat <transcript>
// with <text> cues and the srv3 <timedtext> body with <p> cues.
func parseTimedText(body []byte) string {
	var flat struct {
		Texts []string `xml:"text"`
	}
	if err := xml.Unmarshal(body, &flat); err == nil && len(flat.Texts) > 0 {
		return joinCues(flat.Texts)
	}

	var srv3 struct {
		Body struct {
			Paragraphs []struct {
				Value    string   `xml:",chardata"`
				Segments []string `xml:"s"`
			} `xml:"p"`
		} `xml:"body"`
	}
	if err := xml.Unmarshal(body, &srv3); err == nil {
		var cues []string
		for _, p := range srv3.Body.Paragraphs {
			if len(p.Segments) > 0 {
				cues = append(cues, strings.Join(p.Segments, ""))
				continue
			}
			cues = append(cues, p.Value)
		}
		return joinCues(cues)
	}
	return ""
}

func joinCues(cues []string) string {
	var parts []string
	for _, cue := range cues {
		cue = strings.TrimSpace(html.UnescapeString(cue))
		if cue != "" {
			parts = append(parts, cue)
		}
	}
	return strings.Join(parts, " ")
}

// isBlockedError classifies throttling and robot checks. Either signal
// means further native caption requests for this client are pointless.
func isBlockedError(err error, body []byte) bool {
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "too many requests") {
			return true
		}
	}
	if len(body) > 0 {
		lowered := strings.ToLower(string(body[:min(len(body), 4096)]))
		if strings.Contains(lowered, "recaptcha") || strings.Contains(lowered, "unusual traffic") {
			return true
		}
	}
	return false
}

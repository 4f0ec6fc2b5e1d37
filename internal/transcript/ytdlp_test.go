package transcript

import (
	"testing"

	"github.com/lrstanley/go-ytdlp"
	"github.com/stretchr/testify/assert"
)

func subtitleTrack(url string) *ytdlp.ExtractedSubtitle {
	return &ytdlp.ExtractedSubtitle{URL: url}
}

func TestSubtitleURLForLanguage(t *testing.T) {
	pool := map[string][]*ytdlp.ExtractedSubtitle{
		"pt": {
			subtitleTrack("https://example.com/timedtext?lang=pt&fmt=json3"),
			subtitleTrack("https://example.com/timedtext?lang=pt&fmt=vtt"),
		},
		"en": {
			subtitleTrack("https://example.com/timedtext?lang=en&fmt=srt"),
		},
		"ja": {
			subtitleTrack("https://example.com/timedtext?lang=ja&fmt=json3"),
		},
	}

	tests := []struct {
		name        string
		lang        string
		wantURL     string
		wantMatched string
	}{
		{
			name:        "skips non cue formats",
			lang:        "pt",
			wantURL:     "https://example.com/timedtext?lang=pt&fmt=vtt",
			wantMatched: "pt",
		},
		{
			name:        "regional preference falls back to base language",
			lang:        "pt-BR",
			wantURL:     "https://example.com/timedtext?lang=pt&fmt=vtt",
			wantMatched: "pt",
		},
		{
			name:        "srt accepted",
			lang:        "en",
			wantURL:     "https://example.com/timedtext?lang=en&fmt=srt",
			wantMatched: "en",
		},
		{
			name: "only unusable formats",
			lang: "ja",
		},
		{
			name: "language absent",
			lang: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, matched := subtitleURLForLanguage(pool, tt.lang)
			assert.Equal(t, tt.wantURL, url)
			assert.Equal(t, tt.wantMatched, matched)
		})
	}
}

func TestSubtitleURLForLanguage_IgnoresEmptyURL(t *testing.T) {
	pool := map[string][]*ytdlp.ExtractedSubtitle{
		"pt": {
			subtitleTrack(""),
			subtitleTrack("https://example.com/timedtext?lang=pt&fmt=srt"),
		},
	}
	url, matched := subtitleURLForLanguage(pool, "pt")
	assert.Equal(t, "https://example.com/timedtext?lang=pt&fmt=srt", url)
	assert.Equal(t, "pt", matched)
}

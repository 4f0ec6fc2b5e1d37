package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaptionTrack_Matches(t *testing.T) {
	tests := []struct {
		track     string
		preferred string
		expected  bool
	}{
		{"pt", "pt", true},
		{"pt-BR", "pt", true},
		{"pt", "pt-BR", true},
		{"pt-PT", "pt-BR", true},
		{"en", "pt", false},
		{"en-US", "en", true},
		{"", "pt", false},
	}

	for _, tt := range tests {
		track := CaptionTrack{LanguageCode: tt.track}
		assert.Equal(t, tt.expected, track.Matches(tt.preferred),
			"track %q vs preferred %q", tt.track, tt.preferred)
	}
}

func TestCaptionTrack_Generated(t *testing.T) {
	assert.True(t, CaptionTrack{Kind: "asr"}.Generated())
	assert.False(t, CaptionTrack{Kind: ""}.Generated())
}

func TestParseTimedText(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "flat transcript format",
			body:     `<transcript><text start="0" dur="2">Hello</text><text start="2" dur="2">world &amp; more</text></transcript>`,
			expected: "Hello world & more",
		},
		{
			name:     "srv3 paragraph format",
			body:     `<timedtext><body><p t="0" d="2000">First cue</p><p t="2000" d="2000">Second cue</p></body></timedtext>`,
			expected: "First cue Second cue",
		},
		{
			name:     "srv3 with segments",
			body:     `<timedtext><body><p t="0"><s>seg</s><s>mented</s></p></body></timedtext>`,
			expected: "segmented",
		},
		{
			name:     "html entities unescaped",
			body:     `<transcript><text>it&#39;s &quot;quoted&quot;</text></transcript>`,
			expected: `it's "quoted"`,
		},
		{
			name:     "not xml",
			body:     "plain text",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseTimedText([]byte(tt.body)))
		})
	}
}

func TestIsBlockedError(t *testing.T) {
	assert.True(t, isBlockedError(errors.New("unexpected HTTP status: 429 for url"), nil))
	assert.True(t, isBlockedError(errors.New("Too Many Requests"), nil))
	assert.True(t, isBlockedError(nil, []byte(`<form action="/recaptcha/check">`)))
	assert.True(t, isBlockedError(nil, []byte("we detected unusual traffic from your network")))
	assert.False(t, isBlockedError(errors.New("connection refused"), nil))
	assert.False(t, isBlockedError(nil, []byte("<html>regular page</html>")))
}

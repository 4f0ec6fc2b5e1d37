package transcript

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

type fakeTracks struct {
	tracks    []CaptionTrack
	listErr   error
	fetchErr  error
	fetches   []string
	texts     map[string]string
	blockLang string
}

func (f *fakeTracks) List(_ context.Context, _ string) ([]CaptionTrack, error) {
	return f.tracks, f.listErr
}

func (f *fakeTracks) FetchText(_ context.Context, track CaptionTrack, translateTo string) (string, error) {
	key := track.LanguageCode
	if translateTo != "" {
		key = track.LanguageCode + "->" + translateTo
	}
	f.fetches = append(f.fetches, key)
	if track.LanguageCode == f.blockLang {
		return "", fmt.Errorf("%w: track", ErrBlocked)
	}
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	if text, ok := f.texts[key]; ok {
		return text, nil
	}
	return "text in " + key, nil
}

type fakeLegacy struct {
	subtitleText  string
	subtitleLang  string
	subtitleErr   error
	subtitleCalls int
	audioPath     string
	audioErr      error
	audioCalls    int
	cleanedUp     bool
}

func (f *fakeLegacy) FetchSubtitles(_ context.Context, _ string, _ []string) (string, string, error) {
	f.subtitleCalls++
	return f.subtitleText, f.subtitleLang, f.subtitleErr
}

func (f *fakeLegacy) DownloadAudio(_ context.Context, _ string) (string, func(), error) {
	f.audioCalls++
	if f.audioErr != nil {
		return "", nil, f.audioErr
	}
	return f.audioPath, func() { f.cleanedUp = true }, nil
}

type fakeASR struct {
	text string
	err  error
}

func (f *fakeASR) Transcribe(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func (f *fakeASR) Source() Source {
	return SourceASRWhisper
}

func TestResolver_PrefersManualTrackInPreferredLanguage(t *testing.T) {
	tracks := &fakeTracks{
		tracks: []CaptionTrack{
			{LanguageCode: "pt", Kind: "asr"},
			{LanguageCode: "pt", Kind: ""},
			{LanguageCode: "en", Kind: ""},
		},
	}
	resolver := newResolver(tracks, &fakeLegacy{}, nil, []string{"pt", "en"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceNativeCaption, outcome.Source)
	assert.Equal(t, "pt", outcome.Language)
	assert.False(t, outcome.Generated)
	assert.Equal(t, []string{"pt"}, tracks.fetches)
}

func TestResolver_GeneratedTrackBeatsLaterLanguage(t *testing.T) {
	// A generated pt track wins over a manual en track because pt comes
	// first in the preference order.
	tracks := &fakeTracks{
		tracks: []CaptionTrack{
			{LanguageCode: "en", Kind: ""},
			{LanguageCode: "pt-BR", Kind: "asr"},
		},
	}
	resolver := newResolver(tracks, &fakeLegacy{}, nil, []string{"pt", "en"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceNativeCaption, outcome.Source)
	assert.Equal(t, "pt-BR", outcome.Language)
	assert.True(t, outcome.Generated)
}

func TestResolver_TranslatesWhenNoPreferredLanguage(t *testing.T) {
	tracks := &fakeTracks{
		tracks: []CaptionTrack{
			{LanguageCode: "ja", Kind: "", IsTranslatable: true},
		},
	}
	resolver := newResolver(tracks, &fakeLegacy{}, nil, []string{"pt-BR", "en"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceTranslatedCaption, outcome.Source)
	assert.Equal(t, "pt", outcome.Language)
	assert.Equal(t, []string{"ja->pt"}, tracks.fetches)
}

func TestResolver_BlockedFallsBackToLegacyOnce(t *testing.T) {
	tracks := &fakeTracks{listErr: fmt.Errorf("%w: vid1", ErrBlocked)}
	legacy := &fakeLegacy{subtitleText: "legacy transcript", subtitleLang: "pt"}
	resolver := newResolver(tracks, legacy, nil, []string{"pt"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceLegacyCaption, outcome.Source)
	assert.Equal(t, "legacy transcript", outcome.Text)
	assert.Equal(t, 1, legacy.subtitleCalls)
}

func TestResolver_BlockedTrackFetchFallsBackToLegacy(t *testing.T) {
	tracks := &fakeTracks{
		tracks:    []CaptionTrack{{LanguageCode: "pt", Kind: ""}},
		blockLang: "pt",
	}
	legacy := &fakeLegacy{subtitleText: "legacy transcript", subtitleLang: "pt"}
	resolver := newResolver(tracks, legacy, nil, []string{"pt"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceLegacyCaption, outcome.Source)
	assert.Equal(t, 1, legacy.subtitleCalls)
}

func TestResolver_BlockedEverywhereReportsBlocked(t *testing.T) {
	tracks := &fakeTracks{listErr: fmt.Errorf("%w: vid1", ErrBlocked)}
	legacy := &fakeLegacy{subtitleErr: ErrNoLegacySubtitles}
	resolver := newResolver(tracks, legacy, nil, []string{"pt"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	assert.Equal(t, StatusBlocked, outcome.Status)
	assert.Equal(t, SourceNone, outcome.Source)
	assert.Equal(t, 1, legacy.subtitleCalls)
}

func TestResolver_ASRIsLastResort(t *testing.T) {
	tracks := &fakeTracks{listErr: ErrNoCaptions}
	legacy := &fakeLegacy{subtitleErr: ErrNoLegacySubtitles, audioPath: "/tmp/audio.m4a"}
	asr := &fakeASR{text: "spoken words"}
	resolver := newResolver(tracks, legacy, asr, []string{"pt"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	require.Equal(t, StatusFound, outcome.Status)
	assert.Equal(t, SourceASRWhisper, outcome.Source)
	assert.Equal(t, "spoken words", outcome.Text)
	assert.Equal(t, 1, legacy.audioCalls)
	assert.True(t, legacy.cleanedUp)
}

func TestResolver_NothingAvailable(t *testing.T) {
	tracks := &fakeTracks{listErr: ErrNoCaptions}
	legacy := &fakeLegacy{subtitleErr: ErrNoLegacySubtitles, audioErr: errors.New("no audio")}
	asr := &fakeASR{err: ErrTranscriptionFailed}
	resolver := newResolver(tracks, legacy, asr, []string{"pt"}, logger.NewTestLogger())

	outcome := resolver.Resolve(context.Background(), "vid1")

	assert.Equal(t, StatusNotAvailable, outcome.Status)
	assert.Equal(t, SourceNone, outcome.Source)
	assert.Empty(t, outcome.Text)
}

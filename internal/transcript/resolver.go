package transcript

import (
	"context"
	"errors"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

// trackSource and legacySource mirror TrackLister and LegacyFetcher so
// the cascade can be exercised without network or a yt-dlp binary.
type trackSource interface {
	List(ctx context.Context, videoID string) ([]CaptionTrack, error)
	FetchText(ctx context.Context, track CaptionTrack, translateTo string) (string, error)
}

type legacySource interface {
	FetchSubtitles(ctx context.Context, videoURL string, languages []string) (string, string, error)
	DownloadAudio(ctx context.Context, videoURL string) (string, func(), error)
}

// Resolver runs the acquisition cascade: native captions in preference
// order, then a machine translation of whatever track exists, then the
// yt-dlp extractor, then speech recognition when enabled. A block on the
// native path short-circuits to yt-dlp, which is tried exactly once.
type Resolver struct {
	tracks    trackSource
	legacy    legacySource
	asr       SpeechToTextAdapter
	languages []string
	logger    logger.Logger
}

func NewResolver(tracks *TrackLister, legacy *LegacyFetcher, asr SpeechToTextAdapter, languages []string, log logger.Logger) *Resolver {
	return newResolver(tracks, legacy, asr, languages, log)
}

func newResolver(tracks trackSource, legacy legacySource, asr SpeechToTextAdapter, languages []string, log logger.Logger) *Resolver {
	if len(languages) == 0 {
		languages = []string{"pt", "en"}
	}
	return &Resolver{
		tracks:    tracks,
		legacy:    legacy,
		asr:       asr,
		languages: languages,
		logger:    log,
	}
}

// Resolve attempts every acquisition path for one video and reports the
// first success. StatusBlocked is only returned when a block was hit and
// every remaining path came up empty too.
func (r *Resolver) Resolve(ctx context.Context, videoID string) Outcome {
	log := r.logger.WithField("video", videoID)

	outcome, wasBlocked := r.resolveNative(ctx, videoID, log)
	if outcome.Status == StatusFound {
		return outcome
	}

	if outcome := r.resolveLegacy(ctx, videoID, log); outcome.Status == StatusFound {
		return outcome
	}

	if outcome := r.resolveASR(ctx, videoID, log); outcome.Status == StatusFound {
		return outcome
	}

	if wasBlocked {
		log.Warn("Transcript blocked and all fallbacks exhausted")
		return blocked()
	}
	log.Info("No transcript available")
	return notAvailable()
}

// resolveNative covers the watch-page caption paths. The bool reports
// whether a block was encountered.
func (r *Resolver) resolveNative(ctx context.Context, videoID string, log logger.Logger) (Outcome, bool) {
	tracks, err := r.tracks.List(ctx, videoID)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			log.WithError(err).Warn("Caption listing blocked, switching to yt-dlp")
			return notAvailable(), true
		}
		log.WithError(err).Debug("No caption tracks")
		return notAvailable(), false
	}

	// Uploaded tracks across all preferred languages first, then the
	// recognition-generated ones. A generated pt track beats a manual en
	// track only if pt precedes en in the preference order, which the
	// outer loop already guarantees.
	for _, lang := range r.languages {
		for _, generated := range []bool{false, true} {
			for _, track := range tracks {
				if track.Generated() != generated || !track.Matches(lang) {
					continue
				}
				text, err := r.tracks.FetchText(ctx, track, "")
				if err != nil {
					if errors.Is(err, ErrBlocked) {
						return notAvailable(), true
					}
					log.WithError(err).Debug("Caption track fetch failed")
					continue
				}
				return Outcome{
					Status:    StatusFound,
					Source:    SourceNativeCaption,
					Text:      text,
					Language:  track.LanguageCode,
					Generated: track.Generated(),
				}, false
			}
		}
	}

	// Nothing in a preferred language. Translate the first translatable
	// track into the top preference.
	target := strings.Split(r.languages[0], "-")[0]
	for _, track := range tracks {
		if !track.IsTranslatable {
			continue
		}
		text, err := r.tracks.FetchText(ctx, track, target)
		if err != nil {
			if errors.Is(err, ErrBlocked) {
				return notAvailable(), true
			}
			log.WithError(err).Debug("Caption translation failed")
			break
		}
		return Outcome{
			Status:    StatusFound,
			Source:    SourceTranslatedCaption,
			Text:      text,
			Language:  target,
			Generated: track.Generated(),
		}, false
	}
	return notAvailable(), false
}

func (r *Resolver) resolveLegacy(ctx context.Context, videoID string, log logger.Logger) Outcome {
	if r.legacy == nil {
		return notAvailable()
	}
	text, lang, err := r.legacy.FetchSubtitles(ctx, youtube.WatchURL(videoID), r.languages)
	if err != nil {
		log.WithError(err).Debug("yt-dlp subtitles unavailable")
		return notAvailable()
	}
	return Outcome{
		Status:   StatusFound,
		Source:   SourceLegacyCaption,
		Text:     text,
		Language: lang,
	}
}

func (r *Resolver) resolveASR(ctx context.Context, videoID string, log logger.Logger) Outcome {
	if r.asr == nil || r.legacy == nil {
		return notAvailable()
	}
	audioPath, cleanup, err := r.legacy.DownloadAudio(ctx, youtube.WatchURL(videoID))
	if err != nil {
		log.WithError(err).Warn("Audio download for transcription failed")
		return notAvailable()
	}
	defer cleanup()

	hint := strings.Split(r.languages[0], "-")[0]
	text, err := r.asr.Transcribe(ctx, audioPath, hint)
	if err != nil {
		log.WithError(err).Warn("Speech transcription failed")
		return notAvailable()
	}
	log.WithField("source", r.asr.Source()).Info("Transcript recovered via speech recognition")
	return Outcome{
		Status:   StatusFound,
		Source:   r.asr.Source(),
		Text:     text,
		Language: hint,
	}
}

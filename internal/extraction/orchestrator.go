package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
	"github.com/jadermarques/Info-AI-Studio/internal/store"
	"github.com/jadermarques/Info-AI-Studio/internal/summarize"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

var ErrNoChannels = errors.New("no channels to process")

// The collaborators are interfaces so a run can be driven end to end in
// tests without network, a provider or a yt-dlp binary.
type videoDiscoverer interface {
	Discover(ctx context.Context, channelID string, maxAgeDays, maxVideos int) ([]youtube.VideoStub, error)
}

type channelInfoFetcher interface {
	Fetch(ctx context.Context, channelID string) (youtube.ChannelInfo, error)
}

type videoDetailFetcher interface {
	Fetch(ctx context.Context, videoID string) (youtube.VideoDetails, error)
}

type transcriptResolver interface {
	Resolve(ctx context.Context, videoID string) transcript.Outcome
}

type summarizer interface {
	Summarize(ctx context.Context, title, channel, text string) (summarize.SummaryResult, ai.ModelUsage)
}

type resultTranslator interface {
	Translate(ctx context.Context, result summarize.SummaryResult, targetLang string) (summarize.SummaryResult, ai.ModelUsage)
}

// Options bound one run. Zero values disable the corresponding limit or
// feature.
type Options struct {
	Channels    []string
	MaxAgeDays  int
	MaxVideos   int
	Workers     int
	NoLLM       bool
	DetailsOnly bool
	TranslateTo string
}

// Progress receives stage notifications during a run. All fields beyond
// Stage are optional.
type Progress struct {
	Stage     string
	ChannelID string
	VideoID   string
}

// Orchestrator drives a full extraction run: channel metadata, video
// discovery, per-video transcript and summary, aggregation, persistence.
type Orchestrator struct {
	channelInfo channelInfoFetcher
	discoverer  videoDiscoverer
	details     videoDetailFetcher
	transcripts transcriptResolver
	summarizer  summarizer
	translator  resultTranslator
	store       *store.Store
	logger      logger.Logger

	// blockCooldown is how long the run pauses after a blocked video
	// before touching the platform again.
	blockCooldown time.Duration
	notify        func(Progress)
}

func NewOrchestrator(
	channelInfo channelInfoFetcher,
	discoverer videoDiscoverer,
	details videoDetailFetcher,
	transcripts transcriptResolver,
	summarizer summarizer,
	translator resultTranslator,
	st *store.Store,
	log logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		channelInfo:   channelInfo,
		discoverer:    discoverer,
		details:       details,
		transcripts:   transcripts,
		summarizer:    summarizer,
		translator:    translator,
		store:         st,
		logger:        log,
		blockCooldown: 30 * time.Second,
	}
}

// SetNotify installs a progress callback. Must be called before Run.
func (o *Orchestrator) SetNotify(fn func(Progress)) {
	o.notify = fn
}

func (o *Orchestrator) progress(p Progress) {
	if o.notify != nil {
		o.notify(p)
	}
}

// Run processes every configured channel and returns the aggregated
// result. Individual channel and video failures are recorded and skipped;
// the only fatal condition is an empty channel list.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (RunResult, error) {
	if len(opts.Channels) == 0 {
		return RunResult{}, ErrNoChannels
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	result := RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	log := o.logger.WithField("run", result.RunID)
	log.WithFields(logger.Fields{
		"channels":     len(opts.Channels),
		"max_age_days": opts.MaxAgeDays,
		"max_videos":   opts.MaxVideos,
		"workers":      opts.Workers,
	}).Info("Extraction run started")

	for _, rawChannel := range opts.Channels {
		if ctx.Err() != nil {
			break
		}
		channelID := youtube.NormalizeChannelID(rawChannel)
		o.progress(Progress{Stage: "channel", ChannelID: channelID})

		channel := o.processChannel(ctx, channelID, opts, log)
		result.addChannel(channel)
		o.persistChannel(ctx, result.RunID, channel, log)
	}

	result.FinishedAt = time.Now()
	log.WithFields(logger.Fields{
		"channels_ok":     result.Totals.ChannelsProcessed,
		"channels_failed": result.Totals.ChannelsFailed,
		"videos":          result.Totals.VideosProcessed,
		"summarized":      result.Totals.VideosSummarized,
		"total_tokens":    result.Totals.Usage.TotalTokens,
		"cost_usd":        result.Totals.Usage.CostUSD,
	}).Info("Extraction run finished")
	return result, nil
}

func (o *Orchestrator) processChannel(ctx context.Context, channelID string, opts Options, log logger.Logger) ChannelResult {
	channel := ChannelResult{ChannelID: channelID, Status: ChannelStatusOK}

	info, err := o.channelInfo.Fetch(ctx, channelID)
	if err != nil {
		log.WithError(err).WithField("channel", channelID).Error("Channel info fetch failed")
		channel.Status = ChannelStatusFailed
		channel.Reason = err.Error()
		return channel
	}
	channel.Info = info

	videos, err := o.discoverer.Discover(ctx, channelID, opts.MaxAgeDays, opts.MaxVideos)
	if err != nil {
		log.WithError(err).WithField("channel", channelID).Warn("Video discovery failed, channel yields no videos")
		return channel
	}

	channel.Videos = o.processVideos(ctx, channelID, info.Name, videos, opts)
	for _, video := range channel.Videos {
		channel.Usage = channel.Usage.Add(video.Usage)
	}
	return channel
}

// processVideos runs the per-video pipeline through a bounded worker
// pool. Results keep listing order regardless of completion order.
func (o *Orchestrator) processVideos(ctx context.Context, channelID, channelName string, videos []youtube.VideoStub, opts Options) []VideoResult {
	results := make([]VideoResult, len(videos))

	var wg sync.WaitGroup
	var mu sync.Mutex
	blockedUntil := time.Time{}
	sem := make(chan struct{}, opts.Workers)

	for i, video := range videos {
		if ctx.Err() != nil {
			results[i] = VideoResult{Video: video, Transcript: transcript.Outcome{Status: transcript.StatusNotAvailable, Source: transcript.SourceNone}}
			continue
		}

		mu.Lock()
		wait := time.Until(blockedUntil)
		mu.Unlock()
		if wait > 0 {
			o.logger.WithField("cooldown", wait.Round(time.Second)).Warn("Cooling down after block")
			select {
			case <-time.After(wait):
			case <-ctx.Done():
			}
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, video youtube.VideoStub) {
			defer wg.Done()
			defer func() { <-sem }()

			result := o.processVideo(ctx, channelID, channelName, video, opts)
			mu.Lock()
			results[i] = result
			if result.Transcript.Status == transcript.StatusBlocked {
				blockedUntil = time.Now().Add(o.blockCooldown)
			}
			mu.Unlock()
		}(i, video)
	}
	wg.Wait()
	return results
}

func (o *Orchestrator) processVideo(ctx context.Context, channelID, channelName string, video youtube.VideoStub, opts Options) VideoResult {
	o.progress(Progress{Stage: "video", ChannelID: channelID, VideoID: video.ID})
	log := o.logger.WithFields(logger.Fields{"channel": channelID, "video": video.ID})

	result := VideoResult{Video: video}

	details, err := o.details.Fetch(ctx, video.ID)
	if err != nil {
		log.WithError(err).Debug("Video details unavailable")
	} else {
		result.Details = details
	}

	if opts.DetailsOnly {
		result.Transcript = transcript.Outcome{Status: transcript.StatusNotAvailable, Source: transcript.SourceNone}
		return result
	}

	result.Transcript = o.transcripts.Resolve(ctx, video.ID)
	if result.Transcript.Status != transcript.StatusFound {
		return result
	}

	if opts.NoLLM {
		return result
	}

	summary, usage := o.summarizer.Summarize(ctx, video.Title, channelName, result.Transcript.Text)
	result.Summary = summary
	result.Usage = usage

	if opts.TranslateTo != "" && o.translator != nil && !summary.Empty() {
		translated, translateUsage := o.translator.Translate(ctx, summary, opts.TranslateTo)
		result.Summary = translated
		result.Usage = result.Usage.Add(translateUsage)
	}
	return result
}

// persistChannel writes the channel's video records to the extraction
// history. A nil store turns persistence off.
func (o *Orchestrator) persistChannel(ctx context.Context, runID string, channel ChannelResult, log logger.Logger) {
	if o.store == nil || channel.Status != ChannelStatusOK {
		return
	}
	for _, video := range channel.Videos {
		summaryJSON := ""
		if !video.Summary.Empty() {
			if data, err := json.Marshal(video.Summary); err == nil {
				summaryJSON = string(data)
			}
		}
		record := store.ExtractionRecord{
			RunID:            runID,
			ChannelID:        channel.ChannelID,
			VideoID:          video.Video.ID,
			VideoTitle:       video.Video.Title,
			TranscriptSource: string(video.Transcript.Source),
			SummaryJSON:      summaryJSON,
			PromptTokens:     video.Usage.PromptTokens,
			CompletionTokens: video.Usage.CompletionTokens,
			TotalTokens:      video.Usage.TotalTokens,
			CostUSD:          video.Usage.CostUSD,
		}
		if err := o.store.RecordExtraction(ctx, record); err != nil {
			log.WithError(err).WithField("video", video.Video.ID).Error("Failed to persist extraction record")
		}
	}
}

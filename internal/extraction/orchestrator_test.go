package extraction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
	"github.com/jadermarques/Info-AI-Studio/internal/summarize"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

type fakeChannelInfo struct {
	infos map[string]youtube.ChannelInfo
	errs  map[string]error
}

func (f *fakeChannelInfo) Fetch(_ context.Context, channelID string) (youtube.ChannelInfo, error) {
	if err, ok := f.errs[channelID]; ok {
		return youtube.ChannelInfo{Status: youtube.ChannelStatusError}, err
	}
	return f.infos[channelID], nil
}

type fakeDiscoverer struct {
	videos map[string][]youtube.VideoStub
	err    error
}

func (f *fakeDiscoverer) Discover(_ context.Context, channelID string, _, _ int) ([]youtube.VideoStub, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[channelID], nil
}

type fakeDetails struct{}

func (f *fakeDetails) Fetch(_ context.Context, _ string) (youtube.VideoDetails, error) {
	return youtube.VideoDetails{DurationSeconds: 60, DurationDisplay: "01:00"}, nil
}

type fakeResolver struct {
	mu       sync.Mutex
	outcomes map[string]transcript.Outcome
	calls    []string
}

func (f *fakeResolver) Resolve(_ context.Context, videoID string) transcript.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, videoID)
	f.mu.Unlock()
	if outcome, ok := f.outcomes[videoID]; ok {
		return outcome
	}
	return transcript.Outcome{
		Status:   transcript.StatusFound,
		Source:   transcript.SourceNativeCaption,
		Text:     "transcript of " + videoID,
		Language: "pt",
	}
}

type fakeSummarizer struct {
	mu       sync.Mutex
	channels []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, title, channel, _ string) (summarize.SummaryResult, ai.ModelUsage) {
	f.mu.Lock()
	f.channels = append(f.channels, channel)
	f.mu.Unlock()
	return summarize.SummaryResult{
			OneSentence: "Resumo de " + title,
			Summary:     "Resumo completo.",
			Method:      summarize.MethodLLM,
		}, ai.ModelUsage{
			Model:        "gpt-5-nano",
			PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150, CostUSD: 0.001,
		}
}

func stub(id string) youtube.VideoStub {
	return youtube.VideoStub{ID: id, Title: "title " + id, URL: youtube.WatchURL(id)}
}

func newTestOrchestrator(channelInfo channelInfoFetcher, discoverer videoDiscoverer, resolver transcriptResolver) *Orchestrator {
	o := NewOrchestrator(
		channelInfo, discoverer, &fakeDetails{}, resolver, &fakeSummarizer{}, nil,
		nil, logger.NewTestLogger(),
	)
	o.blockCooldown = time.Millisecond
	return o
}

func TestOrchestrator_Run(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK, Name: "Canal Teste"},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1"), stub("v2")},
	}}
	resolver := &fakeResolver{}

	orchestrator := newTestOrchestrator(channels, discoverer, resolver)
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"canal"}})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.Totals.ChannelsProcessed)
	assert.Equal(t, 2, result.Totals.VideosProcessed)
	assert.Equal(t, 2, result.Totals.VideosSummarized)
	assert.Equal(t, 0, result.Totals.VideosWithoutTranscript)
	assert.Equal(t, 300, result.Totals.Usage.TotalTokens)
	assert.InDelta(t, 0.002, result.Totals.Usage.CostUSD, 1e-9)

	require.Len(t, result.Channels, 1)
	channel := result.Channels[0]
	assert.Equal(t, "@canal", channel.ChannelID)
	assert.Equal(t, "Canal Teste", channel.Info.Name)
	require.Len(t, channel.Videos, 2)
	// Listing order survives the worker pool.
	assert.Equal(t, "v1", channel.Videos[0].Video.ID)
	assert.Equal(t, "v2", channel.Videos[1].Video.ID)
}

func TestOrchestrator_SummarizerReceivesChannelName(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK, Name: "Canal Teste"},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1"), stub("v2")},
	}}
	recorder := &fakeSummarizer{}
	orchestrator := NewOrchestrator(
		channels, discoverer, &fakeDetails{}, &fakeResolver{}, recorder, nil,
		nil, logger.NewTestLogger(),
	)

	_, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Canal Teste", "Canal Teste"}, recorder.channels)
}

func TestOrchestrator_NoChannelsIsFatal(t *testing.T) {
	orchestrator := newTestOrchestrator(&fakeChannelInfo{}, &fakeDiscoverer{}, &fakeResolver{})
	_, err := orchestrator.Run(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoChannels)
}

func TestOrchestrator_ChannelInfoFailureSkipsChannel(t *testing.T) {
	channels := &fakeChannelInfo{
		infos: map[string]youtube.ChannelInfo{"@bom": {Status: youtube.ChannelStatusOK, Name: "Bom"}},
		errs:  map[string]error{"@ruim": errors.New("page unreachable")},
	}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@bom": {stub("v1")},
	}}
	resolver := &fakeResolver{}

	orchestrator := newTestOrchestrator(channels, discoverer, resolver)
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@ruim", "@bom"}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Totals.ChannelsFailed)
	assert.Equal(t, 1, result.Totals.ChannelsProcessed)
	require.Len(t, result.Channels, 2)
	assert.Equal(t, ChannelStatusFailed, result.Channels[0].Status)
	assert.Equal(t, "page unreachable", result.Channels[0].Reason)
	assert.Empty(t, result.Channels[0].Videos)
	assert.Equal(t, ChannelStatusOK, result.Channels[1].Status)
}

func TestOrchestrator_NoTranscriptSkipsSummary(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1"), stub("v2")},
	}}
	resolver := &fakeResolver{outcomes: map[string]transcript.Outcome{
		"v1": {Status: transcript.StatusNotAvailable, Source: transcript.SourceNone},
	}}

	orchestrator := newTestOrchestrator(channels, discoverer, resolver)
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Totals.VideosWithoutTranscript)
	assert.Equal(t, 1, result.Totals.VideosSummarized)
	assert.True(t, result.Channels[0].Videos[0].Summary.Empty())
	assert.Zero(t, result.Channels[0].Videos[0].Usage.TotalTokens)
}

func TestOrchestrator_NoLLMSkipsSummaries(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1")},
	}}
	resolver := &fakeResolver{}

	orchestrator := newTestOrchestrator(channels, discoverer, resolver)
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}, NoLLM: true})
	require.NoError(t, err)

	video := result.Channels[0].Videos[0]
	assert.Equal(t, transcript.StatusFound, video.Transcript.Status)
	assert.True(t, video.Summary.Empty())
	assert.Zero(t, result.Totals.Usage.TotalTokens)
}

func TestOrchestrator_DetailsOnlySkipsTranscripts(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1")},
	}}
	resolver := &fakeResolver{}

	orchestrator := newTestOrchestrator(channels, discoverer, resolver)
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}, DetailsOnly: true})
	require.NoError(t, err)

	assert.Empty(t, resolver.calls)
	video := result.Channels[0].Videos[0]
	assert.Equal(t, 60, video.Details.DurationSeconds)
	assert.Equal(t, transcript.StatusNotAvailable, video.Transcript.Status)
}

func TestOrchestrator_DiscoveryFailureYieldsEmptyChannel(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{err: errors.New("listing broken")}

	orchestrator := newTestOrchestrator(channels, discoverer, &fakeResolver{})
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}})
	require.NoError(t, err)

	require.Len(t, result.Channels, 1)
	assert.Equal(t, ChannelStatusOK, result.Channels[0].Status)
	assert.Empty(t, result.Channels[0].Videos)
	assert.Equal(t, 1, result.Totals.ChannelsProcessed)
}

func TestOrchestrator_WorkerPoolPreservesOrder(t *testing.T) {
	var videos []youtube.VideoStub
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		videos = append(videos, stub(id))
	}
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{"@canal": videos}}

	orchestrator := newTestOrchestrator(channels, discoverer, &fakeResolver{})
	result, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}, Workers: 4})
	require.NoError(t, err)

	require.Len(t, result.Channels[0].Videos, 6)
	for i, id := range []string{"a", "b", "c", "d", "e", "f"} {
		assert.Equal(t, id, result.Channels[0].Videos[i].Video.ID)
	}
}

func TestOrchestrator_ProgressNotifications(t *testing.T) {
	channels := &fakeChannelInfo{infos: map[string]youtube.ChannelInfo{
		"@canal": {Status: youtube.ChannelStatusOK},
	}}
	discoverer := &fakeDiscoverer{videos: map[string][]youtube.VideoStub{
		"@canal": {stub("v1")},
	}}

	orchestrator := newTestOrchestrator(channels, discoverer, &fakeResolver{})

	var mu sync.Mutex
	var stages []string
	orchestrator.SetNotify(func(p Progress) {
		mu.Lock()
		stages = append(stages, p.Stage)
		mu.Unlock()
	})

	_, err := orchestrator.Run(context.Background(), Options{Channels: []string{"@canal"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"channel", "video"}, stages)
}

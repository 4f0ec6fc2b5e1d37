package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/extraction"
	"github.com/jadermarques/Info-AI-Studio/internal/service"
	"github.com/jadermarques/Info-AI-Studio/internal/summarize"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

func sampleRun() extraction.RunResult {
	started := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return extraction.RunResult{
		RunID:      "run-123",
		StartedAt:  started,
		FinishedAt: started.Add(95 * time.Second),
		Channels: []extraction.ChannelResult{
			{
				ChannelID: "@canal",
				Info:      youtube.ChannelInfo{Status: youtube.ChannelStatusOK, Name: "Canal Teste"},
				Status:    extraction.ChannelStatusOK,
				Usage:     ai.ModelUsage{TotalTokens: 300},
				Videos: []extraction.VideoResult{
					{
						Video: youtube.VideoStub{ID: "v1", Title: "Primeiro vídeo"},
						Transcript: transcript.Outcome{
							Status: transcript.StatusFound,
							Source: transcript.SourceNativeCaption,
						},
						Summary: summarize.SummaryResult{Summary: "resumo"},
						Usage:   ai.ModelUsage{TotalTokens: 300},
					},
					{
						Video:      youtube.VideoStub{ID: "v2", Title: "Sem transcrição"},
						Transcript: transcript.Outcome{Status: transcript.StatusNotAvailable},
					},
				},
			},
			{
				ChannelID: "@quebrado",
				Status:    extraction.ChannelStatusFailed,
				Reason:    "page unreachable",
			},
		},
		Totals: extraction.Totals{
			ChannelsProcessed:       1,
			ChannelsFailed:          1,
			VideosProcessed:         2,
			VideosSummarized:        1,
			VideosWithoutTranscript: 1,
			Usage:                   ai.ModelUsage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300, CostUSD: 0.0015},
		},
	}
}

func TestRenderer_RenderPortuguese(t *testing.T) {
	localizer, err := service.NewLocalizer("pt")
	require.NoError(t, err)

	output := NewRenderer(localizer).Render(sampleRun())

	assert.Contains(t, output, "run-123")
	assert.Contains(t, output, "Canais: 1 processados, 1 com falha")
	assert.Contains(t, output, "Vídeos: 2 processados, 1 resumidos, 1 sem transcrição")
	assert.Contains(t, output, "Canal Canal Teste: 2 vídeos, 300 tokens")
	assert.Contains(t, output, "Primeiro vídeo [legenda_nativa] 300 tokens")
	assert.Contains(t, output, "Sem transcrição [sem_transcricao] 0 tokens")
	assert.Contains(t, output, "Canal @quebrado: falhou (page unreachable)")
	assert.Contains(t, output, "0.0015")
}

func TestRenderer_RenderEnglish(t *testing.T) {
	localizer, err := service.NewLocalizer("en")
	require.NoError(t, err)

	output := NewRenderer(localizer).Render(sampleRun())

	assert.Contains(t, output, "Channels: 1 processed, 1 failed")
	assert.Contains(t, output, "Videos: 2 processed, 1 summarized, 1 without transcript")
	assert.Contains(t, output, "Finished in 1m35s")
}

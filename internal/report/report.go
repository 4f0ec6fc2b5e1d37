package report

import (
	"fmt"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/extraction"
	"github.com/jadermarques/Info-AI-Studio/internal/service"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
)

// Renderer turns a finished run into the plain-text report printed at
// the end of an extraction. All user-facing strings go through the
// localizer.
type Renderer struct {
	localizer *service.Localizer
}

func NewRenderer(localizer *service.Localizer) *Renderer {
	return &Renderer{localizer: localizer}
}

func (r *Renderer) Render(result extraction.RunResult) string {
	var b strings.Builder

	b.WriteString(r.localizer.Localize("report.header", map[string]any{
		"RunID": result.RunID,
	}))
	b.WriteString("\n")
	b.WriteString(r.localizer.Localize("report.channels", map[string]any{
		"Total":  result.Totals.ChannelsProcessed,
		"Failed": result.Totals.ChannelsFailed,
	}))
	b.WriteString("\n")
	b.WriteString(r.localizer.Localize("report.videos", map[string]any{
		"Total":        result.Totals.VideosProcessed,
		"Summarized":   result.Totals.VideosSummarized,
		"NoTranscript": result.Totals.VideosWithoutTranscript,
	}))
	b.WriteString("\n")
	b.WriteString(r.localizer.Localize("report.tokens", map[string]any{
		"Prompt":     result.Totals.Usage.PromptTokens,
		"Completion": result.Totals.Usage.CompletionTokens,
		"Total":      result.Totals.Usage.TotalTokens,
		"Cost":       fmt.Sprintf("%.4f", result.Totals.Usage.CostUSD),
	}))
	b.WriteString("\n\n")

	for _, channel := range result.Channels {
		r.renderChannel(&b, channel)
	}

	b.WriteString(r.localizer.Localize("report.duration", map[string]any{
		"Duration": result.FinishedAt.Sub(result.StartedAt).Round(10e6).String(),
	}))
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) renderChannel(b *strings.Builder, channel extraction.ChannelResult) {
	name := channel.Info.Name
	if name == "" {
		name = channel.ChannelID
	}

	if channel.Status == extraction.ChannelStatusFailed {
		b.WriteString(r.localizer.Localize("report.channelFailed", map[string]any{
			"Name":   name,
			"Reason": channel.Reason,
		}))
		b.WriteString("\n")
		return
	}

	b.WriteString(r.localizer.Localize("report.channelLine", map[string]any{
		"Name":   name,
		"Videos": len(channel.Videos),
		"Tokens": channel.Usage.TotalTokens,
	}))
	b.WriteString("\n")

	for _, video := range channel.Videos {
		source := string(video.Transcript.Source)
		if video.Transcript.Status != transcript.StatusFound {
			source = string(transcript.SourceNone)
		}
		b.WriteString(r.localizer.Localize("report.videoLine", map[string]any{
			"Title":  video.Video.Title,
			"Source": source,
			"Tokens": video.Usage.TotalTokens,
		}))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

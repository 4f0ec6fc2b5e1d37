package extraction

import (
	"time"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/summarize"
	"github.com/jadermarques/Info-AI-Studio/internal/transcript"
	"github.com/jadermarques/Info-AI-Studio/internal/youtube"
)

const (
	ChannelStatusOK     = "ok"
	ChannelStatusFailed = "failed"
)

// VideoResult is everything collected for one video: listing stub, watch
// page details, transcript outcome, summary and the tokens it cost.
type VideoResult struct {
	Video      youtube.VideoStub
	Details    youtube.VideoDetails
	Transcript transcript.Outcome
	Summary    summarize.SummaryResult
	Usage      ai.ModelUsage
}

type ChannelResult struct {
	ChannelID string
	Info      youtube.ChannelInfo
	Status    string
	Reason    string
	Videos    []VideoResult
	Usage     ai.ModelUsage
}

// Totals aggregates a whole run for the report footer.
type Totals struct {
	ChannelsProcessed       int
	ChannelsFailed          int
	VideosProcessed         int
	VideosSummarized        int
	VideosWithoutTranscript int
	Usage                   ai.ModelUsage
}

type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Channels   []ChannelResult
	Totals     Totals
}

func (r *RunResult) addChannel(channel ChannelResult) {
	r.Channels = append(r.Channels, channel)
	if channel.Status == ChannelStatusFailed {
		r.Totals.ChannelsFailed++
		return
	}
	r.Totals.ChannelsProcessed++
	r.Totals.Usage = r.Totals.Usage.Add(channel.Usage)
	for _, video := range channel.Videos {
		r.Totals.VideosProcessed++
		if video.Transcript.Status != transcript.StatusFound {
			r.Totals.VideosWithoutTranscript++
		}
		if !video.Summary.Empty() {
			r.Totals.VideosSummarized++
		}
	}
}

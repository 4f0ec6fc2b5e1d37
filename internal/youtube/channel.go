package youtube

import (
	"context"
	"fmt"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

// ChannelInfo is the header metadata of a channel's about page. Every
// field except Status degrades independently to its zero value when the
// page layout does not expose it.
type ChannelInfo struct {
	Status          string `json:"status"`
	Name            string `json:"name"`
	SubscriberCount string `json:"subscriber_count"`
	Description     string `json:"description"`
	VideoCount      string `json:"video_count"`
}

const (
	ChannelStatusOK    = "ok"
	ChannelStatusError = "error"
)

type ChannelInfoFetcher struct {
	fetcher *PageFetcher
	logger  logger.Logger
}

func NewChannelInfoFetcher(fetcher *PageFetcher, log logger.Logger) *ChannelInfoFetcher {
	return &ChannelInfoFetcher{fetcher: fetcher, logger: log}
}

// Fetch loads a channel's about page and extracts header metadata. A page
// that cannot be fetched or parsed yields Status=error with the cause.
func (c *ChannelInfoFetcher) Fetch(ctx context.Context, channelID string) (ChannelInfo, error) {
	body, err := c.fetcher.Get(ctx, channelAboutURL(channelID))
	if err != nil {
		return ChannelInfo{Status: ChannelStatusError}, fmt.Errorf("fetch about page: %w", err)
	}
	data, err := ExtractInitialData(string(body))
	if err != nil {
		return ChannelInfo{Status: ChannelStatusError}, fmt.Errorf("about page for %s: %w", channelID, err)
	}

	info := ChannelInfo{Status: ChannelStatusOK}

	if header := digMap(data, "header", "c4TabbedHeaderRenderer"); header != nil {
		info.Name = digString(header, "title")
		info.SubscriberCount = digString(header, "subscriberCountText", "simpleText")
		info.VideoCount = digString(header, "videosCountText", "simpleText")
		if info.VideoCount == "" {
			if runs := digSlice(header, "videosCountText", "runs"); len(runs) > 0 {
				info.VideoCount = digString(itemMap(runs[0]), "text")
			}
		}
	}
	// Newer pages moved the header behind pageHeaderRenderer and only keep
	// reliable metadata under the microformat block.
	if meta := digMap(data, "metadata", "channelMetadataRenderer"); meta != nil {
		if info.Name == "" {
			info.Name = digString(meta, "title")
		}
		info.Description = digString(meta, "description")
	}

	c.logger.WithFields(logger.Fields{
		"channel": channelID,
		"name":    info.Name,
	}).Debug("Channel info fetched")
	return info, nil
}

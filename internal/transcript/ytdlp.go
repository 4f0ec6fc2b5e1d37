package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

var (
	ErrNoLegacySubtitles = errors.New("no subtitles via yt-dlp")
	ErrAudioDownload     = errors.New("audio download failed")
)

// LegacyFetcher acquires captions through yt-dlp's extractor instead of
// the watch page. It survives page-level throttling because yt-dlp speaks
// to different endpoints with its own client fingerprint.
type LegacyFetcher struct {
	httpClient *http.Client
	cookies    string
	proxy      string
	logger     logger.Logger
}

func NewLegacyFetcher(httpClient *http.Client, cookiesFile, proxyURL string, log logger.Logger) *LegacyFetcher {
	return &LegacyFetcher{
		httpClient: httpClient,
		cookies:    cookiesFile,
		proxy:      proxyURL,
		logger:     log,
	}
}

func (f *LegacyFetcher) newCommand() *ytdlp.Command {
	dl := ytdlp.New()
	if f.cookies != "" {
		dl = dl.Cookies(f.cookies)
	}
	if f.proxy != "" {
		dl = dl.Proxy(f.proxy)
	}
	return dl
}

// FetchSubtitles extracts video metadata without downloading and pulls
// the first subtitle track matching the language preference order.
// Uploaded tracks win over automatic ones.
func (f *LegacyFetcher) FetchSubtitles(ctx context.Context, videoURL string, languages []string) (string, string, error) {
	dl := f.newCommand().SkipDownload().PrintJSON()

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		return "", "", fmt.Errorf("yt-dlp extract: %w", err)
	}
	infos, err := result.GetExtractedInfo()
	if err != nil || len(infos) == 0 {
		return "", "", errors.Join(ErrNoLegacySubtitles, err)
	}
	info := infos[0]

	for _, pool := range []map[string][]*ytdlp.ExtractedSubtitle{info.Subtitles, info.AutomaticCaptions} {
		if pool == nil {
			continue
		}
		for _, lang := range languages {
			subtitleURL, matched := subtitleURLForLanguage(pool, lang)
			if subtitleURL == "" {
				continue
			}
			content, err := f.download(ctx, subtitleURL)
			if err != nil {
				f.logger.WithError(err).WithField("language", matched).Debug("Subtitle track fetch failed")
				continue
			}
			text := StripSubtitleCues(content)
			if text != "" {
				return text, matched, nil
			}
		}
	}
	return "", "", ErrNoLegacySubtitles
}

// subtitleURLForLanguage picks a vtt or srt rendition, which the cue
// stripper handles. The format only shows up in the track URL's fmt
// parameter, so that is what gets matched.
func subtitleURLForLanguage(pool map[string][]*ytdlp.ExtractedSubtitle, lang string) (string, string) {
	base := strings.Split(lang, "-")[0]
	for _, candidate := range []string{lang, base} {
		for _, track := range pool[candidate] {
			if track.URL == "" {
				continue
			}
			if strings.Contains(track.URL, "fmt=vtt") || strings.Contains(track.URL, "fmt=srt") {
				return track.URL, candidate
			}
		}
	}
	return "", ""
}

func (f *LegacyFetcher) download(ctx context.Context, subtitleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, subtitleURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadAudio pulls the best audio-only rendition into a scoped temp
// directory and returns the file path plus a cleanup func. The cleanup
// removes the whole directory and must run on every exit path.
func (f *LegacyFetcher) DownloadAudio(ctx context.Context, videoURL string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "infoai-audio-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	dl := f.newCommand().
		Format("bestaudio[ext=m4a]/bestaudio").
		NoPlaylist().
		Output(filepath.Join(dir, "%(id)s.%(ext)s"))

	if _, err := dl.Run(ctx, videoURL); err != nil {
		cleanup()
		return "", nil, errors.Join(ErrAudioDownload, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		cleanup()
		return "", nil, errors.Join(ErrAudioDownload, err)
	}
	path := filepath.Join(dir, entries[0].Name())
	f.logger.WithField("path", path).Debug("Audio downloaded")
	return path, cleanup, nil
}

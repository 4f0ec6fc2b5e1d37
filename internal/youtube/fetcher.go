package youtube

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

var (
	ErrRequestFailed = errors.New("page request failed")
	ErrBadStatus     = errors.New("unexpected HTTP status")
)

// PageFetcher issues headered GETs and JSON POSTs against the platform,
// sharing one cookie-aware client and pacing requests with a limiter so a
// multi-channel run does not hammer the listing endpoints.
type PageFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    logger.Logger
}

func NewPageFetcher(client *http.Client, userAgent string, requestsPerSecond float64, log logger.Logger) *PageFetcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &PageFetcher{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		userAgent: userAgent,
		logger:    log,
	}
}

func (f *PageFetcher) headers() map[string]string {
	return map[string]string{
		"User-Agent":      f.userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7",
		"Connection":      "keep-alive",
		"Cache-Control":   "no-cache",
	}
}

// Get fetches a page and returns its body. Non-200 responses are an error
// so callers can treat "this source unavailable right now" uniformly.
func (f *PageFetcher) Get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	for key, value := range f.headers() {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, pageURL)
	}
	return io.ReadAll(resp.Body)
}

// PostJSON sends a JSON payload and returns the response body.
func (f *PageFetcher) PostJSON(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	for key, value := range f.headers() {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, endpoint)
	}
	return io.ReadAll(resp.Body)
}

// LoadCookiesFile reads a Netscape-format cookies export into the client
// jar. A missing file is not an error; authenticated scraping is optional.
func LoadCookiesFile(client *http.Client, path string, log logger.Logger) error {
	if client.Jar == nil || path == "" {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	byDomain := make(map[string][]*http.Cookie)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			continue
		}
		domain := strings.TrimPrefix(fields[0], ".")
		cookie := &http.Cookie{
			Name:   fields[5],
			Value:  fields[6],
			Path:   fields[2],
			Domain: fields[0],
			Secure: strings.EqualFold(fields[3], "TRUE"),
		}
		if expires, err := strconv.ParseInt(fields[4], 10, 64); err == nil && expires > 0 {
			cookie.Expires = time.Unix(expires, 0)
		}
		byDomain[domain] = append(byDomain[domain], cookie)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	total := 0
	for domain, cookies := range byDomain {
		u := &url.URL{Scheme: "https", Host: domain}
		client.Jar.SetCookies(u, cookies)
		total += len(cookies)
	}
	if total > 0 {
		log.WithFields(logger.Fields{
			"path":    path,
			"cookies": total,
		}).Info("Cookies loaded")
	}
	return nil
}

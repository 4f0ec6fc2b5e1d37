package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

type baseHTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  logger.Logger
}

func newBaseHTTPClient(client *http.Client, baseURL, apiKey string, log logger.Logger) *baseHTTPClient {
	return &baseHTTPClient{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  log,
	}
}

func (c *baseHTTPClient) logRequest(req *http.Request, body []byte) {
	var bodyData any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &bodyData); err == nil {
			if m, ok := bodyData.(map[string]any); ok {
				truncateLargeFields(m)
			}
		}
	}

	logData := map[string]any{
		"url":    req.URL.String(),
		"method": req.Method,
		"body":   bodyData,
	}
	jsonData, err := json.Marshal(logData)
	if err != nil {
		c.logger.WithError(err).Error("Fail marshal json for request")
	}
	c.logger.WithField("request", string(jsonData)).Debug("HTTP request")
}

// truncateLargeFields keeps transcripts out of the debug log. A full
// excerpt in a message content field can run to tens of kilobytes.
func truncateLargeFields(data map[string]any) {
	for k, v := range data {
		switch val := v.(type) {
		case string:
			if (k == "content" || k == "text") && len(val) > 1000 {
				data[k] = val[:1000] + "...[truncated]"
			}
		case map[string]any:
			truncateLargeFields(val)
		case []any:
			for _, item := range val {
				if m, ok := item.(map[string]any); ok {
					truncateLargeFields(m)
				}
			}
		}
	}
}

func (c *baseHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.baseURL != "" && !strings.HasPrefix(req.URL.String(), "http") {
		req.URL, _ = url.Parse(fmt.Sprintf(
			"%s/%s",
			strings.TrimSuffix(c.baseURL, "/"),
			strings.TrimPrefix(req.URL.String(), "/"),
		))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewBuffer(body))
	}

	c.logRequest(req, body)

	return c.client.Do(req)
}

// OpenAICompatibleClient talks to any provider exposing the OpenAI chat
// completions wire format, including proxies and self-hosted gateways.
type OpenAICompatibleClient struct {
	name       string
	chatURL    string
	logger     logger.Logger
	httpClient *baseHTTPClient
}

func NewOpenAICompatibleClient(
	name string,
	baseURL string,
	apiKey string,
	log logger.Logger,
	httpClient *http.Client,
) *OpenAICompatibleClient {
	return &OpenAICompatibleClient{
		name:       name,
		chatURL:    "chat/completions",
		httpClient: newBaseHTTPClient(httpClient, baseURL, apiKey, log),
		logger:     log,
	}
}

func (c *OpenAICompatibleClient) Name() string {
	return c.name
}

// Ask sends one completion request and normalizes whatever response shape
// comes back.
func (c *OpenAICompatibleClient) Ask(ctx context.Context, request CompletionRequest) (Completion, error) {
	body, aiErr := c.doRequest(ctx, http.MethodPost, c.chatURL, request)
	if aiErr != nil {
		aiErr.ModelName = request.Model
		return Completion{}, aiErr
	}

	var envelope completionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Completion{}, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			ModelName:    request.Model,
			Message:      "failed to unmarshal response",
		}
	}

	// Some gateways report failures inside a 200 OK body.
	if envelope.Error != nil {
		return Completion{}, &AIError{
			ProviderName: c.Name(),
			ModelName:    request.Model,
			ErrorCode:    fmt.Sprint(envelope.Error.Code),
			Message:      envelope.Error.Message,
		}
	}

	completion, ok := normalizeCompletion(envelope, request.Model)
	if !ok {
		return Completion{}, &AIError{
			ProviderName: c.Name(),
			ModelName:    request.Model,
			Message:      "no content in response",
		}
	}
	return completion, nil
}

func (c *OpenAICompatibleClient) doRequest(ctx context.Context, method, endpoint string, body any) ([]byte, *AIError) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "marshal request failed",
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "create request failed",
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "network request failed",
		}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AIError{
			OriginalErr:  err,
			ProviderName: c.Name(),
			Message:      "failed to read response body",
		}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var providerError struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
				Code    any    `json:"code"`
			} `json:"error"`
		}
		aiError := &AIError{
			ProviderName:   c.Name(),
			HTTPStatusCode: resp.StatusCode,
			Message:        fmt.Sprintf("HTTP request failed with status code: %d", resp.StatusCode),
		}
		if len(responseBody) > 0 {
			json.Unmarshal(responseBody, &providerError)
			if providerError.Error.Message != "" {
				aiError.Message = providerError.Error.Message
				aiError.ErrorCode = fmt.Sprint(providerError.Error.Code)
			}
		}
		return nil, aiError
	}

	return responseBody, nil
}

package ai

import (
	"context"
	"fmt"
	"net/http"
)

// Provider is the single surface the summarization flow talks to. Real
// runs use OpenAICompatibleClient; tests inject fakes.
type Provider interface {
	Name() string
	Ask(ctx context.Context, request CompletionRequest) (Completion, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []Message      `json:"messages"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

// completionEnvelope covers both wire shapes providers answer with: the
// chat-completions choices array and the newer single-text form. Only one
// of Choices/OutputText is populated per response.
type completionEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
	Status     string `json:"status"`
	Usage      struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
		InputTokens      int `json:"input_tokens"`
		OutputTokens     int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Completion is the normalized result every provider response collapses
// to, regardless of which wire shape it arrived in.
type Completion struct {
	Text         string
	FinishReason string
	Usage        ModelUsage
}

// ModelUsage counts tokens for one call. Cost is estimated locally from
// the static price table, never trusted from the provider.
type ModelUsage struct {
	Model            string  `json:"model"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

func (u ModelUsage) Add(other ModelUsage) ModelUsage {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CostUSD += other.CostUSD
	return u
}

const (
	ErrorTypeAuth      = "auth"
	ErrorTypeRateLimit = "rate_limit"
	ErrorTypeBadInput  = "bad_input"
	ErrorTypeServer    = "server"
	ErrorTypeNetwork   = "network"
	ErrorTypeResponse  = "response"
)

// AIError carries enough context to decide whether a call is worth
// retrying with a shorter excerpt or should fail the video outright.
type AIError struct {
	OriginalErr    error
	ProviderName   string
	ModelName      string
	HTTPStatusCode int
	ErrorCode      string
	Message        string
}

func (e *AIError) Error() string {
	if e.ModelName != "" {
		return fmt.Sprintf("%s/%s: %s", e.ProviderName, e.ModelName, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.ProviderName, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.OriginalErr
}

// Type buckets the failure. Rate limits and server errors are transient,
// auth and bad input are not.
func (e *AIError) Type() string {
	switch {
	case e.HTTPStatusCode == http.StatusUnauthorized || e.HTTPStatusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case e.HTTPStatusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case e.HTTPStatusCode >= 400 && e.HTTPStatusCode < 500:
		return ErrorTypeBadInput
	case e.HTTPStatusCode >= 500:
		return ErrorTypeServer
	case e.OriginalErr != nil:
		return ErrorTypeNetwork
	default:
		return ErrorTypeResponse
	}
}

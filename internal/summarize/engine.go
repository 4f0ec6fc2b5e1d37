package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

const (
	MethodLLM       = "llm"
	MethodHeuristic = "heuristic"
	MethodNone      = "none"
)

// SummaryResult is the summary record for one video. The JSON keys are
// the contract with both the model prompt and the persisted reports, so
// they stay in the report language.
type SummaryResult struct {
	OneSentence string   `json:"resumo_do_video_uma_frase"`
	Summary     string   `json:"resumo_do_video"`
	MainTopic   string   `json:"assunto_principal"`
	Keywords    []string `json:"palavras_chave"`
	Outline     []string `json:"resumo_em_topicos"`
	Method      string   `json:"-"`
}

func (r SummaryResult) Empty() bool {
	return r.OneSentence == "" && r.Summary == "" && r.MainTopic == "" &&
		len(r.Keywords) == 0 && len(r.Outline) == 0
}

// excerptLadder holds the transcript excerpt sizes, in characters, tried
// in order when the model reports the context or output was too small
// for the request. Values descend so each retry is strictly cheaper.
var excerptLadder = []int{8000, 6000, 4000, 2500, 1500, 1000, 600}

// Engine produces a SummaryResult for a transcript, preferring the model
// and degrading to the extractive heuristic when the model path is
// unusable.
type Engine struct {
	provider   ai.Provider
	model      string
	maxWords   int
	tokenLimit int
	logger     logger.Logger
}

func NewEngine(provider ai.Provider, model string, maxWords, tokenLimit int, log logger.Logger) *Engine {
	if maxWords <= 0 {
		maxWords = 150
	}
	return &Engine{
		provider:   provider,
		model:      model,
		maxWords:   maxWords,
		tokenLimit: tokenLimit,
		logger:     log,
	}
}

// Summarize runs the excerpt ladder against the model and falls back to
// the heuristic only after every rung was tried. A failed rung, whatever
// the failure (transport error, rate limit, truncation, empty or
// unparseable reply), moves on to the next smaller excerpt; an auth
// failure is the one exception, since no excerpt size fixes bad
// credentials. Token usage is accumulated across every attempt,
// including failed ones; those tokens were spent regardless.
func (e *Engine) Summarize(ctx context.Context, title, channel, transcript string) (SummaryResult, ai.ModelUsage) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return SummaryResult{Method: MethodNone}, ai.ModelUsage{Model: e.model}
	}
	if e.provider == nil {
		return heuristicSummary(title, transcript, e.maxWords), ai.ModelUsage{Model: e.model}
	}

	usage := ai.ModelUsage{Model: e.model}
	log := e.logger.WithField("title", title)

	lastLen := -1
	for _, size := range excerptLadder {
		if ctx.Err() != nil {
			break
		}
		excerpt := transcript
		if len(excerpt) > size {
			excerpt = excerpt[:size]
		}
		// A rung that does not shrink the previous attempt would repeat
		// the identical request.
		if len(excerpt) == lastLen {
			continue
		}
		lastLen = len(excerpt)

		completion, err := e.provider.Ask(ctx, e.buildRequest(title, channel, excerpt))
		usage = usage.Add(completion.Usage)
		if err != nil {
			var aiErr *ai.AIError
			if errors.As(err, &aiErr) && aiErr.Type() == ai.ErrorTypeAuth {
				log.WithError(err).Warn("Provider rejected credentials, using heuristic summary")
				return heuristicSummary(title, transcript, e.maxWords), usage
			}
			log.WithError(err).WithField("excerpt", size).Debug("Model call failed, shrinking excerpt")
			continue
		}

		if completion.FinishReason == "length" {
			log.WithField("excerpt", size).Debug("Response truncated, shrinking excerpt")
			continue
		}

		text := strings.TrimSpace(completion.Text)
		if text == "" {
			log.WithField("excerpt", size).Debug("Empty model reply, shrinking excerpt")
			continue
		}
		obj, ok := recoverJSONObject(text)
		if !ok {
			log.WithField("excerpt", size).Debug("Unparseable model reply, shrinking excerpt")
			continue
		}
		result := resultFromObject(obj)
		result.Method = MethodLLM
		return result, usage
	}

	log.Warn("Excerpt ladder exhausted, using heuristic summary")
	result := heuristicSummary(title, transcript, e.maxWords)
	return result, usage
}

func (e *Engine) buildRequest(title, channel, excerpt string) ai.CompletionRequest {
	system := "Você é um assistente que resume vídeos. Responda somente com um objeto JSON válido, sem texto adicional."
	prompt := fmt.Sprintf(
		"Resuma a transcrição do vídeo %q abaixo.\n"+
			"Canal: %s\n"+
			"Responda com um objeto JSON contendo exatamente estas chaves:\n"+
			"- resumo_do_video_uma_frase: uma única frase\n"+
			"- resumo_do_video: resumo com no máximo %d palavras\n"+
			"- assunto_principal: o tema central\n"+
			"- palavras_chave: lista de palavras-chave\n"+
			"- resumo_em_topicos: lista de tópicos\n\n"+
			"Transcrição:\n%s",
		title, channel, e.maxWords, excerpt,
	)
	return ai.CompletionRequest{
		Model: e.model,
		Messages: []ai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      maxOutputTokens(e.tokenLimit),
		ResponseFormat: map[string]any{"type": "json_object"},
	}
}

// maxOutputTokens reserves a quarter of the configured context budget for
// the reply, with a floor so small budgets still fit the JSON contract.
func maxOutputTokens(tokenLimit int) int {
	if tokenLimit <= 0 {
		return 0
	}
	if out := (tokenLimit + 3) / 4; out > 256 {
		return out
	}
	return 256
}

func resultFromObject(obj map[string]any) SummaryResult {
	return SummaryResult{
		OneSentence: stringField(obj, "resumo_do_video_uma_frase"),
		Summary:     stringField(obj, "resumo_do_video"),
		MainTopic:   stringField(obj, "assunto_principal"),
		Keywords:    stringListField(obj, "palavras_chave"),
		Outline:     stringListField(obj, "resumo_em_topicos"),
	}
}

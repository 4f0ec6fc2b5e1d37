package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jadermarques/Info-AI-Studio/internal/ai"
	"github.com/jadermarques/Info-AI-Studio/internal/logger"
)

// Translator rewrites a finished summary into another language. It tries
// the cheapest shape first: the whole result as one JSON exchange, then
// field-by-field JSON, then plain-text per field. Whatever happens, the
// result keeps its shape; untranslatable fields keep their original text.
type Translator struct {
	provider ai.Provider
	model    string
	logger   logger.Logger
}

func NewTranslator(provider ai.Provider, model string, log logger.Logger) *Translator {
	return &Translator{provider: provider, model: model, logger: log}
}

// Translate returns the summary in targetLang plus the token usage spent
// getting there.
func (t *Translator) Translate(ctx context.Context, result SummaryResult, targetLang string) (SummaryResult, ai.ModelUsage) {
	if t == nil || t.provider == nil || result.Empty() {
		return result, ai.ModelUsage{}
	}
	usage := ai.ModelUsage{Model: t.model}

	if translated, u, ok := t.translateBulk(ctx, result, targetLang); ok {
		return translated, usage.Add(u)
	} else {
		usage = usage.Add(u)
	}

	t.logger.Debug("Bulk translation failed, translating per field")
	translated, u := t.translatePerField(ctx, result, targetLang)
	return translated, usage.Add(u)
}

func (t *Translator) translateBulk(ctx context.Context, result SummaryResult, targetLang string) (SummaryResult, ai.ModelUsage, bool) {
	payload, err := json.Marshal(result)
	if err != nil {
		return result, ai.ModelUsage{}, false
	}
	prompt := fmt.Sprintf(
		"Traduza os valores do JSON abaixo para %s. Mantenha as chaves e a estrutura exatamente como estão. Responda somente com o JSON traduzido.\n\n%s",
		targetLang, payload,
	)
	completion, err := t.provider.Ask(ctx, t.request(prompt, true))
	if err != nil {
		return result, completion.Usage, false
	}
	obj, ok := recoverJSONObject(completion.Text)
	if !ok {
		return result, completion.Usage, false
	}
	translated := resultFromObject(obj)
	translated.Method = result.Method
	if translated.Empty() {
		return result, completion.Usage, false
	}
	return translated, completion.Usage, true
}

// translatePerField degrades to one field at a time. Every field gets a
// JSON-mode exchange first and one plain-text attempt when that fails;
// a field that survives neither keeps its original value.
func (t *Translator) translatePerField(ctx context.Context, result SummaryResult, targetLang string) (SummaryResult, ai.ModelUsage) {
	usage := ai.ModelUsage{}

	translateString := func(value string) string {
		if value == "" {
			return value
		}
		prompt := fmt.Sprintf(
			"Traduza o valor de \"texto\" no JSON abaixo para %s. Responda somente com um objeto JSON com a mesma chave.\n\n%s",
			targetLang, mustJSON(map[string]string{"texto": value}),
		)
		completion, err := t.provider.Ask(ctx, t.request(prompt, true))
		usage = usage.Add(completion.Usage)
		if err == nil {
			if obj, ok := recoverJSONObject(completion.Text); ok {
				if translated := stringField(obj, "texto"); translated != "" {
					return translated
				}
			}
		}

		prompt = fmt.Sprintf("Traduza o texto a seguir para %s. Responda somente com a tradução.\n\n%s", targetLang, value)
		completion, err = t.provider.Ask(ctx, t.request(prompt, false))
		usage = usage.Add(completion.Usage)
		if err != nil {
			return value
		}
		if translated := strings.TrimSpace(completion.Text); translated != "" {
			return translated
		}
		return value
	}

	translateList := func(values []string) []string {
		if len(values) == 0 {
			return values
		}
		prompt := fmt.Sprintf(
			"Traduza cada item de \"itens\" no JSON abaixo para %s. Responda somente com um objeto JSON com a mesma chave e o mesmo número de itens.\n\n%s",
			targetLang, mustJSON(map[string][]string{"itens": values}),
		)
		completion, err := t.provider.Ask(ctx, t.request(prompt, true))
		usage = usage.Add(completion.Usage)
		if err == nil {
			if obj, ok := recoverJSONObject(completion.Text); ok {
				if translated := stringListField(obj, "itens"); len(translated) == len(values) {
					return translated
				}
			}
		}
		out := make([]string, len(values))
		for i, value := range values {
			out[i] = translateString(value)
		}
		return out
	}

	result.OneSentence = translateString(result.OneSentence)
	result.Summary = translateString(result.Summary)
	result.MainTopic = translateString(result.MainTopic)
	result.Keywords = translateList(result.Keywords)
	result.Outline = translateList(result.Outline)
	return result, usage
}

func (t *Translator) request(prompt string, jsonMode bool) ai.CompletionRequest {
	req := ai.CompletionRequest{
		Model: t.model,
		Messages: []ai.Message{
			{Role: "system", Content: "Você é um tradutor preciso."},
			{Role: "user", Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = map[string]any{"type": "json_object"}
	}
	return req
}

func mustJSON(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

package ai

import "strings"

type modelPrice struct {
	promptPer1K     float64
	completionPer1K float64
}

// Prices in USD per 1000 tokens. The table is intentionally static, cost
// figures in a report are estimates and a missing model simply costs zero.
var modelPrices = map[string]modelPrice{
	"gpt-5":         {promptPer1K: 0.00125, completionPer1K: 0.01},
	"gpt-5-mini":    {promptPer1K: 0.00025, completionPer1K: 0.002},
	"gpt-5-nano":    {promptPer1K: 0.00005, completionPer1K: 0.0004},
	"gpt-4o":        {promptPer1K: 0.0025, completionPer1K: 0.01},
	"gpt-4o-mini":   {promptPer1K: 0.00015, completionPer1K: 0.0006},
	"gpt-4.1":       {promptPer1K: 0.002, completionPer1K: 0.008},
	"gpt-4.1-mini":  {promptPer1K: 0.0004, completionPer1K: 0.0016},
	"gpt-4.1-nano":  {promptPer1K: 0.0001, completionPer1K: 0.0004},
	"o4-mini":       {promptPer1K: 0.0011, completionPer1K: 0.0044},
	"gpt-3.5-turbo": {promptPer1K: 0.0005, completionPer1K: 0.0015},
	"whisper-1":     {promptPer1K: 0.0001, completionPer1K: 0},
}

// EstimateCost prices a call from the static table. Provider-prefixed
// ids such as "openai/gpt-4o-mini" match on the bare model name. Unknown
// models cost zero.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	name := model
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	price, ok := modelPrices[name]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1000*price.promptPer1K +
		float64(completionTokens)/1000*price.completionPer1K
}

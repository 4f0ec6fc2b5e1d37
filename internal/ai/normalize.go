package ai

// normalizeCompletion maps either provider wire shape onto Completion.
// The chat-completions choices form wins when both are somehow present.
// Token counts use whichever naming the provider chose, and a count
// missing next to a known total is derived rather than left at zero.
func normalizeCompletion(envelope completionEnvelope, model string) (Completion, bool) {
	var completion Completion

	switch {
	case len(envelope.Choices) > 0:
		completion.Text = envelope.Choices[0].Message.Content
		completion.FinishReason = envelope.Choices[0].FinishReason
	case envelope.OutputText != "":
		completion.Text = envelope.OutputText
		if envelope.Status == "incomplete" {
			completion.FinishReason = "length"
		} else {
			completion.FinishReason = "stop"
		}
	default:
		return Completion{}, false
	}

	prompt := envelope.Usage.PromptTokens
	if prompt == 0 {
		prompt = envelope.Usage.InputTokens
	}
	output := envelope.Usage.CompletionTokens
	if output == 0 {
		output = envelope.Usage.OutputTokens
	}
	total := envelope.Usage.TotalTokens
	switch {
	case total == 0:
		total = prompt + output
	case prompt == 0 && output > 0:
		prompt = total - output
	case output == 0 && prompt > 0:
		output = total - prompt
	}

	completion.Usage = ModelUsage{
		Model:            model,
		PromptTokens:     prompt,
		CompletionTokens: output,
		TotalTokens:      total,
	}
	completion.Usage.CostUSD = EstimateCost(model, prompt, output)
	return completion, true
}

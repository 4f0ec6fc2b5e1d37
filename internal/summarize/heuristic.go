package summarize

import (
	"regexp"
	"sort"
	"strings"
)

var bracketedTokenRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

const (
	oneSentenceMaxChars = 280
	mainTopicMaxChars   = 120
	maxKeywords         = 12
	keywordSampleWords  = 200
	maxOutlineItems     = 8
)

// heuristicSummary builds a deterministic extractive summary straight
// from the transcript. It is the terminal fallback when no provider is
// configured or every model attempt failed; the same input always yields
// the same output. The main topic is the video title and the outline is
// the leading keywords, so the record stays useful even without a model.
func heuristicSummary(title, transcript string, maxWords int) SummaryResult {
	cleaned := strings.Join(strings.Fields(bracketedTokenRe.ReplaceAllString(transcript, " ")), " ")
	if cleaned == "" {
		return SummaryResult{Method: MethodHeuristic}
	}
	words := strings.Fields(cleaned)

	if maxWords <= 0 {
		maxWords = 150
	}
	summaryWords := words
	if len(summaryWords) > maxWords {
		summaryWords = summaryWords[:maxWords]
	}
	summary := strings.Join(summaryWords, " ")

	oneSentence := strings.TrimSpace(strings.SplitN(summary, ".", 2)[0])
	if oneSentence != "" && strings.Contains(summary, ".") {
		oneSentence += "."
	}
	if len(oneSentence) > oneSentenceMaxChars {
		oneSentence = strings.TrimSpace(oneSentence[:oneSentenceMaxChars])
	}

	keywords := extractKeywords(words)
	outline := keywords
	if len(outline) > maxOutlineItems {
		outline = outline[:maxOutlineItems]
	}

	return SummaryResult{
		OneSentence: oneSentence,
		Summary:     summary,
		MainTopic:   truncateRunes(strings.TrimSpace(title), mainTopicMaxChars),
		Keywords:    keywords,
		Outline:     outline,
		Method:      MethodHeuristic,
	}
}

// extractKeywords collects distinct lowercased words longer than four
// characters from the opening of the transcript, alphabetically sorted.
func extractKeywords(words []string) []string {
	sample := words
	if len(sample) > keywordSampleWords {
		sample = sample[:keywordSampleWords]
	}

	seen := make(map[string]bool)
	for _, word := range sample {
		word = strings.ToLower(strings.Trim(word, ".,;:!?\"'"))
		if len([]rune(word)) <= 4 {
			continue
		}
		seen[word] = true
	}

	keywords := make([]string, 0, len(seen))
	for word := range seen {
		keywords = append(keywords, word)
	}
	sort.Strings(keywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

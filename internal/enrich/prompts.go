package enrich

import (
	"fmt"
	"strings"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

const summarySystemPrompt = `You summarize Korean news articles. Write a 3-4 sentence summary of the article in Korean. Respond with the summary only.`

const keywordsSystemPrompt = `You extract keywords from news articles. Return the 3 to 5 most important keywords of the article in Korean as a single comma-separated list (e.g. keyword1, keyword2, keyword3). Respond with the list only.`

var categorySystemPrompt = fmt.Sprintf(
	`You classify news articles. Classify the article into exactly one of these categories: %s. Respond with only the category name.`,
	strings.Join(model.Categories, ", "),
)

// maxContentRunes caps the article text sent per call.
const maxContentRunes = 6000

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ParseKeywords splits a comma-separated model response into trimmed,
// non-empty keywords in response order.
func ParseKeywords(text string) []string {
	var out []string
	for _, k := range strings.Split(text, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// NormalizeCategory maps a model response onto the closed category set.
// Anything outside the set becomes model.CategoryOther.
func NormalizeCategory(text string) string {
	label := strings.Trim(strings.TrimSpace(text), `"'.`)
	if model.IsCategory(label) {
		return label
	}
	return model.CategoryOther
}

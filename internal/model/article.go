package model

// Fallback values substituted when an enrichment call fails.
const (
	SummaryUnavailable = "Summary not available."
	KeywordUnavailable = "N/A"
	CategoryOther      = "기타"
	CategoryAll        = "All"
)

// Categories is the closed set of labels the classifier may return.
// Anything else is normalized to CategoryOther.
var Categories = []string{"기술", "경제", "정치", "비즈니스", "사회", "국제", "문화"}

// IsCategory reports whether label belongs to the closed category set.
func IsCategory(label string) bool {
	for _, c := range Categories {
		if c == label {
			return true
		}
	}
	return false
}

// Article is one crawled news item plus its AI-derived metadata.
type Article struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	URL      string   `json:"url"`
	Source   string   `json:"source,omitempty"` // host of the site it was crawled from
	Summary  string   `json:"summary,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Category string   `json:"category,omitempty"`
	Enriched bool     `json:"enriched"` // true once the AI provider was called
}

// HasKeyword reports whether kw is one of the article's keywords.
func (a Article) HasKeyword(kw string) bool {
	for _, k := range a.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// WithFallbacks returns a copy of a with every enrichment field set to its
// fallback value. Used when enrichment is skipped for a run. Enriched is
// left false so exports can tell placeholders from provider output.
func (a Article) WithFallbacks() Article {
	a.Summary = SummaryUnavailable
	a.Keywords = []string{KeywordUnavailable}
	a.Category = CategoryOther
	a.Enriched = false
	return a
}

// Result is the aggregated output of a run, consumed by presentation and
// export collaborators.
type Result struct {
	Articles   []Article `json:"articles"`
	Categories []string  `json:"categories"` // CategoryAll first, then sorted labels
}

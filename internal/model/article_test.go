package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, IsCategory(c), c)
	}
	assert.False(t, IsCategory("스포츠"))
	assert.False(t, IsCategory(CategoryOther))
	assert.False(t, IsCategory(""))
}

func TestArticle_HasKeyword(t *testing.T) {
	a := Article{Keywords: []string{"ai", "뉴스"}}
	assert.True(t, a.HasKeyword("뉴스"))
	assert.False(t, a.HasKeyword("경제"))
	assert.False(t, Article{}.HasKeyword("ai"))
}

func TestArticle_WithFallbacks(t *testing.T) {
	orig := Article{Title: "X", Content: "body", URL: "https://a.com/1"}
	got := orig.WithFallbacks()

	assert.Equal(t, SummaryUnavailable, got.Summary)
	assert.Equal(t, []string{KeywordUnavailable}, got.Keywords)
	assert.Equal(t, CategoryOther, got.Category)
	assert.False(t, got.Enriched)
	// Original is untouched.
	assert.Empty(t, orig.Summary)
	assert.False(t, orig.Enriched)

	// A previously enriched article reset to fallbacks is no longer marked.
	done := Article{Title: "Y", Summary: "s", Enriched: true}
	assert.False(t, done.WithFallbacks().Enriched)
}

func TestSiteConfig_Rules(t *testing.T) {
	s := SiteConfig{RootURL: "https://news.example.com/", LinkSelector: "a.item"}
	assert.Equal(t, DefaultTitleSelectors, s.TitleRules())
	assert.Equal(t, DefaultBodySelectors, s.BodyRules())
	assert.Equal(t, "news.example.com", s.Host())

	s.TitleSelectors = []string{"h2.headline"}
	s.BodySelectors = []string{"div#story"}
	assert.Equal(t, []string{"h2.headline"}, s.TitleRules())
	assert.Equal(t, []string{"div#story"}, s.BodyRules())
}

func TestRunStatus_Terminal(t *testing.T) {
	tests := []struct {
		status RunStatus
		want   bool
	}{
		{RunStatusQueued, false},
		{RunStatusCrawling, false},
		{RunStatusEnriching, false},
		{RunStatusComplete, true},
		{RunStatusFailed, true},
		{RunStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.Terminal())
		})
	}
}

package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

func sample() []model.Article {
	return []model.Article{
		{Title: "a", Category: "정치", Keywords: []string{"국회", "예산"}},
		{Title: "b", Category: "경제", Keywords: []string{"금리"}},
		{Title: "c", Category: "기타", Keywords: []string{"N/A"}},
		{Title: "d", Category: "경제", Keywords: []string{"예산", "금리"}},
	}
}

func titles(articles []model.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}

func TestAggregate(t *testing.T) {
	res := Aggregate(sample())

	assert.Equal(t, []string{"a", "b", "c", "d"}, titles(res.Articles))
	assert.Equal(t, []string{"All", "경제", "기타", "정치"}, res.Categories)
}

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil)
	assert.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
	assert.Equal(t, []string{model.CategoryAll}, res.Categories)
}

func TestFilterByCategory(t *testing.T) {
	assert.Equal(t, []string{"b", "d"}, titles(FilterByCategory(sample(), "경제")))
	assert.Len(t, FilterByCategory(sample(), model.CategoryAll), 4)
	assert.Len(t, FilterByCategory(sample(), ""), 4)
	assert.Empty(t, FilterByCategory(sample(), "문화"))
}

func TestFilterByKeyword(t *testing.T) {
	assert.Equal(t, []string{"a", "d"}, titles(FilterByKeyword(sample(), "예산")))
	assert.Len(t, FilterByKeyword(sample(), ""), 4)
	assert.Empty(t, FilterByKeyword(sample(), "예"))
}

func TestFilters_Compose(t *testing.T) {
	got := FilterByKeyword(FilterByCategory(sample(), "경제"), "예산")
	assert.Equal(t, []string{"d"}, titles(got))
}

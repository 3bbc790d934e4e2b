// Package aggregate builds the browsable result of a run and filters it.
package aggregate

import (
	"sort"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Aggregate returns the articles unchanged plus the category list used for
// filtering: model.CategoryAll first, then the sorted unique categories.
func Aggregate(articles []model.Article) model.Result {
	set := make(map[string]struct{})
	for _, a := range articles {
		if a.Category != "" {
			set[a.Category] = struct{}{}
		}
	}
	cats := make([]string, 0, len(set))
	for c := range set {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	if articles == nil {
		articles = []model.Article{}
	}
	return model.Result{
		Articles:   articles,
		Categories: append([]string{model.CategoryAll}, cats...),
	}
}

// FilterByCategory returns the articles in category. An empty category or
// model.CategoryAll returns all articles.
func FilterByCategory(articles []model.Article, category string) []model.Article {
	if category == "" || category == model.CategoryAll {
		return articles
	}
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// FilterByKeyword returns the articles whose keyword list contains keyword.
// An empty keyword returns all articles.
func FilterByKeyword(articles []model.Article, keyword string) []model.Article {
	if keyword == "" {
		return articles
	}
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.HasKeyword(keyword) {
			out = append(out, a)
		}
	}
	return out
}

// Package dedup records which article URLs a crawl run has already claimed
// and merges crawl output by title.
package dedup

import (
	"sync"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Tracker is a run-scoped set of processed URLs. It is safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{urls: make(map[string]struct{})}
}

// Seen reports whether url has been marked.
func (t *Tracker) Seen(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.urls[url]
	return ok
}

// Mark records url as processed.
func (t *Tracker) Mark(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.urls[url] = struct{}{}
}

// TryMark marks url and reports true if it was not already marked. Exactly
// one of any number of concurrent callers for the same url gets true.
func (t *Tracker) TryMark(url string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.urls[url]; ok {
		return false
	}
	t.urls[url] = struct{}{}
	return true
}

// Release drops url so a later claim can succeed. Crawlers call it when a
// claimed URL did not produce an article.
func (t *Tracker) Release(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.urls, url)
}

// Len returns the number of marked URLs.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.urls)
}

// ByTitle collapses articles sharing a title. The last article seen for a
// title wins; output keeps the position of each title's first appearance.
//
// Distinct stories that happen to share a headline across sites are merged.
// This is a known limitation of title keyed merging.
func ByTitle(articles []model.Article) []model.Article {
	index := make(map[string]int, len(articles))
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if i, ok := index[a.Title]; ok {
			out[i] = a
			continue
		}
		index[a.Title] = len(out)
		out = append(out, a)
	}
	return out
}

package crawler

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/dedup"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// Orchestrator crawls every configured site concurrently and merges the
// results by title.
type Orchestrator struct {
	site     *SiteCrawler
	maxSites int
	tracker  *dedup.Tracker
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTracker shares tracker across Crawl calls so URLs processed by an
// earlier run are skipped. By default each Crawl starts with a fresh tracker.
func WithTracker(tracker *dedup.Tracker) Option {
	return func(o *Orchestrator) { o.tracker = tracker }
}

// WithMaxSites bounds how many sites are crawled at once. 0 means no bound.
func WithMaxSites(n int) Option {
	return func(o *Orchestrator) { o.maxSites = n }
}

// NewOrchestrator creates an Orchestrator around a SiteCrawler.
func NewOrchestrator(site *SiteCrawler, opts ...Option) *Orchestrator {
	o := &Orchestrator{site: site}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Crawl runs one crawl over sites. Zero articles is not an error. When ctx
// is cancelled the partial output is discarded and ctx's error returned.
func (o *Orchestrator) Crawl(ctx context.Context, sites []model.SiteConfig) ([]model.Article, error) {
	tracker := o.tracker
	if tracker == nil {
		tracker = dedup.NewTracker()
	}

	perSite := make([][]model.Article, len(sites))

	g := new(errgroup.Group)
	if o.maxSites > 0 {
		g.SetLimit(o.maxSites)
	}
	for i, site := range sites {
		g.Go(func() error {
			perSite[i] = o.site.CrawlSite(ctx, site, tracker)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		// Sites that finished before the cancel still hold their claims.
		for _, arts := range perSite {
			for _, a := range arts {
				tracker.Release(a.URL)
			}
		}
		return nil, eris.Wrap(err, "crawler: crawl cancelled")
	}

	var all []model.Article
	for _, arts := range perSite {
		all = append(all, arts...)
	}
	merged := dedup.ByTitle(all)

	if len(merged) == 0 {
		zap.L().Warn("crawler: no articles collected", zap.Int("sites", len(sites)))
		return []model.Article{}, nil
	}

	zap.L().Info("crawler: crawl complete",
		zap.Int("sites", len(sites)),
		zap.Int("collected", len(all)),
		zap.Int("unique", len(merged)),
	)
	return merged, nil
}

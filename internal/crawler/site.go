// Package crawler fetches configured news sites and turns their article
// pages into model.Article values.
package crawler

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/dedup"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/extract"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/fetcher"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// DefaultMaxConcurrency bounds in-flight article fetches per site.
const DefaultMaxConcurrency = 16

// SiteCrawler crawls one site: root page, link extraction, then a bounded
// fan-out of article fetches.
type SiteCrawler struct {
	fetcher        fetcher.Fetcher
	maxConcurrency int
}

// NewSiteCrawler creates a SiteCrawler. maxConcurrency <= 0 uses
// DefaultMaxConcurrency.
func NewSiteCrawler(f fetcher.Fetcher, maxConcurrency int) *SiteCrawler {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &SiteCrawler{fetcher: f, maxConcurrency: maxConcurrency}
}

// CrawlSite returns the articles that could be fetched and parsed from site.
// Unreachable roots, empty link sets and failed articles yield fewer results,
// never an error. Each URL is claimed in tracker before it is fetched, so no
// URL is fetched twice while the tracker is shared. Claims that do not yield
// an article are released, and so is every claim when ctx is cancelled.
func (c *SiteCrawler) CrawlSite(ctx context.Context, site model.SiteConfig, tracker *dedup.Tracker) []model.Article {
	log := zap.L().With(zap.String("site", site.RootURL))

	root, err := c.fetchPage(ctx, site.RootURL)
	if err != nil {
		log.Warn("crawler: site unreachable", zap.Error(err))
		return nil
	}

	links, err := extract.ExtractLinks(root.Body, root.URL, site.LinkSelector)
	if err != nil {
		log.Warn("crawler: link extraction failed", zap.Error(err))
		return nil
	}
	if len(links) == 0 {
		log.Warn("crawler: no article links matched", zap.String("selector", site.LinkSelector))
		return nil
	}

	parser := extract.NewParser(site)
	source := site.Host()

	// One slot per link keeps output order stable regardless of completion order.
	slots := make([]*model.Article, len(links))

	g := new(errgroup.Group)
	g.SetLimit(c.maxConcurrency)

	claimed := 0
	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		if !tracker.TryMark(link) {
			continue
		}
		claimed++
		g.Go(func() error {
			page, err := c.fetchPage(ctx, link)
			if err != nil {
				tracker.Release(link)
				log.Debug("crawler: article fetch failed", zap.String("url", link), zap.Error(err))
				return nil
			}
			art, ok := parser.Parse(page.Body, page.URL)
			if !ok {
				tracker.Release(link)
				return nil
			}
			art.Source = source
			slots[i] = art
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		releaseArticles(tracker, slots)
		log.Info("crawler: site cancelled", zap.Int("claimed", claimed))
		return nil
	}

	articles := make([]model.Article, 0, claimed)
	for _, a := range slots {
		if a != nil {
			articles = append(articles, *a)
		}
	}

	log.Info("crawler: site complete",
		zap.Int("links", len(links)),
		zap.Int("claimed", claimed),
		zap.Int("articles", len(articles)),
	)
	return articles
}

func releaseArticles(tracker *dedup.Tracker, articles []*model.Article) {
	for _, a := range articles {
		if a != nil {
			tracker.Release(a.URL)
		}
	}
}

func (c *SiteCrawler) fetchPage(ctx context.Context, url string) (model.RawPage, error) {
	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return model.RawPage{}, err
	}
	return model.RawPage{URL: url, Body: body}, nil
}

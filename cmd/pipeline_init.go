package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/crawler"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/enrich"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/fetcher"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/pipeline"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/store"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/pkg/firecrawl"
)

// pipelineEnv holds the store and the pipeline needed by the crawl and
// serve commands. Pipeline is nil when serve starts without an AI key.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Runner returns the pipeline as a runner, or a nil interface when runs are
// disabled.
func (pe *pipelineEnv) Runner() runner {
	if pe.Pipeline == nil {
		return nil
	}
	return pe.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// newFetcher builds the HTTP fetcher from crawl settings, wrapped with the
// Firecrawl fallback when a key is configured.
func newFetcher(c config.CrawlConfig, fc config.FirecrawlConfig) fetcher.Fetcher {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    c.UserAgent,
		Timeout:      time.Duration(c.FetchTimeoutSecs) * time.Second,
		MaxBodyBytes: c.MaxBodyBytes,
		RateLimit:    rate.Limit(c.RateLimit),
		RateBurst:    c.RateBurst,
	})
	if fc.Key == "" {
		return f
	}

	var opts []firecrawl.Option
	if fc.BaseURL != "" {
		opts = append(opts, firecrawl.WithBaseURL(fc.BaseURL))
	}
	zap.L().Info("firecrawl fallback enabled for blocked pages")
	return fetcher.NewChain(f, firecrawl.NewClient(fc.Key, opts...), fc.WaitForMs)
}

// newOrchestrator builds the multi-site crawler.
func newOrchestrator(f fetcher.Fetcher, c config.CrawlConfig) *crawler.Orchestrator {
	return crawler.NewOrchestrator(
		crawler.NewSiteCrawler(f, c.MaxConcurrency),
		crawler.WithMaxSites(c.MaxSitesConcurrency),
	)
}

// initPipeline sets up the store, the crawler, and (unless skipEnrich) the
// enricher. A missing API key is reported here, before any work starts: it
// is an error for crawl, and for serve it disables starting runs while the
// read routes keep working. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string, skipEnrich bool) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var enricher pipeline.Enricher
	runsEnabled := true
	if !skipEnrich {
		e, err := enrich.New(cfg.Anthropic, cfg.Enrich)
		switch {
		case errors.Is(err, enrich.ErrNotConfigured) && mode == "serve":
			zap.L().Warn("enrichment not configured, starting runs is disabled (use --skip-enrich to crawl without AI)",
				zap.Error(err),
			)
			runsEnabled = false
		case err != nil:
			return nil, err
		default:
			enricher = e
		}
	} else {
		zap.L().Info("enrichment disabled, articles get placeholder metadata")
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	env := &pipelineEnv{Store: st}
	if runsEnabled {
		orch := newOrchestrator(newFetcher(cfg.Crawl, cfg.Firecrawl), cfg.Crawl)
		env.Pipeline = pipeline.New(st, orch, enricher)
	}

	zap.L().Info("pipeline ready",
		zap.String("store", cfg.Store.Driver),
		zap.Int("sites", len(cfg.Sites)),
		zap.Bool("enrich", enricher != nil),
		zap.Bool("runs", runsEnabled),
	)

	return env, nil
}

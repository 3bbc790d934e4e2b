// Package pipeline runs the crawl, enrich, and aggregate phases for a set of
// news sites and records the run in the store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/aggregate"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/enrich"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/store"
)

// Phase names recorded in the store.
const (
	PhaseCrawl     = "crawl"
	PhaseEnrich    = "enrich"
	PhaseAggregate = "aggregate"
)

// Crawler collects unique articles from the given sites.
type Crawler interface {
	Crawl(ctx context.Context, sites []model.SiteConfig) ([]model.Article, error)
}

// Enricher fills summary, keywords, and category for each article.
type Enricher interface {
	EnrichAll(ctx context.Context, articles []model.Article, progress enrich.ProgressFunc) ([]model.Article, error)
}

// Options tunes a single run.
type Options struct {
	// SkipEnrich fills sentinel values instead of calling the AI provider.
	SkipEnrich bool
	// Progress receives human-readable status lines such as "Analyzing 3/10".
	Progress func(msg string)
}

func (o Options) report(msg string) {
	if o.Progress != nil {
		o.Progress(msg)
	}
}

// Pipeline wires the crawler, the enricher, and the store.
type Pipeline struct {
	store    store.Store
	crawler  Crawler
	enricher Enricher
}

// New creates a Pipeline. A nil enricher makes every run behave as if
// SkipEnrich were set.
func New(st store.Store, c Crawler, e Enricher) *Pipeline {
	return &Pipeline{store: st, crawler: c, enricher: e}
}

// Run executes one crawl-and-enrich run. On success the returned run is
// complete and carries the aggregated result. On cancellation the run is
// marked cancelled and no result is stored.
func (p *Pipeline) Run(ctx context.Context, sites []model.SiteConfig, opts Options) (*model.Run, error) {
	run, err := p.Start(ctx, sites)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, run, opts)
}

// Start records a queued run without executing it, so callers can hand out
// the run ID before the work begins.
func (p *Pipeline) Start(ctx context.Context, sites []model.SiteConfig) (*model.Run, error) {
	run, err := p.store.CreateRun(ctx, sites)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	return run, nil
}

// Execute runs the crawl, enrich, and aggregate phases for a run created by
// Start.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run, opts Options) (*model.Run, error) {
	// Status writes must land even after ctx is cancelled.
	persistCtx := context.WithoutCancel(ctx)
	sites := run.Sites

	log := zap.L().With(zap.String("run_id", run.ID), zap.Int("sites", len(sites)))
	log.Info("pipeline: starting run")

	setStatus := func(status model.RunStatus) {
		run.Status = status
		if statusErr := p.store.UpdateRunStatus(persistCtx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	trackPhase := func(name string, fn func() (int, model.PhaseStatus, error)) error {
		start := time.Now()
		items, status, fnErr := fn()
		phase := model.PhaseResult{
			Name:       name,
			Status:     status,
			Items:      items,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if fnErr != nil {
			phase.Status = model.PhaseStatusFailed
			phase.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", phase.DurationMs),
				zap.Error(fnErr),
			)
		} else {
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.String("status", string(phase.Status)),
				zap.Int("items", items),
				zap.Int64("duration_ms", phase.DurationMs),
			)
		}
		if recErr := p.store.RecordPhase(persistCtx, run.ID, phase); recErr != nil {
			log.Warn("pipeline: failed to record phase", zap.String("phase", name), zap.Error(recErr))
		}
		run.Phases = append(run.Phases, phase)
		return fnErr
	}

	// Crawl
	setStatus(model.RunStatusCrawling)
	opts.report("Crawling")

	var articles []model.Article
	err := trackPhase(PhaseCrawl, func() (int, model.PhaseStatus, error) {
		var crawlErr error
		articles, crawlErr = p.crawler.Crawl(ctx, sites)
		return len(articles), model.PhaseStatusComplete, crawlErr
	})
	if err != nil {
		return p.abort(persistCtx, run, err)
	}

	// Enrich
	setStatus(model.RunStatusEnriching)
	err = trackPhase(PhaseEnrich, func() (int, model.PhaseStatus, error) {
		if opts.SkipEnrich || p.enricher == nil {
			for i := range articles {
				articles[i] = articles[i].WithFallbacks()
			}
			return len(articles), model.PhaseStatusSkipped, nil
		}
		enriched, enrichErr := p.enricher.EnrichAll(ctx, articles, func(done, total int) {
			opts.report(fmt.Sprintf("Analyzing %d/%d", done, total))
		})
		if enrichErr != nil {
			return 0, model.PhaseStatusFailed, enrichErr
		}
		articles = enriched
		return len(articles), model.PhaseStatusComplete, nil
	})
	if err != nil {
		return p.abort(persistCtx, run, err)
	}

	// Aggregate
	var result model.Result
	_ = trackPhase(PhaseAggregate, func() (int, model.PhaseStatus, error) {
		result = aggregate.Aggregate(articles)
		return len(result.Categories), model.PhaseStatusComplete, nil
	})

	if err := ctx.Err(); err != nil {
		return p.abort(persistCtx, run, eris.Wrap(err, "pipeline: run cancelled"))
	}

	if err := p.store.SaveResult(persistCtx, run.ID, &result); err != nil {
		return p.abort(persistCtx, run, eris.Wrap(err, "pipeline: save result"))
	}
	run.Status = model.RunStatusComplete
	run.Result = &result
	run.UpdatedAt = time.Now().UTC()

	opts.report(fmt.Sprintf("Done: %d articles", len(result.Articles)))
	log.Info("pipeline: run complete",
		zap.Int("articles", len(result.Articles)),
		zap.Int("categories", len(result.Categories)-1),
	)
	return run, nil
}

// abort records a cancelled or failed run and returns it with the cause.
func (p *Pipeline) abort(ctx context.Context, run *model.Run, cause error) (*model.Run, error) {
	run.Error = cause.Error()
	run.UpdatedAt = time.Now().UTC()

	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		run.Status = model.RunStatusCancelled
		if err := p.store.UpdateRunStatus(ctx, run.ID, model.RunStatusCancelled); err != nil {
			zap.L().Warn("pipeline: failed to mark run cancelled", zap.String("run_id", run.ID), zap.Error(err))
		}
		zap.L().Warn("pipeline: run cancelled", zap.String("run_id", run.ID), zap.Error(cause))
		return run, cause
	}

	run.Status = model.RunStatusFailed
	if err := p.store.FailRun(ctx, run.ID, cause.Error()); err != nil {
		zap.L().Warn("pipeline: failed to mark run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
	return run, eris.Wrap(cause, "pipeline: run failed")
}

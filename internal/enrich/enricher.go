// Package enrich adds an AI summary, keywords and a category to crawled
// articles. Every call falls back to a fixed sentinel on failure.
package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/config"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/resilience"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/pkg/anthropic"
)

// ErrNotConfigured is returned by New when no API key is configured.
var ErrNotConfigured = eris.New("enrich: AI provider not configured (set anthropic.key or EIDOS_ANTHROPIC_KEY)")

// ProgressFunc receives the number of enriched articles so far and the total.
type ProgressFunc func(done, total int)

// Enricher runs the three enrichment calls against an Anthropic client.
type Enricher struct {
	client         anthropic.Client
	model          string
	maxTokens      int64
	maxConcurrency int
	timeout        time.Duration
	retry          resilience.RetryConfig
	breaker        *resilience.CircuitBreaker
}

// New builds an Enricher backed by the Anthropic SDK. It returns
// ErrNotConfigured when the key is missing so callers can report it once
// at startup.
func New(aiCfg config.AnthropicConfig, cfg config.EnrichConfig) (*Enricher, error) {
	if strings.TrimSpace(aiCfg.Key) == "" {
		return nil, ErrNotConfigured
	}
	return NewWithClient(anthropic.NewClient(aiCfg.Key), aiCfg, cfg), nil
}

// NewWithClient builds an Enricher around an existing client.
func NewWithClient(client anthropic.Client, aiCfg config.AnthropicConfig, cfg config.EnrichConfig) *Enricher {
	e := &Enricher{
		client:         client,
		model:          aiCfg.Model,
		maxTokens:      aiCfg.MaxTokens,
		maxConcurrency: cfg.MaxConcurrency,
		timeout:        time.Duration(cfg.TimeoutSecs) * time.Second,
	}
	if e.maxTokens <= 0 {
		e.maxTokens = 512
	}
	if e.maxConcurrency <= 0 {
		e.maxConcurrency = 1
	}
	if e.timeout <= 0 {
		e.timeout = 30 * time.Second
	}

	e.retry = resilience.DefaultRetryConfig()
	if cfg.MaxAttempts > 0 {
		e.retry.MaxAttempts = cfg.MaxAttempts
	}
	e.retry.ShouldRetry = isRetryable

	e.breaker = resilience.NewCircuitBreaker(resilience.BreakerConfig{
		Name:             "anthropic",
		FailureThreshold: cfg.BreakerThreshold,
		ResetTimeout:     time.Duration(cfg.BreakerResetSecs) * time.Second,
	})
	return e
}

// isRetryable retries API errors with a transient status and transport
// level failures. Other API errors (bad request, auth) fail immediately.
func isRetryable(err error) bool {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.StatusCode)
	}
	return resilience.IsTransient(err)
}

// markTransient tags API errors carrying a retryable status as
// resilience.TransientError, keeping the status code on the error.
func markTransient(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
		return resilience.NewTransientError(err, apiErr.StatusCode)
	}
	return err
}

// complete sends one instruction + article text and returns the trimmed
// response text. Each attempt carries its own timeout.
func (e *Enricher) complete(ctx context.Context, op, system, content string) (string, error) {
	temp := 0.0
	req := anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      anthropic.BuildCachedSystemBlocks(system, "5m"),
		Messages:    []anthropic.Message{{Role: "user", Content: truncateRunes(content, maxContentRunes)}},
		Temperature: &temp,
	}

	retry := e.retry
	retry.OnRetry = resilience.RetryLogger("enrich_" + op)

	resp, err := resilience.ExecuteVal(ctx, e.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			resp, err := e.client.CreateMessage(callCtx, req)
			return resp, markTransient(err)
		})
	})
	if err != nil {
		return "", eris.Wrapf(err, "enrich: %s", op)
	}

	resp.Usage.LogCost(e.model, "enrich_"+op)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.Errorf("enrich: %s: empty response", op)
	}
	return text, nil
}

// Summarize returns a 3-4 sentence Korean summary, or
// model.SummaryUnavailable on failure.
func (e *Enricher) Summarize(ctx context.Context, content string) string {
	text, err := e.complete(ctx, "summary", summarySystemPrompt, content)
	if err != nil {
		zap.L().Warn("enrich: summary failed", zap.Error(err))
		return model.SummaryUnavailable
	}
	return text
}

// ExtractKeywords returns 3-5 keywords, or [model.KeywordUnavailable] on
// failure.
func (e *Enricher) ExtractKeywords(ctx context.Context, content string) []string {
	text, err := e.complete(ctx, "keywords", keywordsSystemPrompt, content)
	if err != nil {
		zap.L().Warn("enrich: keyword extraction failed", zap.Error(err))
		return []string{model.KeywordUnavailable}
	}
	keywords := ParseKeywords(text)
	if len(keywords) == 0 {
		return []string{model.KeywordUnavailable}
	}
	return keywords
}

// ClassifyCategory returns one label from model.Categories, or
// model.CategoryOther when the response is outside the set or the call fails.
func (e *Enricher) ClassifyCategory(ctx context.Context, content string) string {
	text, err := e.complete(ctx, "category", categorySystemPrompt, content)
	if err != nil {
		zap.L().Warn("enrich: classification failed", zap.Error(err))
		return model.CategoryOther
	}
	return NormalizeCategory(text)
}

// Enrich returns a copy of a with summary, keywords and category filled.
// The three calls run in order and fail independently. Articles without
// content get the fallback values without calling the provider.
func (e *Enricher) Enrich(ctx context.Context, a model.Article) model.Article {
	if strings.TrimSpace(a.Content) == "" {
		zap.L().Debug("enrich: empty content, using fallbacks", zap.String("url", a.URL))
		return a.WithFallbacks()
	}

	a.Summary = e.Summarize(ctx, a.Content)
	a.Keywords = e.ExtractKeywords(ctx, a.Content)
	a.Category = e.ClassifyCategory(ctx, a.Content)
	a.Enriched = true
	return a
}

// EnrichAll enriches every article with at most maxConcurrency articles in
// flight. Output order matches input order. If ctx is cancelled no partial
// result is returned.
func (e *Enricher) EnrichAll(ctx context.Context, articles []model.Article, progress ProgressFunc) ([]model.Article, error) {
	out := make([]model.Article, len(articles))
	total := len(articles)

	var (
		done       atomic.Int64
		progressMu sync.Mutex
	)

	g := new(errgroup.Group)
	g.SetLimit(e.maxConcurrency)
	for i, a := range articles {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out[i] = e.Enrich(ctx, a)
			if progress != nil {
				progressMu.Lock()
				progress(int(done.Add(1)), total)
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "enrich: cancelled")
	}

	zap.L().Info("enrich: complete", zap.Int("articles", total))
	return out, nil
}

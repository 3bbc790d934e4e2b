package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/enrich"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/store"
)

// --- Crawler Mock ---

type mockCrawler struct {
	mock.Mock
}

func (m *mockCrawler) Crawl(ctx context.Context, sites []model.SiteConfig) ([]model.Article, error) {
	args := m.Called(ctx, sites)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

// --- Enricher Mock ---

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) EnrichAll(ctx context.Context, articles []model.Article, progress enrich.ProgressFunc) ([]model.Article, error) {
	args := m.Called(ctx, articles, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, sites []model.SiteConfig) (*model.Run, error) {
	args := m.Called(ctx, sites)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	args := m.Called(ctx, runID, errMsg)
	return args.Error(0)
}

func (m *mockStore) SaveResult(ctx context.Context, runID string, result *model.Result) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) RecordPhase(ctx context.Context, runID string, phase model.PhaseResult) error {
	args := m.Called(ctx, runID, phase)
	return args.Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

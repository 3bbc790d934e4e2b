// Package store persists crawl-and-enrich runs and their results.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kaausia45-jpg/EIDOS-NewsCrawler/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the news pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, sites []model.SiteConfig) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	SaveResult(ctx context.Context, runID string, result *model.Result) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	RecordPhase(ctx context.Context, runID string, phase model.PhaseResult) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("not found")

const defaultListLimit = 100

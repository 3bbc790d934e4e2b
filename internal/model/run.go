package model

import "time"

// RunStatus represents the current state of a crawl-and-enrich run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusCrawling  RunStatus = "crawling"
	RunStatusEnriching RunStatus = "enriching"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusComplete, RunStatusFailed, RunStatusCancelled:
		return true
	default:
		return false
	}
}

// Run represents a single crawl-and-enrich run over a set of sites.
type Run struct {
	ID        string        `json:"id"`
	Sites     []SiteConfig  `json:"sites"`
	Status    RunStatus     `json:"status"`
	Result    *Result       `json:"result,omitempty"`
	Phases    []PhaseResult `json:"phases,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// PhaseStatus represents the outcome of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult records timing and item counts for one pipeline phase.
type PhaseResult struct {
	Name       string      `json:"name"`
	Status     PhaseStatus `json:"status"`
	Items      int         `json:"items"`
	DurationMs int64       `json:"duration_ms"`
	Error      string      `json:"error,omitempty"`
}

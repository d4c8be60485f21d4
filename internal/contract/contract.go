// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/eegstudy/schema"
)

// Diagnostics receives recoverable problems found while reading results.
// This allows the aggregation core to be tested without scraping stderr.
type Diagnostics interface {
	Warn(msg string, err error)
}

// HistoryManager defines the interface for managing the run history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for tracking aggregation runs and their statistics.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, resultsRoot, metricFile string, configParams map[string]any) (int64, error)

	// RecordScopeStats stores per-metric summaries under a scope (a paradigm or overall)
	RecordScopeStats(runID int64, scope string, stats schema.OverallStats) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, paradigms, artifactsLoaded int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllScopeStats returns every recorded statistic ordered by run, scope and metric
	GetAllScopeStats() ([]schema.ScopeStatRecord, error)

	// Close closes the underlying connection
	Close() error
}

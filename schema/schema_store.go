package schema

import "time"

// OverallScope labels pooled statistics. Paradigm scopes use the paradigm name.
const OverallScope = "overall"

// RunRecord represents a row from the eegstudy_runs table.
type RunRecord struct {
	RunID           int64
	StartTime       time.Time
	EndTime         *time.Time
	RunDurationMs   *int32
	ResultsRoot     string
	MetricFile      string
	Paradigms       int32
	ArtifactsLoaded int32
	ConfigParams    *string
}

// ScopeStatRecord represents a row from the eegstudy_scope_stats table.
type ScopeStatRecord struct {
	RunID    int64
	Scope    string
	Metric   string
	Mean     float64
	Std      float64
	Replicas int32
}

package core

import (
	"fmt"
	"time"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
)

// recordRun stores the run and its per-scope statistics when a history
// store is configured. Failures are reported and never fail the run.
func recordRun(mgr contract.HistoryManager, cfg *contract.Config, result schema.StudyResult, start, end time.Time) {
	if mgr == nil {
		return
	}
	store := mgr.GetHistoryStore()
	if store == nil {
		return
	}

	paradigms := make([]string, len(result.Paradigms))
	for i, pr := range result.Paradigms {
		paradigms[i] = string(pr.Paradigm)
	}
	configParams := map[string]any{
		"metrics":   result.Metrics,
		"paradigms": paradigms,
		"precision": cfg.Precision,
		"output":    string(cfg.Output),
	}
	runID, err := store.BeginRun(start, result.ResultsRoot, result.MetricFile, configParams)
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	if runID <= 0 {
		return
	}

	for _, pr := range result.Paradigms {
		stats, err := ScopeStats(pr, result.Metrics)
		if err != nil {
			contract.LogWarn(fmt.Sprintf("Cannot summarize %s for history", pr.Paradigm), err)
			continue
		}
		if err := store.RecordScopeStats(runID, string(pr.Paradigm), stats); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record %s statistics", pr.Paradigm), err)
		}
	}
	if err := store.RecordScopeStats(runID, schema.OverallScope, result.Overall); err != nil {
		contract.LogWarn("Failed to record overall statistics", err)
	}
	if err := store.EndRun(runID, end, len(result.Paradigms), result.Loaded()); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}

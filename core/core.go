// Package core has core logic for parsing, aggregating and planning
// cross-validation results.
package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/huangsam/eegstudy/core/folds"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/internal/outwriter"
	"github.com/huangsam/eegstudy/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error

// ExecuteAggregate aggregates every paradigm under the results root, records
// the run when history is enabled and prints the result.
// It serves as the main entry point for the 'aggregate' command.
func ExecuteAggregate(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) error {
	result, duration, err := GetStudyResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteStudyResult(result, cfg, duration)
}

// GetStudyResults aggregates the results root of cfg and records the run
// when history is enabled. It is shared by the CLI and the MCP server.
func GetStudyResults(ctx context.Context, cfg *contract.Config, mgr contract.HistoryManager) (schema.StudyResult, time.Duration, error) {
	start := time.Now()
	result, err := AggregateStudy(ctx, cfg.RootPath, studyOptions(cfg))
	if err != nil {
		return schema.StudyResult{}, 0, err
	}
	duration := time.Since(start)
	recordRun(mgr, cfg, result, start, start.Add(duration))
	return result, duration, nil
}

// ExecuteParadigm aggregates a single paradigm directory and prints it as a
// one-paradigm study.
// It serves as the main entry point for the 'paradigm' command.
func ExecuteParadigm(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	start := time.Now()
	result, err := ParadigmStudy(ctx, cfg.RootPath, studyOptions(cfg))
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteStudyResult(result, cfg, duration)
}

// ExecuteFolds plans the folds of every configured paradigm and prints them.
// It serves as the main entry point for the 'folds' command.
func ExecuteFolds(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	start := time.Now()
	plans, err := GetFoldPlans(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteFoldPlans(plans, cfg, duration)
}

// ExecuteScaffold writes a synthetic results tree for every configured paradigm.
// It serves as the main entry point for the 'scaffold' command.
func ExecuteScaffold(ctx context.Context, cfg *contract.Config, _ contract.HistoryManager) error {
	start := time.Now()
	plans, err := GetFoldPlans(ctx, cfg)
	if err != nil {
		return err
	}
	written, err := folds.Scaffold(ctx, cfg.RootPath, plans, folds.ScaffoldOptions{
		Metrics:    cfg.Metrics,
		MetricFile: cfg.MetricFile,
		Workers:    cfg.Workers,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("scaffold failed after %d artifacts: %w", written, err)
	}
	if !cfg.Quiet {
		fmt.Printf("Wrote %d %s artifacts under %s in %v with %d workers\n",
			written, cfg.MetricFile, cfg.RootPath, time.Since(start), cfg.Workers)
	}
	return nil
}

// ParadigmStudy aggregates the paradigm directory dir, named after its
// paradigm, and wraps it as a study whose pooled series is the paradigm's own.
func ParadigmStudy(ctx context.Context, dir string, opts StudyOptions) (schema.StudyResult, error) {
	p, err := ParadigmFromDir(dir)
	if err != nil {
		return schema.StudyResult{}, err
	}
	pr, err := AggregateParadigm(ctx, p, dir, opts)
	if err != nil {
		return schema.StudyResult{}, err
	}

	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = schema.DefaultMetrics
	}
	overall, err := ScopeStats(pr, metrics)
	if err != nil {
		return schema.StudyResult{}, err
	}
	metricFile := opts.MetricFile
	if metricFile == "" {
		metricFile = schema.TestMetricFile
	}
	return schema.StudyResult{
		ResultsRoot: filepath.Dir(filepath.Clean(dir)),
		MetricFile:  metricFile,
		Metrics:     metrics,
		Paradigms:   []schema.ParadigmResult{pr},
		Pooled:      pr.Aggregated,
		Overall:     overall,
	}, nil
}

// PlanFolds plans the folds of each paradigm in order.
func PlanFolds(ctx context.Context, paradigms []schema.Paradigm, subjects, sessions []string, opts folds.Options) ([]schema.FoldPlan, error) {
	var plans []schema.FoldPlan
	for _, p := range paradigms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ps, err := folds.Plan(p, subjects, sessions, opts)
		if err != nil {
			return nil, err
		}
		plans = append(plans, ps...)
	}
	return plans, nil
}

// GetFoldPlans plans the folds of every paradigm configured in cfg.
func GetFoldPlans(ctx context.Context, cfg *contract.Config) ([]schema.FoldPlan, error) {
	return PlanFolds(ctx, cfg.Paradigms, cfg.Subjects, cfg.Sessions, FoldOptions(cfg))
}

// FoldOptions extracts the partitioning options of cfg.
func FoldOptions(cfg *contract.Config) folds.Options {
	return folds.Options{
		Seed:       cfg.Seed,
		ValidRatio: cfg.ValidRatio,
		KFolds:     cfg.KFolds,
		Repeats:    cfg.Repeats,
	}
}

func studyOptions(cfg *contract.Config) StudyOptions {
	return StudyOptions{Metrics: cfg.Metrics, MetricFile: cfg.MetricFile}
}

// Package agg reduces the raw statistics of a paradigm into the
// per-metric series that are pooled across paradigms.
package agg

import (
	"github.com/huangsam/eegstudy/core/algo"
	"github.com/huangsam/eegstudy/schema"
)

// Aggregator reduces ParadigmStats into AggregatedStats.
type Aggregator func(p schema.Paradigm, stats schema.ParadigmStats, metrics []string) (schema.AggregatedStats, error)

// For returns the aggregator matching a stats shape.
func For(kind schema.StatsKind) Aggregator {
	if kind == schema.NestedStats {
		return Nested
	}
	return Flat
}

// Nested averages each group's sequence per metric; the group means, in
// lexicographic group order, become the aggregated series.
func Nested(p schema.Paradigm, stats schema.ParadigmStats, metrics []string) (schema.AggregatedStats, error) {
	if stats.Empty() {
		return nil, noFolds(p)
	}
	out := make(schema.AggregatedStats, len(metrics))
	for _, group := range stats.Groups() {
		for _, metric := range metrics {
			mean, err := algo.Mean(stats.Nested[group][metric])
			if err != nil {
				return nil, &schema.NoDataError{Paradigm: p, Group: group, Metric: metric, Reason: err.Error()}
			}
			out[metric] = append(out[metric], mean)
		}
	}
	return out, nil
}

// Flat reduces each metric's per-fold sequence to its mean, wrapped in a
// single-entry series. Flat paradigms therefore count once in the pool.
func Flat(p schema.Paradigm, stats schema.ParadigmStats, metrics []string) (schema.AggregatedStats, error) {
	if stats.Empty() {
		return nil, noFolds(p)
	}
	out := make(schema.AggregatedStats, len(metrics))
	for _, metric := range metrics {
		mean, err := algo.Mean(stats.Flat[metric])
		if err != nil {
			return nil, &schema.NoDataError{Paradigm: p, Metric: metric, Reason: err.Error()}
		}
		out[metric] = []float64{mean}
	}
	return out, nil
}

// Breakdown summarizes every group of a paradigm: one entry per group for
// nested stats, a single unnamed entry for flat stats.
func Breakdown(p schema.Paradigm, stats schema.ParadigmStats, metrics []string) ([]schema.GroupSummary, error) {
	if stats.Kind != schema.NestedStats {
		summaries, err := algo.SummarizeAll(stats.Flat, metrics, p, "")
		if err != nil {
			return nil, err
		}
		return []schema.GroupSummary{{Metrics: summaries}}, nil
	}

	groups := stats.Groups()
	out := make([]schema.GroupSummary, 0, len(groups))
	for _, group := range groups {
		summaries, err := algo.SummarizeAll(stats.Nested[group], metrics, p, group)
		if err != nil {
			return nil, err
		}
		out = append(out, schema.GroupSummary{Group: group, Metrics: summaries})
	}
	return out, nil
}

func noFolds(p schema.Paradigm) error {
	return &schema.NoDataError{Paradigm: p, Reason: "no fold contributed metrics"}
}

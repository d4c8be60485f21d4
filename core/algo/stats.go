// Package algo has the numeric reductions shared by the aggregators.
package algo

import (
	"errors"

	"github.com/huangsam/eegstudy/schema"
	"gonum.org/v1/gonum/stat"
)

// ErrNoValues is returned when a reduction is asked for over an empty sequence.
var ErrNoValues = errors.New("empty sequence")

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoValues
	}
	return stat.Mean(values, nil), nil
}

// Summarize returns the mean and population standard deviation of values.
// A single value has a standard deviation of zero.
func Summarize(values []float64) (schema.MetricSummary, error) {
	if len(values) == 0 {
		return schema.MetricSummary{}, ErrNoValues
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return schema.MetricSummary{Mean: mean, Std: std, N: len(values)}, nil
}

// SummarizeAll summarizes each metric of stats in the given order. The first
// empty sequence fails the whole call with a *schema.NoDataError.
func SummarizeAll(stats schema.AggregatedStats, metrics []string, paradigm schema.Paradigm, group string) (map[string]schema.MetricSummary, error) {
	out := make(map[string]schema.MetricSummary, len(metrics))
	for _, metric := range metrics {
		summary, err := Summarize(stats[metric])
		if err != nil {
			return nil, &schema.NoDataError{Paradigm: paradigm, Group: group, Metric: metric, Reason: err.Error()}
		}
		out[metric] = summary
	}
	return out, nil
}

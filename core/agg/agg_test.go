package agg

import (
	"errors"
	"testing"

	"github.com/huangsam/eegstudy/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedFixture() schema.ParadigmStats {
	stats := schema.NewNestedStats()
	for _, group := range []string{"fold-1/session_T", "fold-0/session_E", "fold-0/session_T", "fold-1/session_E"} {
		stats.Nested[group] = map[string][]float64{
			"acc":  {0.7, 0.8, 0.9},
			"loss": {0.3, 0.2, 0.1},
		}
	}
	return stats
}

func TestNested(t *testing.T) {
	got, err := Nested(schema.WithinSession, nestedFixture(), []string{"acc", "loss"})
	require.NoError(t, err)

	require.Len(t, got["acc"], 4)
	require.Len(t, got["loss"], 4)
	for i := range 4 {
		assert.InDelta(t, 0.8, got["acc"][i], 1e-12)
		assert.InDelta(t, 0.2, got["loss"][i], 1e-12)
	}
}

func TestNestedFollowsGroupOrder(t *testing.T) {
	stats := schema.NewNestedStats()
	stats.Nested["session_T"] = map[string][]float64{"acc": {0.9}}
	stats.Nested["session_E"] = map[string][]float64{"acc": {0.5, 0.7}}

	got, err := Nested(schema.LeaveOneSessionOut, stats, []string{"acc"})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.6, 0.9}, got["acc"], 1e-12)
}

func TestFlat(t *testing.T) {
	stats := schema.NewFlatStats()
	stats.Flat["acc"] = []float64{0.6, 0.7, 0.8, 0.9}
	stats.Flat["f1"] = []float64{0.5, 0.5, 0.5, 0.5}

	got, err := Flat(schema.LeaveOneSubjectOut, stats, []string{"acc", "f1"})
	require.NoError(t, err)
	require.Len(t, got["acc"], 1)
	assert.InDelta(t, 0.75, got["acc"][0], 1e-12)
	assert.Equal(t, []float64{0.5}, got["f1"])
}

func TestReplicateCounts(t *testing.T) {
	tests := []struct {
		name     string
		paradigm schema.Paradigm
		stats    schema.ParadigmStats
		expected int
	}{
		{name: "nested counts groups", paradigm: schema.WithinSession, stats: nestedFixture(), expected: 4},
		{
			name:     "flat counts once",
			paradigm: schema.CrossSession,
			stats: schema.ParadigmStats{Kind: schema.FlatStats, Flat: map[string][]float64{
				"acc": {0.1, 0.2, 0.3, 0.4, 0.5}, "loss": {1, 1, 1, 1, 1},
			}},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := For(tt.stats.Kind)(tt.paradigm, tt.stats, []string{"acc"})
			require.NoError(t, err)
			assert.Len(t, got["acc"], tt.expected)
		})
	}
}

func TestNoData(t *testing.T) {
	tests := []struct {
		name     string
		paradigm schema.Paradigm
		stats    schema.ParadigmStats
		metrics  []string
		group    string
		metric   string
	}{
		{name: "nested without folds", paradigm: schema.WithinSession, stats: schema.NewNestedStats(), metrics: []string{"acc"}},
		{name: "flat without folds", paradigm: schema.LeaveOneSubjectOut, stats: schema.NewFlatStats(), metrics: []string{"acc"}},
		{
			name:     "nested metric missing from a group",
			paradigm: schema.LeaveOneSessionOut,
			stats: schema.ParadigmStats{Kind: schema.NestedStats, Nested: map[string]map[string][]float64{
				"session_E": {"acc": {0.5}},
			}},
			metrics: []string{"acc", "f1"},
			group:   "session_E",
			metric:  "f1",
		},
		{
			name:     "flat metric never collected",
			paradigm: schema.CrossSession,
			stats:    schema.ParadigmStats{Kind: schema.FlatStats, Flat: map[string][]float64{"acc": {0.5}}},
			metrics:  []string{"loss"},
			metric:   "loss",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := For(tt.stats.Kind)(tt.paradigm, tt.stats, tt.metrics)
			assert.Nil(t, got)

			var noData *schema.NoDataError
			require.True(t, errors.As(err, &noData))
			assert.Equal(t, tt.paradigm, noData.Paradigm)
			assert.Equal(t, tt.group, noData.Group)
			assert.Equal(t, tt.metric, noData.Metric)
		})
	}
}

func TestBreakdown(t *testing.T) {
	t.Run("nested", func(t *testing.T) {
		got, err := Breakdown(schema.WithinSession, nestedFixture(), []string{"acc"})
		require.NoError(t, err)
		require.Len(t, got, 4)
		assert.Equal(t, "fold-0/session_E", got[0].Group)
		assert.Equal(t, "fold-1/session_T", got[3].Group)
		assert.InDelta(t, 0.8, got[0].Metrics["acc"].Mean, 1e-12)
		assert.InDelta(t, 0.0816496580927726, got[0].Metrics["acc"].Std, 1e-12)
		assert.Equal(t, 3, got[0].Metrics["acc"].N)
	})

	t.Run("flat", func(t *testing.T) {
		stats := schema.NewFlatStats()
		stats.Flat["acc"] = []float64{0.5, 1.0}
		got, err := Breakdown(schema.CrossSession, stats, []string{"acc"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Group)
		assert.InDelta(t, 0.75, got[0].Metrics["acc"].Mean, 1e-12)
		assert.InDelta(t, 0.25, got[0].Metrics["acc"].Std, 1e-12)
	})

	t.Run("missing metric", func(t *testing.T) {
		_, err := Breakdown(schema.WithinSession, nestedFixture(), []string{"f1"})
		var noData *schema.NoDataError
		assert.True(t, errors.As(err, &noData))
	})
}

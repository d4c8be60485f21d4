package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricValue(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		v := Scalar(0.5)
		got, ok := v.Float()
		assert.True(t, ok)
		assert.Equal(t, 0.5, got)
		assert.False(t, v.IsSequence())
		assert.Equal(t, []float64{0.5}, v.Values())
		assert.Equal(t, 0.5, v.Raw())
	})

	t.Run("sequence reduces to mean", func(t *testing.T) {
		v := Sequence(0.25, 0.75)
		got, ok := v.Float()
		assert.True(t, ok)
		assert.InDelta(t, 0.5, got, 1e-12)
		assert.True(t, v.IsSequence())
		assert.Equal(t, []float64{0.25, 0.75}, v.Raw())
	})

	t.Run("empty sequence has no value", func(t *testing.T) {
		_, ok := Sequence().Float()
		assert.False(t, ok)
	})

	t.Run("unsupported has no value", func(t *testing.T) {
		v := Unsupported("ndarray of shape [2 2]")
		kind, ok := v.Supported()
		assert.False(t, ok)
		assert.Equal(t, "ndarray of shape [2 2]", kind)
		_, ok = v.Float()
		assert.False(t, ok)
		assert.Empty(t, v.Values())
		assert.Nil(t, v.Raw())

		_, ok = Scalar(0.5).Supported()
		assert.True(t, ok)
	})

	t.Run("long sequence mean", func(t *testing.T) {
		got, ok := Sequence(0.1, 0.2, 0.3, 0.4).Float()
		assert.True(t, ok)
		assert.InDelta(t, 0.25, got, 1e-12)
	})

	t.Run("values are copied", func(t *testing.T) {
		src := []float64{1, 2}
		v := Sequence(src...)
		src[0] = 9
		assert.Equal(t, []float64{1, 2}, v.Values())
	})
}

func TestParseParadigm(t *testing.T) {
	tests := []struct {
		name string
		want Paradigm
		ok   bool
	}{
		{"within-session", WithinSession, true},
		{"cross-session", CrossSession, true},
		{"leave-one-session-out", LeaveOneSessionOut, true},
		{"leave-one-subject-out", LeaveOneSubjectOut, true},
		{"leave-one-channel-out", "", false},
		{"Within-Session", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseParadigm(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParadigmShape(t *testing.T) {
	assert.Equal(t, NestedStats, WithinSession.Kind())
	assert.Equal(t, NestedStats, LeaveOneSessionOut.Kind())
	assert.Equal(t, FlatStats, CrossSession.Kind())
	assert.Equal(t, FlatStats, LeaveOneSubjectOut.Kind())

	assert.Equal(t, 3, WithinSession.Depth())
	assert.Equal(t, 2, CrossSession.Depth())
	assert.Equal(t, 2, LeaveOneSessionOut.Depth())
	assert.Equal(t, 1, LeaveOneSubjectOut.Depth())
}

func TestAllParadigmsSorted(t *testing.T) {
	for i := 1; i < len(AllParadigms); i++ {
		assert.Less(t, string(AllParadigms[i-1]), string(AllParadigms[i]))
	}
}

func TestParadigmStatsEmpty(t *testing.T) {
	nested := NewNestedStats()
	assert.True(t, nested.Empty())
	nested.Nested["s1"] = map[string][]float64{"acc": {}}
	assert.True(t, nested.Empty())
	nested.Nested["s1"]["acc"] = append(nested.Nested["s1"]["acc"], 0.8)
	assert.False(t, nested.Empty())

	flat := NewFlatStats()
	assert.True(t, flat.Empty())
	flat.Flat["acc"] = []float64{0.1}
	assert.False(t, flat.Empty())
}

func TestAggregatedStatsExtend(t *testing.T) {
	pooled := AggregatedStats{}
	pooled.Extend(AggregatedStats{"acc": {0.1, 0.2}})
	pooled.Extend(AggregatedStats{"acc": {0.3}, "f1": {0.5}})
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, pooled["acc"])
	assert.Equal(t, []float64{0.5}, pooled["f1"])
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
	assert.Empty(t, SortedKeys(map[string]int{}))
}

func TestErrors(t *testing.T) {
	t.Run("artifact read error unwraps", func(t *testing.T) {
		err := fmt.Errorf("load: %w", &ArtifactReadError{Path: "/x/test_metrics.pkl", Err: os.ErrNotExist})
		var target *ArtifactReadError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, "/x/test_metrics.pkl", target.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no data error names its location", func(t *testing.T) {
		err := &NoDataError{Paradigm: WithinSession, Group: "fold-0/session_T", Metric: "acc", Reason: "empty sequence"}
		assert.Equal(t, "no data for paradigm within-session, group fold-0/session_T, metric acc: empty sequence", err.Error())
		assert.Equal(t, "no data", (&NoDataError{}).Error())
	})

	t.Run("unknown paradigm error lists choices", func(t *testing.T) {
		err := &UnknownParadigmError{Name: "leave-one-channel-out", Path: "/r/leave-one-channel-out"}
		assert.Contains(t, err.Error(), `"leave-one-channel-out"`)
		assert.Contains(t, err.Error(), "within-session")
	})
}

func TestMarshalNonFinite(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want string
	}{
		{"summary", MetricSummary{Mean: math.NaN(), Std: math.Inf(-1), N: 2}, `{"mean":null,"std":null,"n":2}`},
		{"finite summary", MetricSummary{Mean: 0.5, Std: 0, N: 1}, `{"mean":0.5,"std":0,"n":1}`},
		{"aggregated", AggregatedStats{"loss": {0.25, math.NaN()}}, `{"loss":[0.25,null]}`},
		{"flat stats", ParadigmStats{Kind: FlatStats, Flat: map[string][]float64{"acc": {math.Inf(1)}}}, `{"kind":"flat","flat":{"acc":[null]}}`},
		{"overall", OverallStats{"acc": {Mean: math.NaN(), N: 1}}, `{"acc":{"mean":null,"std":0,"n":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

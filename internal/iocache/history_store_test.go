package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/eegstudy/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOverall() schema.OverallStats {
	return schema.OverallStats{
		"loss": {Mean: 0.42, Std: 0.05, N: 4},
		"acc":  {Mean: 0.81, Std: 0.02, N: 4},
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	runID, err := store.BeginRun(time.Now(), "/results", schema.TestMetricFile, map[string]any{"metrics": "acc"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordScopeStats(1, "within-session", sampleOverall()))
	assert.NoError(t, store.EndRun(1, time.Now(), 4, 10))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestHistoryStore_SQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun(start, "/results", schema.TestMetricFile, map[string]any{"precision": 4})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordScopeStats(runID, "within-session", sampleOverall()))
	require.NoError(t, store.RecordScopeStats(runID, schema.OverallScope, sampleOverall()))
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), 1, 8))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, "/results", run.ResultsRoot)
	assert.Equal(t, schema.TestMetricFile, run.MetricFile)
	assert.Equal(t, int32(1), run.Paradigms)
	assert.Equal(t, int32(8), run.ArtifactsLoaded)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"precision":4}`, *run.ConfigParams)

	stats, err := store.GetAllScopeStats()
	require.NoError(t, err)
	require.Len(t, stats, 4)
	assert.Equal(t, schema.ScopeStatRecord{RunID: runID, Scope: schema.OverallScope, Metric: "acc", Mean: 0.81, Std: 0.02, Replicas: 4}, stats[0])
	assert.Equal(t, "within-session", stats[2].Scope)
	assert.Equal(t, "acc", stats[2].Metric)
	assert.Equal(t, "loss", stats[3].Metric)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 8, status.TotalArtifacts)
	assert.True(t, start.Equal(status.LastRunTime))
	assert.Equal(t, int64(1), status.TableSizes[runsTable])
	assert.Equal(t, int64(4), status.TableSizes[scopeStatsTable])
}

func TestHistoryStore_MultipleRuns(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	var ids []int64
	for i := range 3 {
		id, err := store.BeginRun(time.Now(), "/results", schema.TestMetricFile, map[string]any{"run": i})
		require.NoError(t, err)
		require.NoError(t, store.EndRun(id, time.Now(), 1, i))
		ids = append(ids, id)
	}
	assert.Len(t, ids, 3)
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEqual(t, ids[1], ids[2])

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, ids[2], status.LastRunID)
	assert.Equal(t, 3, status.TotalArtifacts)
}

func TestHistoryStore_ReopenKeepsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	_, err = store.BeginRun(time.Now(), "/results", schema.TestMetricFile, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
}

func TestHistoryStore_EndRunUnknownID(t *testing.T) {
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndRun(42, time.Now(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get start_time for run 42")
}

func TestBind(t *testing.T) {
	pg := &HistoryStoreImpl{backend: schema.PostgreSQLBackend}
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", pg.bind("UPDATE t SET a = ?, b = ? WHERE id = ?"))

	for _, backend := range []schema.DatabaseBackend{schema.SQLiteBackend, schema.MySQLBackend} {
		hs := &HistoryStoreImpl{backend: backend}
		assert.Equal(t, "SELECT ? FROM t", hs.bind("SELECT ? FROM t"))
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`eegstudy_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"eegstudy_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"eegstudy_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "mysql", driverFor(schema.MySQLBackend))
	assert.Equal(t, "pgx", driverFor(schema.PostgreSQLBackend))
	assert.Equal(t, "sqlite", driverFor(schema.SQLiteBackend))
}

//go:build basic

// Package integration contains integration tests for eegstudy.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldThenAggregate(t *testing.T) {
	root := scaffoldStudy(t)

	output, err := runCommand(t, "aggregate", root, "loss", "acc")
	require.NoError(t, err)
	assert.Contains(t, output, "Aggregated results")
	assert.Contains(t, output, "within-session")
	assert.Contains(t, output, "leave-one-subject-out")
	assert.NotContains(t, output, "Warn")

	var pooled []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "loss ") || strings.HasPrefix(line, "acc ") {
			pooled = append(pooled, line)
		}
	}
	require.Len(t, pooled, 2)
	assert.True(t, strings.HasPrefix(pooled[0], "loss "), "metrics keep request order")
	assert.Contains(t, pooled[1], " +- ")
}

func TestAggregateJSON(t *testing.T) {
	root := scaffoldStudy(t)
	out := filepath.Join(t.TempDir(), "study.json")

	_, err := runCommand(t, "aggregate", root, "acc", "--output", "json", "--output-file", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result struct {
		Paradigms []struct {
			Paradigm string `json:"paradigm"`
			Skipped  int    `json:"skipped"`
		} `json:"paradigms"`
		Overall map[string]struct {
			N int `json:"n"`
		} `json:"overall"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Paradigms, 4)
	for _, p := range result.Paradigms {
		assert.Zero(t, p.Skipped, p.Paradigm)
	}
	// 1 (cross) + 2 (sessions) + 1 (subjects) + 5 folds x 2 sessions
	assert.Equal(t, 14, result.Overall["acc"].N)
}

func TestAggregateParadigm(t *testing.T) {
	root := scaffoldStudy(t)
	output, err := runCommand(t, "paradigm", filepath.Join(root, "leave-one-session-out"), "f1")
	require.NoError(t, err)
	assert.Contains(t, output, "session_E")
	assert.Contains(t, output, "session_T")
	assert.Contains(t, output, "Aggregated results")
}

func TestAggregateFailures(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		output, err := runCommand(t, "aggregate", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Contains(t, output, "cannot access results directory")
	})

	t.Run("unknown paradigm directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "leave-one-channel-out"), 0o755))
		output, err := runCommand(t, "aggregate", root)
		require.Error(t, err)
		assert.Contains(t, output, "Fatal")
	})
}

func TestFoldsCSV(t *testing.T) {
	output, err := runCommand(t, "folds", "leave-one-subject-out", "--subjects", "s1,s2,s3,s4,s5", "--sessions", "session_E", "--output", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Equal(t, "paradigm,fold_index,tail_path,held_out,split,subject,session", lines[0])
	assert.Len(t, lines, 1+5*5) // every fold lists all five units once
}

func TestHistorySQLite(t *testing.T) {
	root := scaffoldStudy(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")
	history := []string{"--history-backend", "sqlite", "--history-db-connect", dbPath}

	_, err := runCommand(t, append([]string{"history", "migrate"}, history...)...)
	require.NoError(t, err)
	_, err = runCommand(t, append([]string{"aggregate", root, "--quiet"}, history...)...)
	require.NoError(t, err)

	output, err := runCommand(t, append([]string{"history", "status"}, history...)...)
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 1")

	export := filepath.Join(t.TempDir(), "runs")
	_, err = runCommand(t, append([]string{"history", "export", "--output-file", export}, history...)...)
	require.NoError(t, err)
	_, err = os.Stat(export + ".scope_stats.parquet")
	assert.NoError(t, err)

	_, err = runCommand(t, append([]string{"history", "clear"}, history...)...)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestVersion(t *testing.T) {
	output, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, output, "eegstudy CLI")
}

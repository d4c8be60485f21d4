package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/eegstudy/internal/contract"
	mcp_internal "github.com/huangsam/eegstudy/internal/mcp"
	"github.com/huangsam/eegstudy/internal/metricstore"
	"github.com/huangsam/eegstudy/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type studyPayload struct {
	Result   schema.StudyResult `json:"result"`
	Warnings []string           `json:"warnings"`
}

func baseConfig() *contract.Config {
	return &contract.Config{
		Metrics:    []string{"loss", "f1", "acc"},
		MetricFile: schema.TestMetricFile,
		Output:     schema.JSONOut,
		Precision:  contract.DefaultPrecision,
		Workers:    2,
		Paradigms:  schema.AllParadigms,
		Seed:       contract.DefaultSeed,
		ValidRatio: contract.DefaultValidRatio,
		KFolds:     contract.DefaultKFolds,
		Repeats:    contract.DefaultRepeats,
	}
}

// writeSubjectOut writes four readable subjects and one corrupt artifact.
func writeSubjectOut(t *testing.T, root string) {
	t.Helper()
	dir := filepath.Join(root, string(schema.LeaveOneSubjectOut))
	for i, acc := range []float64{0.6, 0.7, 0.8, 0.9} {
		record := schema.MetricRecord{"loss": schema.Scalar(1 - acc), "f1": schema.Scalar(acc), "acc": schema.Scalar(acc)}
		require.NoError(t, metricstore.Write(filepath.Join(dir, fmt.Sprintf("subject-%d", i+1), schema.TestMetricFile), record))
	}
	corrupt := filepath.Join(dir, "subject-5")
	require.NoError(t, os.MkdirAll(corrupt, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, schema.TestMetricFile), []byte("not a pickle"), 0o644))
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerAggregateStudy(t *testing.T) {
	root := t.TempDir()
	writeSubjectOut(t, root)
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	res := callTool(t, s, "aggregate_study", map[string]any{"results_root": root, "metrics": "acc, loss"})
	require.False(t, res.IsError, resultText(t, res))

	var payload studyPayload
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	assert.Equal(t, []string{"acc", "loss"}, payload.Result.Metrics)
	require.Len(t, payload.Result.Paradigms, 1)
	assert.Equal(t, 4, payload.Result.Paradigms[0].Loaded)
	assert.Equal(t, 1, payload.Result.Paradigms[0].Skipped)
	assert.InDelta(t, 0.75, payload.Result.Overall["acc"].Mean, 1e-12)
	require.Len(t, payload.Warnings, 1)
	assert.Contains(t, payload.Warnings[0], "subject-5")
}

func TestMCPServerAggregateParadigm(t *testing.T) {
	root := t.TempDir()
	writeSubjectOut(t, root)
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	res := callTool(t, s, "aggregate_paradigm", map[string]any{
		"paradigm_dir": filepath.Join(root, string(schema.LeaveOneSubjectOut)),
	})
	require.False(t, res.IsError, resultText(t, res))

	var payload studyPayload
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	assert.Equal(t, root, payload.Result.ResultsRoot)
	assert.Equal(t, []string{"loss", "f1", "acc"}, payload.Result.Metrics)
	assert.Len(t, payload.Warnings, 1)
}

func TestMCPServerDivergedFold(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, string(schema.LeaveOneSubjectOut))
	for i, loss := range []float64{0.4, math.NaN()} {
		record := schema.MetricRecord{"loss": schema.Scalar(loss), "f1": schema.Scalar(0.8), "acc": schema.Scalar(0.9)}
		require.NoError(t, metricstore.Write(filepath.Join(dir, fmt.Sprintf("subject-%d", i+1), schema.TestMetricFile), record))
	}
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	res := callTool(t, s, "aggregate_study", map[string]any{"results_root": root})
	require.False(t, res.IsError, resultText(t, res))
	assert.Contains(t, resultText(t, res), `"mean": null`)

	var payload studyPayload
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &payload))
	assert.InDelta(t, 0.9, payload.Result.Overall["acc"].Mean, 1e-12)
	assert.Empty(t, payload.Warnings)
}

func TestMCPServerPlanFolds(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	res := callTool(t, s, "plan_folds", map[string]any{
		"subjects":  "s1,s2,s3",
		"sessions":  "session_E,session_T",
		"paradigms": "leave-one-session-out",
		"seed":      3.0,
	})
	require.False(t, res.IsError, resultText(t, res))

	var plans []schema.FoldPlan
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &plans))
	require.Len(t, plans, 3*2) // one per subject and held-out session
	for _, plan := range plans {
		assert.Equal(t, schema.LeaveOneSessionOut, plan.Paradigm)
		assert.NotEmpty(t, plan.Test)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil)

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"aggregate_study missing root", "aggregate_study", map[string]any{}, "results_root is required"},
		{"aggregate_study bad metric file", "aggregate_study", map[string]any{"results_root": t.TempDir(), "metric_file": "a/b.pkl"}, "invalid metric parameters"},
		{"aggregate_study empty root", "aggregate_study", map[string]any{"results_root": t.TempDir()}, "aggregation failed"},
		{"aggregate_paradigm unknown directory", "aggregate_paradigm", map[string]any{"paradigm_dir": t.TempDir()}, "aggregation failed"},
		{"plan_folds invalid ratio", "plan_folds", map[string]any{"subjects": "s1,s2", "sessions": "a,b", "valid_ratio": 1.5}, "invalid fold parameters"},
		{"plan_folds unknown paradigm", "plan_folds", map[string]any{"subjects": "s1,s2", "sessions": "a,b", "paradigms": "leave-one-channel-out"}, "invalid fold parameters"},
		{"plan_folds missing subjects", "plan_folds", map[string]any{"sessions": "a,b"}, "fold planning failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

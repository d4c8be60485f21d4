// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the EEG study MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"EEG Study Aggregation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: aggregate_study ---
	s.AddTool(mcp.NewTool("aggregate_study",
		mcp.WithDescription("Aggregate the cross-validation results of every paradigm under a results root into per-metric mean and standard deviation."),
		mcp.WithString("results_root", mcp.Description("Directory holding one sub-directory per paradigm."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric names in report order (defaults to loss,f1,acc).")),
		mcp.WithString("metric_file", mcp.Description("Artifact file name read in each unit directory."), mcp.Enum("test_metrics.pkl", "valid_metrics.pkl")),
	), h.handleAggregateStudy)

	// --- 2. Tool: aggregate_paradigm ---
	s.AddTool(mcp.NewTool("aggregate_paradigm",
		mcp.WithDescription("Aggregate a single paradigm directory, named after its paradigm, with a per-group breakdown."),
		mcp.WithString("paradigm_dir", mcp.Description("Paradigm directory such as <root>/within-session."), mcp.Required()),
		mcp.WithString("metrics", mcp.Description("Comma-separated metric names in report order.")),
		mcp.WithString("metric_file", mcp.Description("Artifact file name read in each unit directory."), mcp.Enum("test_metrics.pkl", "valid_metrics.pkl")),
	), h.handleAggregateParadigm)

	// --- 3. Tool: plan_folds ---
	s.AddTool(mcp.NewTool("plan_folds",
		mcp.WithDescription("Plan the train, validation and test units of each cross-validation fold."),
		mcp.WithString("subjects", mcp.Description("Comma-separated subject identifiers."), mcp.Required()),
		mcp.WithString("sessions", mcp.Description("Comma-separated session identifiers."), mcp.Required()),
		mcp.WithString("paradigms", mcp.Description("Comma-separated paradigms to plan (defaults to all four).")),
		mcp.WithNumber("seed", mcp.Description("Seed of the validation split.")),
		mcp.WithNumber("valid_ratio", mcp.Description("Share of training units moved to validation, in [0, 1).")),
		mcp.WithNumber("k_folds", mcp.Description("Number of within-session folds.")),
		mcp.WithNumber("repeats", mcp.Description("Number of cross-session repeats.")),
	), h.handlePlanFolds)

	return s
}

// StartMCPServer starts the EEG study MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

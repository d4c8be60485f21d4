package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/huangsam/eegstudy/core"
	"github.com/huangsam/eegstudy/internal/contract"
	"github.com/huangsam/eegstudy/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// studyResponse is the payload of the aggregation tools.
type studyResponse struct {
	Result   schema.StudyResult `json:"result"`
	Warnings []string           `json:"warnings,omitempty"`
}

// warningCollector keeps diagnostics for the tool response instead of stderr.
type warningCollector struct {
	mu       sync.Mutex
	warnings []string
}

var _ contract.Diagnostics = &warningCollector{} // Compile-time check

// Warn implements the Diagnostics interface.
func (c *warningCollector) Warn(msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf("%s: %v", msg, err))
}

func (h *toolHandler) handleAggregateStudy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, errResult := h.studyConfig(request, "results_root")
	if errResult != nil {
		return errResult, nil
	}

	warnings := &warningCollector{}
	result, _, err := core.GetStudyResults(core.WithDiagnostics(ctx, warnings), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	return jsonResult(studyResponse{Result: result, Warnings: warnings.warnings})
}

func (h *toolHandler) handleAggregateParadigm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, errResult := h.studyConfig(request, "paradigm_dir")
	if errResult != nil {
		return errResult, nil
	}

	warnings := &warningCollector{}
	result, err := core.ParadigmStudy(ctx, cfg.RootPath, core.StudyOptions{
		Metrics:    cfg.Metrics,
		MetricFile: cfg.MetricFile,
		Diag:       warnings,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	return jsonResult(studyResponse{Result: result, Warnings: warnings.warnings})
}

func (h *toolHandler) handlePlanFolds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	input := cfg.FoldPlanningInput()
	input.Subjects = request.GetString("subjects", "")
	input.Sessions = request.GetString("sessions", "")
	if p := request.GetString("paradigms", ""); p != "" {
		input.Paradigms = p
	}
	input.Seed = int64(request.GetInt("seed", int(input.Seed)))
	input.ValidRatio = request.GetFloat("valid_ratio", input.ValidRatio)
	input.KFolds = request.GetInt("k_folds", input.KFolds)
	input.Repeats = request.GetInt("repeats", input.Repeats)

	if err := contract.RevalidateFoldPlanning(cfg, input); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fold parameters: %v", err)), nil
	}

	plans, err := core.GetFoldPlans(ctx, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fold planning failed: %v", err)), nil
	}
	return jsonResult(plans)
}

// studyConfig clones the base config with the directory, metrics and
// artifact file of an aggregation request.
func (h *toolHandler) studyConfig(request mcp.CallToolRequest, dirKey string) (*contract.Config, *mcp.CallToolResult) {
	cfg := h.baseCfg.Clone()
	dir := request.GetString(dirKey, "")
	if dir == "" {
		return nil, mcp.NewToolResultError(fmt.Sprintf("%s is required", dirKey))
	}
	cfg.RootPath = filepath.Clean(dir)

	var metrics []string
	for m := range strings.SplitSeq(request.GetString("metrics", ""), ",") {
		if m = strings.TrimSpace(m); m != "" {
			metrics = append(metrics, m)
		}
	}
	if err := contract.RevalidateMetrics(cfg, metrics, request.GetString("metric_file", "")); err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("invalid metric parameters: %v", err))
	}
	return cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

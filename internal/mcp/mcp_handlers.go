package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/huangsam/score2dx/core"
	"github.com/huangsam/score2dx/internal/contract"
	"github.com/huangsam/score2dx/internal/outwriter"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeVersion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateAnalysis(cfg,
		request.GetString("data_path", ""),
		request.GetString("style", ""),
		request.GetInt("active_version", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	result, _, err := core.GetVersionResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	if cfg.ResultLimit > 0 && len(result.Charts) > cfg.ResultLimit {
		result.Charts = result.Charts[:cfg.ResultLimit]
	}
	return jsonResult(result)
}

func (h *toolHandler) handleAnalyzeActivity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	err := contract.RevalidateAnalysis(cfg,
		request.GetString("data_path", ""),
		request.GetString("style", ""),
		request.GetInt("active_version", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid analysis parameters: %v", err)), nil
	}
	if err := contract.RevalidateActivity(cfg, request.GetString("begin", ""), request.GetString("end", "")); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid activity window: %v", err)), nil
	}

	result, _, err := core.GetActivityResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("activity analysis failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleScoreLevel(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteCount := request.GetInt("note_count", 0)
	exScore := request.GetInt("ex_score", -1)

	report, err := outwriter.BuildScoreLevelReport(noteCount, exScore)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid score level parameters: %v", err)), nil
	}
	return jsonResult(report)
}

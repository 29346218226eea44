// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/score2dx/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the score2dx MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"score2dx Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("analyze_version",
		mcp.WithDescription("Analyze IIDX score CSVs for one version: statistics by clear type, DJ level and score level, plus per-chart version and career bests."),
		mcp.WithString("data_path", mcp.Description("Score CSV file or a directory of score CSVs (defaults to the configured paths).")),
		mcp.WithNumber("active_version", mcp.Description("Version index to analyze, e.g. 29 for CastHour.")),
		mcp.WithString("style", mcp.Description("Play style filter."), mcp.Enum("all", "sp", "dp")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of chart results returned.")),
	), h.handleAnalyzeVersion)

	s.AddTool(mcp.NewTool("analyze_activity",
		mcp.WithDescription("List the chart score updates recorded between two date times."),
		mcp.WithString("data_path", mcp.Description("Score CSV file or a directory of score CSVs.")),
		mcp.WithString("begin", mcp.Description("Window begin, 'YYYY-MM-DD' or 'YYYY-MM-DD HH:MM' in UTC. Defaults to the active version's release.")),
		mcp.WithString("end", mcp.Description("Window end, same format. Leave empty for an open window.")),
		mcp.WithNumber("active_version", mcp.Description("Version index whose charts are considered.")),
		mcp.WithString("style", mcp.Description("Play style filter."), mcp.Enum("all", "sp", "dp")),
	), h.handleAnalyzeActivity)

	s.AddTool(mcp.NewTool("score_level",
		mcp.WithDescription("Compute the key EX scores of a chart, and the score level of an EX score."),
		mcp.WithNumber("note_count", mcp.Description("Number of notes of the chart."), mcp.Required()),
		mcp.WithNumber("ex_score", mcp.Description("EX score to classify. Omit to only list key scores.")),
	), h.handleScoreLevel)

	return s
}

// StartMCPServer starts the score2dx MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

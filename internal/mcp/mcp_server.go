// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the DebtLens MCP server without starting it.
// The opinion tool is registered only when a provider is given.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, opinion contract.OpinionProvider) *server.MCPServer {
	s := server.NewMCPServer(
		"DebtLens Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		opinion: opinion,
	}

	s.AddTool(mcp.NewTool("analyze_snapshot",
		mcp.WithDescription("Score AI likelihood, technical debt and cognitive debt for the files of a repository."),
		mcp.WithString("repo", mcp.Description("GitHub owner/repo, GitHub URL or local checkout path."), mcp.Required()),
	), h.handleAnalyzeSnapshot)

	s.AddTool(mcp.NewTool("analyze_history",
		mcp.WithDescription("Replay recent commits of a repository and report the debt trajectory per commit and developer."),
		mcp.WithString("repo", mcp.Description("GitHub owner/repo, GitHub URL or local checkout path."), mcp.Required()),
		mcp.WithNumber("commits", mcp.Description("Number of recent commits to replay (1-30, defaults to 20).")),
	), h.handleAnalyzeHistory)

	s.AddTool(mcp.NewTool("get_metrics_definitions",
		mcp.WithDescription("Describe every metric and the formulas behind the scores."),
	), h.handleGetMetricsDefinitions)

	if opinion != nil {
		s.AddTool(mcp.NewTool("get_opinion",
			mcp.WithDescription("Ask the secondary model whether a single file looks AI generated."),
			mcp.WithString("filename", mcp.Description("Name of the file under review."), mcp.Required()),
			mcp.WithString("content", mcp.Description("Full text of the file."), mcp.Required()),
		), h.handleGetOpinion)
	}

	return s
}

// StartMCPServer serves the DebtLens MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, opinion contract.OpinionProvider) error {
	s := NewMCPServer(baseCfg, mgr, opinion)
	return server.ServeStdio(s)
}

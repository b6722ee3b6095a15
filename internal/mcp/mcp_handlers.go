package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	opinion contract.OpinionProvider
}

func (h *toolHandler) handleAnalyzeSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	report, err := core.GetSnapshotResults(ctx, cfg, h.mgr, request.GetString("repo", ""))
	if err != nil {
		return toolError("snapshot", err), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleAnalyzeHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	n := request.GetInt("commits", cfg.Commits)
	report, err := core.GetHistoryResults(ctx, cfg, h.mgr, request.GetString("repo", ""), n)
	if err != nil {
		return toolError("history", err), nil
	}
	return jsonResult(report)
}

func (h *toolHandler) handleGetMetricsDefinitions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(schema.NewMetricsRenderModel())
}

func (h *toolHandler) handleGetOpinion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	verdict, err := h.opinion.Opinion(ctx, request.GetString("filename", ""), request.GetString("content", ""))
	if err != nil {
		return toolError("opinion", err), nil
	}
	return jsonResult(verdict)
}

// toolError reports a failed analysis with its stable error code.
func toolError(kind string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s failed [%s]: %v", kind, contract.ErrorCode(err), err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/debtlens/internal/contract"
	mcp_internal "github.com/huangsam/debtlens/internal/mcp"
	"github.com/huangsam/debtlens/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func baseConfig() *contract.Config {
	return &contract.Config{
		Source:      schema.AutoSource,
		Workers:     2,
		Commits:     contract.DefaultCommits,
		MaxFiles:    contract.DefaultMaxFiles,
		MaxFileSize: contract.DefaultMaxFileSize,
		Timeout:     time.Minute,
		Extensions:  contract.DefaultExtensions,
		Excludes:    contract.DefaultExcludes,
	}
}

func callTool(t *testing.T, cfg *contract.Config, opinion contract.OpinionProvider, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(cfg, nil, opinion)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "tool %s should exist", name)

	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "tool failures are reported in the result, not as raw errors")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestAnalyzeSnapshotValidation(t *testing.T) {
	res := callTool(t, baseConfig(), nil, "analyze_snapshot", map[string]any{"repo": ""})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), contract.CodeInvalidInput)
}

func TestAnalyzeHistoryValidation(t *testing.T) {
	res := callTool(t, baseConfig(), nil, "analyze_history", map[string]any{"repo": "not a repo", "commits": 5.0})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), contract.CodeInvalidInput)
}

func TestAnalyzeSnapshotLocal(t *testing.T) {
	dir := t.TempDir()
	src := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfor i := 0; i < 3; i++ {\n\t\tif i > 1 {\n\t\t\tfmt.Println(i)\n\t\t}\n\t}\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

	res := callTool(t, baseConfig(), nil, "analyze_snapshot", map[string]any{"repo": dir})
	require.False(t, res.IsError, resultText(t, res))

	var report schema.SnapshotReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	require.Len(t, report.Files, 1)
	assert.Equal(t, "main.go", report.Files[0].Path)
	assert.Equal(t, 1, report.Summary.FileCount)
}

func TestGetMetricsDefinitions(t *testing.T) {
	res := callTool(t, baseConfig(), nil, "get_metrics_definitions", nil)
	require.False(t, res.IsError)

	var model schema.MetricsRenderModel
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &model))
	assert.Len(t, model.Metrics, len(schema.MetricDefinitions))
}

func TestOpinionTool(t *testing.T) {
	s := mcp_internal.NewMCPServer(baseConfig(), nil, nil)
	assert.Nil(t, s.GetTool("get_opinion"), "opinion tool requires a provider")

	provider := &contract.MockOpinionProvider{}
	provider.On("Opinion", mock.Anything, "a.go", "package a").Return(schema.OpinionVerdict{
		Filename: "a.go",
		Verdict:  schema.HumanWrittenVerdict,
	}, nil)
	provider.On("Opinion", mock.Anything, "b.go", mock.Anything).Return(schema.OpinionVerdict{}, contract.ErrQuotaExhausted)

	res := callTool(t, baseConfig(), provider, "get_opinion", map[string]any{"filename": "a.go", "content": "package a"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), string(schema.HumanWrittenVerdict))

	res = callTool(t, baseConfig(), provider, "get_opinion", map[string]any{"filename": "b.go", "content": "package b"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), contract.CodeQuotaExhausted)
	provider.AssertExpectations(t)
}

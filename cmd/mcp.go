package cmd

import (
	"github.com/huangsam/debtlens/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd starts the MCP server over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the DebtLens MCP server",
	Long: `Launch an MCP server over stdio so AI agents can run snapshot and history
analysis through standard tools. The get_opinion tool is offered when a model
API key is configured.`,
	PreRunE: openStores,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, optionalOpinion())
	},
}

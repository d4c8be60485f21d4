package cmd

import (
	"github.com/huangsam/eegstudy/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the eegstudy MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents aggregate results and plan
folds through the aggregate_study, aggregate_paradigm and plan_folds tools.

Diagnostics are returned in the tool responses, so stdio stays reserved for
the protocol.`,
	Args:    cobra.NoArgs,
	PreRunE: setupFor(noArgs),
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager)
	},
}

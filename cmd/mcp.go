package cmd

import (
	"github.com/huangsam/score2dx/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [csv-path...]",
	Short: "Start the score2dx MCP server",
	Long: `Launch an MCP server that allows AI agents to analyze scores via standard tools.

Positional CSV paths become the default data path of every tool call.
Logs go to stderr since stdio carries the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

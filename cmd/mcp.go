package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mockboard/iv/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for assistant integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client drive interviews natively. Configure with:

  {
    "mcpServers": {
      "iv": { "command": "iv", "args": ["mcp"] }
    }
  }

Available tools: iv_list_roles, iv_start_interview, iv_current_question,
iv_submit_answer, iv_get_report, iv_list_reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := getRegistry()
		srv := mcp.NewServer(reg, dataStore)
		return srv.ServeStdio(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/jlrickert/hashdoc/pkg/mcptool"
)

// NewMCPCmd returns the `mcp` cobra command, an MCP server on stdio.
func NewMCPCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "serve hash resolution tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcptool.Serve(cmd.Context(), deps.Docs, Version)
		},
	}
}

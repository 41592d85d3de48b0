package cli

import (
	"postpilot/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the draft and publish tools over MCP (stdio)",
		Long: `Runs a Model Context Protocol server on stdin/stdout so an assistant can
generate, edit and publish posts through the same backend the dashboard uses.

Logs go to stderr; stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.log.Info("mcp server starting", "apiUrl", app.APIURL)
			if err := mcpserver.New(app.client(), Version, app.log).ServeStdio(); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

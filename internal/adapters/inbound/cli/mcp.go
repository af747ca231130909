package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/prfix/prfix/internal/adapters/inbound/mcp"
	"github.com/prfix/prfix/internal/domain"
)

func newMCPCmd(ref *appRef) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the prfix MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(ref))
	return cmd
}

func newMCPServeCmd(ref *appRef) *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start prfix MCP server (stdio)",
		Long:  "Start the prfix MCP server using stdio transport. Assistants can classify comments, analyze PRs, and preview fix plans.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ref.app
			var platform domain.ReviewPlatform
			p, err := app.platform(cmd.Context(), app.repo(repo))
			if err != nil {
				app.Logger.Warn("review platform unavailable; prfix_analyze is disabled", "error", err)
			} else {
				platform = p
			}
			s := mcpadapter.NewPrfixMCPServer(app.Root, platform)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository in owner/name form")

	return cmd
}

package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/prfix/prfix/internal/domain"
)

// NewPrfixMCPServer creates an MCP server with all prfix tools and resources
// registered. projectPath is the working tree fixes are previewed against.
// platform may be nil, in which case prfix_analyze reports an error.
func NewPrfixMCPServer(projectPath string, platform domain.ReviewPlatform) *server.MCPServer {
	s := server.NewMCPServer(
		"prfix",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, platform)
	registerResources(s, projectPath)

	return s
}

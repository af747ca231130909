package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prfix/prfix/internal/adapters/outbound/history"
	"github.com/prfix/prfix/internal/adapters/outbound/planstore"
	"github.com/prfix/prfix/internal/domain"
)

// registerResources registers all prfix MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string) {
	// 1. prfix://registry - recognized review tools
	s.AddResource(
		mcplib.NewResource(
			"prfix://registry",
			"Review Tool Registry",
			mcplib.WithResourceDescription("Review bots recognized by the classifier, in match order, with their patterns"),
			mcplib.WithMIMEType("application/json"),
		),
		handleRegistryResource(),
	)

	// 2. prfix://history - recorded runs
	s.AddResource(
		mcplib.NewResource(
			"prfix://history",
			"Run History",
			mcplib.WithResourceDescription("Analyze and apply runs recorded for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleHistoryResource(projectPath),
	)

	// 3. prfix://analysis - last analysis written to the default location
	s.AddResource(
		mcplib.NewResource(
			"prfix://analysis",
			"Latest Analysis",
			mcplib.WithResourceDescription("The analysis document written by the last analyze run"),
			mcplib.WithMIMEType("application/json"),
		),
		handleAnalysisResource(projectPath),
	)
}

// registryEntry is the JSON view of one domain.ReviewTool.
type registryEntry struct {
	Name              domain.Tool `json:"name"`
	CommentPattern    string      `json:"comment_pattern"`
	SuggestionPattern string      `json:"suggestion_pattern"`
}

func handleRegistryResource() server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries := make([]registryEntry, 0, len(domain.ReviewTools))
		for _, t := range domain.ReviewTools {
			entries = append(entries, registryEntry{
				Name:              t.Name,
				CommentPattern:    t.CommentPattern.String(),
				SuggestionPattern: t.SuggestionPattern.String(),
			})
		}
		return jsonResource(request.Params.URI, entries)
	}
}

func handleHistoryResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		entries, err := history.New().Load(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
		if entries == nil {
			entries = []domain.RunEntry{}
		}
		return jsonResource(request.Params.URI, entries)
	}
}

func handleAnalysisResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		a, err := planstore.New().LoadAnalysis(filepath.Join(projectPath, domain.DefaultAnalysisOutput))
		if err != nil {
			return nil, err
		}
		return jsonResource(request.Params.URI, a)
	}
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling resource: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

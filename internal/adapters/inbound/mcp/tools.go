package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prfix/prfix/internal/adapters/outbound/planstore"
	"github.com/prfix/prfix/internal/application"
	"github.com/prfix/prfix/internal/domain"
)

// registerTools registers all prfix MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, platform domain.ReviewPlatform) {
	// 1. prfix_classify
	s.AddTool(
		mcplib.NewTool("prfix_classify",
			mcplib.WithDescription("Classify a single review comment by tool, category and priority, and extract its suggestion"),
			mcplib.WithString("body",
				mcplib.Required(),
				mcplib.Description("Comment body as posted on the pull request"),
			),
			mcplib.WithString("path", mcplib.Description("File the comment is attached to")),
			mcplib.WithNumber("line", mcplib.Description("Line the comment is attached to")),
		),
		handleClassify(),
	)

	// 2. prfix_analyze
	s.AddTool(
		mcplib.NewTool("prfix_analyze",
			mcplib.WithDescription("Fetch and classify all review comments on a pull request. Returns the analysis with execution order and recommendations."),
			mcplib.WithNumber("pr_number",
				mcplib.Required(),
				mcplib.Description("Pull request number"),
			),
		),
		handleAnalyze(platform),
	)

	// 3. prfix_plan
	s.AddTool(
		mcplib.NewTool("prfix_plan",
			mcplib.WithDescription("Load and validate a fix plan. Returns the plan and the file visit order."),
			mcplib.WithString("path", mcplib.Description("Fix plan path relative to the project (default "+defaultPlanPath+")")),
		),
		handlePlan(projectPath),
	)

	// 4. prfix_preview
	s.AddTool(
		mcplib.NewTool("prfix_preview",
			mcplib.WithDescription("Dry-run a fix plan against the working tree. Nothing is written."),
			mcplib.WithString("path", mcplib.Description("Fix plan path relative to the project (default "+defaultPlanPath+")")),
		),
		handlePreview(projectPath),
	)
}

var defaultPlanPath = application.PlanPath(domain.DefaultAnalysisOutput)

func handleClassify() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		body, err := request.RequireString("body")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		c, err := domain.Classify(domain.RawComment{
			Body: body,
			Path: request.GetString("path", ""),
			Line: request.GetInt("line", 0),
		})
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(c)
	}
}

func handleAnalyze(platform domain.ReviewPlatform) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		pr := request.GetInt("pr_number", 0)
		if pr <= 0 {
			return errorResult("pr_number must be a positive integer"), nil
		}
		if platform == nil {
			return errorResult("no review platform configured"), nil
		}
		svc := application.NewAnalyzeService(platform, nil, nil, nil)
		analysis, err := svc.Analyze(ctx, pr)
		if err != nil {
			return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
		}
		return jsonResult(analysis)
	}
}

// planView is the prfix_plan result.
type planView struct {
	Plan      *domain.FixPlan `json:"plan"`
	FileOrder []string        `json:"file_order"`
}

func handlePlan(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		plan, err := loadPlan(projectPath, request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return jsonResult(planView{Plan: plan, FileOrder: plan.FileOrder()})
	}
}

func handlePreview(projectPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		plan, err := loadPlan(projectPath, request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		svc := application.NewApplyService(nil, nil, nil, domain.CommitConfig{}, nil)
		report := svc.ApplyPlan(ctx, projectPath, plan, domain.ApplyOptions{DryRun: true, Workers: 1})
		return jsonResult(report)
	}
}

func loadPlan(projectPath string, request mcplib.CallToolRequest) (*domain.FixPlan, error) {
	path := request.GetString("path", defaultPlanPath)
	if !filepath.IsAbs(path) {
		path = filepath.Join(projectPath, path)
	}
	plan, err := planstore.New().LoadPlan(path)
	if err != nil {
		return nil, fmt.Errorf("loading fix plan: %w", err)
	}
	return plan, nil
}

// jsonResult marshals v to JSON and returns it as a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prfix/prfix/internal/domain"
)

// AnalyzeService orchestrates the analyze phase:
// fetch → classify → group → schedule → summarize → persist.
type AnalyzeService struct {
	platform domain.ReviewPlatform
	store    domain.PlanStore
	history  domain.RunHistory
	logger   *slog.Logger
	now      func() time.Time
}

func NewAnalyzeService(
	platform domain.ReviewPlatform,
	store domain.PlanStore,
	history domain.RunHistory,
	logger *slog.Logger,
) *AnalyzeService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AnalyzeService{
		platform: platform,
		store:    store,
		history:  history,
		logger:   logger,
		now:      time.Now,
	}
}

// AnalyzeOptions controls what Run persists.
type AnalyzeOptions struct {
	// ProjectPath is the working tree the run history is recorded under.
	ProjectPath string
	// Output is the analysis document path.
	Output string
	// SkipPlan suppresses the fix-plan sidecar.
	SkipPlan bool
	// PostSummary posts a markdown summary back to the PR.
	PostSummary bool
	// Repo is recorded in the plan so apply can refuse a foreign checkout.
	Repo string
}

// AnalyzeResult is what Run produced and where it was written.
type AnalyzeResult struct {
	Analysis     *domain.Analysis `json:"analysis"`
	Plan         *domain.FixPlan  `json:"plan,omitempty"`
	AnalysisPath string           `json:"analysis_path"`
	PlanPath     string           `json:"plan_path,omitempty"`
}

// PlanPath derives the fix-plan path from the analysis path.
func PlanPath(analysisPath string) string {
	if strings.Contains(analysisPath, ".json") {
		return strings.Replace(analysisPath, ".json", "-plan.json", 1)
	}
	return analysisPath + "-plan.json"
}

// Analyze fetches every review comment on the PR and derives the analysis.
func (s *AnalyzeService) Analyze(ctx context.Context, pr int) (*domain.Analysis, error) {
	s.logger.Info("fetching reviews", "pr", pr)

	comments, err := s.platform.ReviewComments(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("fetching review comments: %w", err)
	}
	reviews, err := s.platform.Reviews(ctx, pr)
	if err != nil {
		return nil, fmt.Errorf("fetching reviews: %w", err)
	}
	s.logger.Info("fetched review data", "comments", len(comments), "reviews", len(reviews))

	all := make([]domain.RawComment, 0, len(comments))
	all = append(all, comments...)
	for _, r := range reviews {
		all = append(all, r.Comments...)
	}

	return AnalyzeComments(pr, all, s.logger), nil
}

// AnalyzeComments classifies, groups and schedules raw comments. Comments
// without a body are skipped and counted.
func AnalyzeComments(pr int, raw []domain.RawComment, logger *slog.Logger) *domain.Analysis {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// 1. Classify
	parsed := make([]domain.ClassifiedComment, 0, len(raw))
	skipped := 0
	for _, rc := range raw {
		c, err := domain.Classify(rc)
		if err != nil {
			logger.Warn("skipping comment", "id", rc.ID, "error", err)
			skipped++
			continue
		}
		parsed = append(parsed, c)
	}

	// 2. Group and schedule
	groups := domain.GroupByFile(parsed)
	order := domain.DetermineExecutionOrder(groups)

	// 3. Summarize
	return &domain.Analysis{
		PRNumber:        pr,
		TotalComments:   len(raw),
		SkippedComments: skipped,
		ParsedComments:  parsed,
		GroupedByFile:   domain.GroupMap(groups),
		ExecutionOrder:  order,
		Summary:         domain.Summarize(parsed),
		Recommendations: domain.Recommend(parsed, groups),
		Groups:          groups,
	}
}

// Plan compiles the fix plan for an analysis, stamping a fresh run id.
func (s *AnalyzeService) Plan(a *domain.Analysis) *domain.FixPlan {
	meta := &domain.PlanMetadata{
		RunID:       uuid.NewString(),
		PRNumber:    a.PRNumber,
		GeneratedAt: s.now().UTC(),
		Tools:       a.Summary.ByTool,
		Categories:  a.Summary.ByCategory,
		Priorities:  a.Summary.ByPriority,
	}
	plan := domain.CompilePlan(a.Groups, a.ExecutionOrder, meta)
	return &plan
}

// Run analyzes the PR and persists the analysis and, unless skipped, the fix
// plan. The analysis document is written before the plan is attempted.
func (s *AnalyzeService) Run(ctx context.Context, pr int, opts AnalyzeOptions) (*AnalyzeResult, error) {
	if opts.Output == "" {
		opts.Output = domain.DefaultAnalysisOutput
	}

	analysis, err := s.Analyze(ctx, pr)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveAnalysis(opts.Output, analysis); err != nil {
		return nil, fmt.Errorf("writing analysis: %w", err)
	}
	s.logger.Info("analysis written", "path", opts.Output)
	result := &AnalyzeResult{Analysis: analysis, AnalysisPath: opts.Output}

	if !opts.SkipPlan {
		plan := s.Plan(analysis)
		plan.Metadata.Repo = opts.Repo
		planPath := PlanPath(opts.Output)
		if err := s.store.SavePlan(planPath, plan); err != nil {
			return result, fmt.Errorf("writing fix plan: %w", err)
		}
		s.logger.Info("fix plan written", "path", planPath, "items", plan.TotalItems)
		result.Plan = plan
		result.PlanPath = planPath
	}

	if opts.PostSummary {
		if err := s.platform.PostComment(ctx, pr, SummaryComment(analysis, result.Plan)); err != nil {
			return result, fmt.Errorf("posting summary: %w", err)
		}
		s.logger.Info("summary posted", "pr", pr)
	}

	s.record(opts.ProjectPath, result)
	return result, nil
}

func (s *AnalyzeService) record(projectPath string, result *AnalyzeResult) {
	if s.history == nil {
		return
	}
	entry := domain.RunEntry{
		RunID:     uuid.NewString(),
		Phase:     domain.PhaseAnalyze,
		PRNumber:  result.Analysis.PRNumber,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
	if result.Plan != nil {
		entry.RunID = result.Plan.Metadata.RunID
		entry.Items = result.Plan.TotalItems
	}
	if err := s.history.Save(projectPath, entry); err != nil {
		s.logger.Warn("recording run history", "error", err)
	}
}

// SummaryComment renders the analysis as a markdown PR comment.
func SummaryComment(a *domain.Analysis, plan *domain.FixPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Review triage for PR #%d\n\n", a.PRNumber)
	fmt.Fprintf(&b, "Analyzed **%d** comments across **%d** files.\n\n", a.TotalComments, len(a.GroupedByFile))

	b.WriteString("| Priority | Count |\n|---|---|\n")
	for _, p := range domain.ValidPriorities {
		if n := a.Summary.ByPriority[p]; n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", p, n)
		}
	}

	fmt.Fprintf(&b, "\n**Execution order:** %d before, %d parallel, %d after\n",
		len(a.ExecutionOrder.Before), len(a.ExecutionOrder.Parallel), len(a.ExecutionOrder.After))
	if plan != nil {
		fmt.Fprintf(&b, "**Fix items:** %d\n", plan.TotalItems)
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("\n### Recommendations\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}

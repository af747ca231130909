package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prfix/prfix/internal/adapters/outbound/history"
	"github.com/prfix/prfix/internal/adapters/outbound/planstore"
	"github.com/prfix/prfix/internal/adapters/outbound/tui"
	"github.com/prfix/prfix/internal/application"
)

func newAnalyzeCmd(ref *appRef) *cobra.Command {
	var (
		prNumber    int
		repo        string
		output      string
		skipPlan    bool
		jsonOutput  bool
		postSummary bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Classify review comments on a PR and write a fix plan",
		Long: "Fetch every review comment on a pull request, classify it by tool, category and priority, " +
			"compute the execution order, and write the analysis and fix-plan documents.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ref.app
			if prNumber <= 0 {
				return fmt.Errorf("--pr-number must be a positive integer")
			}
			if output == "" {
				output = app.Config.AnalysisOutput
			}

			target := app.repo(repo)
			platform, err := app.platform(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("connecting to review platform: %w", err)
			}

			svc := application.NewAnalyzeService(platform, planstore.New(), history.New(), app.Logger)
			res, err := svc.Run(cmd.Context(), prNumber, application.AnalyzeOptions{
				ProjectPath: app.Root,
				Output:      app.resolve(output),
				SkipPlan:    skipPlan,
				PostSummary: postSummary,
				Repo:        target,
			})
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if jsonOutput {
				return renderJSON(cmd, res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, tui.RenderAnalysis(res.Analysis))
			fmt.Fprintf(out, "Analysis written to: %s\n", res.AnalysisPath)
			if res.Plan != nil {
				fmt.Fprintf(out, "Fix plan written to: %s\n", res.PlanPath)
				fmt.Fprintf(out, "Total fix items: %d\n", res.Plan.TotalItems)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&prNumber, "pr-number", "n", 0, "Pull request number")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository in owner/name form")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Analysis document path (default from config)")
	cmd.Flags().BoolVar(&skipPlan, "skip-apply", false, "Do not write the fix plan")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&postSummary, "post-summary", false, "Post a summary comment on the PR")
	_ = cmd.MarkFlagRequired("pr-number")

	return cmd
}

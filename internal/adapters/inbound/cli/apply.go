package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prfix/prfix/internal/adapters/outbound/history"
	"github.com/prfix/prfix/internal/adapters/outbound/planstore"
	"github.com/prfix/prfix/internal/adapters/outbound/tui"
	"github.com/prfix/prfix/internal/application"
	"github.com/prfix/prfix/internal/domain"
)

func newApplyCmd(ref *appRef) *cobra.Command {
	var (
		planPath   string
		repo       string
		dryRun     bool
		commitFlag bool
		workers    int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a fix plan to the working tree",
		Long: "Visit the files of a fix plan in execution order, apply each suggestion with the strategy " +
			"for its file type, validate the result, and optionally commit and push.\n\n" +
			"apply works from the plan file alone and never contacts the review platform. " +
			"--repo only guards against applying a plan generated for another repository.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ref.app
			if planPath == "" {
				planPath = application.PlanPath(app.Config.AnalysisOutput)
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.Config.Workers
			}
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}

			var vcs domain.VersionControl
			if !dryRun {
				vcs = app.vcs()
			}

			opts := domain.ApplyOptions{DryRun: dryRun, Commit: commitFlag, Workers: workers, Repo: repo}
			if !jsonOutput {
				opts.OnPlan = func(plan *domain.FixPlan) {
					fmt.Fprint(cmd.OutOrStdout(), tui.RenderPlan(plan))
				}
				opts.OnProgress = func(done, total int) {
					fmt.Fprintln(cmd.ErrOrStderr(), tui.RenderProgress(done, total))
				}
			}

			svc := application.NewApplyService(planstore.New(), vcs, history.New(), app.Config.Commit, app.Logger)
			report, err := svc.Run(cmd.Context(), app.Root, app.resolve(planPath), opts)
			if report != nil {
				if jsonOutput {
					if rerr := renderJSON(cmd, report); rerr != nil {
						return rerr
					}
				} else {
					fmt.Fprint(cmd.OutOrStdout(), tui.RenderApplyReport(report))
				}
			}
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "Fix plan path (default derived from the analysis output)")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Refuse plans generated for a repository other than owner/name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute edits without writing files")
	cmd.Flags().BoolVar(&commitFlag, "commit", false, "Commit and push the fixes")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent workers for the parallel bucket")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prfix/prfix/internal/adapters/outbound/history"
	"github.com/prfix/prfix/internal/adapters/outbound/tui"
	"github.com/prfix/prfix/internal/domain"
)

func newHistoryCmd(ref *appRef) *cobra.Command {
	var (
		prNumber   int
		latest     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded analyze and apply runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := history.New()
			var (
				entries []domain.RunEntry
				err     error
			)
			if prNumber > 0 {
				entries, err = store.ForPR(ref.app.Root, prNumber)
			} else {
				entries, err = store.Load(ref.app.Root)
			}
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}
			if latest {
				entries = latestRuns(entries)
			}

			if jsonOutput {
				if entries == nil {
					entries = []domain.RunEntry{}
				}
				return renderJSON(cmd, entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&prNumber, "pr-number", "n", 0, "Only show runs for this pull request")
	cmd.Flags().BoolVar(&latest, "latest", false, "Only show the last analyze and the last apply run")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	return cmd
}

// latestRuns keeps the last analyze and last apply entry, oldest first.
func latestRuns(entries []domain.RunEntry) []domain.RunEntry {
	var out []domain.RunEntry
	analyze := history.Latest(entries, domain.PhaseAnalyze)
	apply := history.Latest(entries, domain.PhaseApply)
	for i := range entries {
		if e := &entries[i]; e == analyze || e == apply {
			out = append(out, *e)
		}
	}
	return out
}

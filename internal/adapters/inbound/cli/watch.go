package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/prfix/prfix/internal/adapters/outbound/jobs"
	"github.com/prfix/prfix/internal/adapters/outbound/tui"
	"github.com/prfix/prfix/internal/application"
)

func newWatchCmd(ref *appRef) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch SESSION_ID",
		Short: "Poll a remote fix session until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ref.app
			watchCfg := app.Config.Watch
			if interval > 0 {
				watchCfg.Interval = interval
			}

			tracker, err := jobs.NewFromEnv(watchCfg.APIBase)
			if err != nil {
				return err
			}

			sessionID := args[0]
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checking session: %s\n", sessionID)

			svc := application.NewWatchService(tracker, watchCfg, app.Logger)
			status, err := svc.Watch(cmd.Context(), sessionID, func(u application.WatchUpdate) {
				fmt.Fprint(out, tui.RenderWatchStatus(u.Poll, u.Status, u.Activities))
			})
			if err != nil {
				return fmt.Errorf("watching session: %w", err)
			}
			if status.State != "SUCCEEDED" {
				return fmt.Errorf("session finished with status: %s", status.State)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval, e.g. 10s (default from config)")
	return cmd
}

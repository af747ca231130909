package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// appRef is filled by the root command before any subcommand runs.
type appRef struct {
	app *App
}

func newRootCmd() *cobra.Command {
	var (
		path    string
		verbose bool
		ref     appRef
	)

	cmd := &cobra.Command{
		Use:   "prfix",
		Short: "Triage PR review comments and apply their fixes",
		Long: "prfix reads the comments automated reviewers left on a pull request, " +
			"classifies and prioritizes them, writes a fix plan, and applies it to the working tree.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := initApp(path, verbose, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ref.app = app
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&path, "path", ".", "Working tree root")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(&ref))
	cmd.AddCommand(newApplyCmd(&ref))
	cmd.AddCommand(newHistoryCmd(&ref))
	cmd.AddCommand(newWatchCmd(&ref))
	cmd.AddCommand(newMCPCmd(&ref))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI and prints any error to stderr.
func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

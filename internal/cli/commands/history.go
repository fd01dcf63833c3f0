package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwt/internal/config"
	"pwt/internal/storage"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config *config.Config
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config) *HistoryCommand {
	return &HistoryCommand{config: cfg}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	dsn, err := storage.ResultsDSN(hc.config)
	if err != nil {
		return err
	}
	db, err := storage.NewSQLStorage(hc.config.Flags.ResultsDriver, dsn)
	if err != nil {
		return fmt.Errorf("open results database: %w", err)
	}
	defer db.Close()

	runs, err := db.History(cmd.Context(), hc.config.Flags.HistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No recorded runs")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTIMESTAMP\tWORKFLOWS\tFAILED\tCHECKS FAILED\tDURATION")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d/%d\t%.2fs\n",
			shortRunID(r.RunID), r.Timestamp, r.TotalWorkflows, r.FailedWorkflows, r.FailedChecks, r.TotalChecks, r.DurationSeconds)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	flaky, err := db.FlakyWorkflows(cmd.Context())
	if err != nil {
		return err
	}
	if len(flaky) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgYellow).Fprintln(out, "Flaky workflows:")
		for _, f := range flaky {
			fmt.Fprintf(out, "  %s (failed %d of %d runs)\n", f.Name, f.Failed, f.Runs)
		}
	}
	return nil
}

// shortRunID abbreviates a run ID for the table.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

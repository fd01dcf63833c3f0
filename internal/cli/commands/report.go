package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pwt/internal/config"
	"pwt/internal/storage"
	"pwt/internal/ui"
)

// ReportCommand handles the report command
type ReportCommand struct {
	config  *config.Config
	storage storage.Storage
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(cfg *config.Config, st storage.Storage) *ReportCommand {
	return &ReportCommand{
		config:  cfg,
		storage: st,
	}
}

// Execute runs the command
func (rc *ReportCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := rc.storage.Load()
	if err != nil {
		return err
	}

	report := ui.RenderMarkdown(results)
	if rc.config.Flags.HTML {
		if report, err = ui.RenderHTML(report); err != nil {
			return err
		}
	}

	if rc.config.Flags.ReportOutput == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), report)
		return err
	}
	if err := os.WriteFile(rc.config.Flags.ReportOutput, []byte(report), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

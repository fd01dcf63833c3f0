package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwt/internal/config"
	"pwt/internal/discovery"
	"pwt/internal/storage"
	"pwt/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
	storage storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:  cfg,
		scanner: scanner,
		filter:  filter,
		storage: st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	workflows, err := discoverWorkflows(lc.config, lc.scanner, lc.filter)
	if err != nil {
		return err
	}

	if len(workflows) == 0 {
		color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No workflows found")
		return nil
	}

	// Mark workflows that failed in the last run, if there is one
	failed := make(map[string]struct{})
	if last, err := lc.storage.Load(); err == nil {
		for _, d := range last.Details {
			failed[d.Workflow] = struct{}{}
		}
	}

	ui.NewFormatter(lc.config, cmd.OutOrStdout()).PrintWorkflowList(workflows, lc.config.Flags.ShowChecks, failed)
	return nil
}

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pwt/internal/config"
	"pwt/internal/discovery"
)

// ValidateCommand handles the validate command
type ValidateCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
}

// NewValidateCommand creates a new ValidateCommand
func NewValidateCommand(cfg *config.Config, scanner *discovery.Scanner) *ValidateCommand {
	return &ValidateCommand{
		config:  cfg,
		scanner: scanner,
	}
}

// Execute runs the command
func (vc *ValidateCommand) Execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	files, err := vc.scanner.Scan(vc.config.GetTestPath())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No test files found")
		return nil
	}

	loader, err := discovery.NewLoader()
	if err != nil {
		return err
	}

	if errs := loader.ValidateAll(files); len(errs) > 0 {
		for _, e := range errs {
			color.New(color.FgRed).Fprintf(out, "✗ %v\n", e)
		}
		return fmt.Errorf("%d of %d test file(s) invalid", len(errs), len(files))
	}

	// Schema-valid files can still clash on workflow names
	workflows, err := loader.LoadAll(files)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(out, "✓ %d test file(s) with %d workflow(s) are valid\n", len(files), len(workflows))
	return nil
}

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"pwt/internal/cli"
	"pwt/internal/config"
	"pwt/internal/discovery"
	"pwt/internal/domain"
	"pwt/internal/execution"
	"pwt/internal/logger"
	"pwt/internal/storage"
	"pwt/internal/ui"
	"pwt/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
	storage storage.Storage
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	st storage.Storage,
) *RunCommand {
	return &RunCommand{
		config:  cfg,
		scanner: scanner,
		filter:  filter,
		storage: st,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	log := logger.New(cmd.ErrOrStderr(), rc.config.Flags.LogLevel)

	// Discover workflows
	workflows, err := discoverWorkflows(rc.config, rc.scanner, rc.filter)
	if err != nil {
		return err
	}

	if len(workflows) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No workflows to execute")
		return nil
	}

	env, err := rc.config.WorkflowEnv()
	if err != nil {
		return err
	}

	baseTemp, err := rc.config.GetBaseTemp()
	if err != nil {
		return err
	}
	if rc.config.Flags.BaseTemp == "" && !rc.config.Flags.KeepWorkflowWD {
		defer os.RemoveAll(baseTemp)
	}
	log.Debug("workflow working directories", "basetemp", baseTemp)

	provisioner, err := workspace.NewProvisioner(rc.config.ProjectPath, baseTemp, rc.config.PathsToIgnore, log)
	if err != nil {
		return err
	}
	runner := execution.NewRunner(rc.config, provisioner, env, log)
	executor := execution.NewWorkerPool(rc.config, runner, log)

	// Create and set progress bar
	if ui.IsTerminal(os.Stderr) {
		executor.SetProgress(ui.NewProgressBar(len(workflows), os.Stderr))
	}

	// Execute workflows
	results, duration, err := executor.Execute(cmd.Context(), workflows)
	if err != nil {
		return err
	}

	// Save results
	output := storage.BuildOutput(results, duration, rc.config.WorkerCount())
	if err := rc.storage.Save(output); err != nil {
		return fmt.Errorf("failed to save workflow results: %w", err)
	}
	if err := rc.record(cmd, output, results, log); err != nil {
		return err
	}

	// Print stats
	ui.NewFormatter(rc.config, out).PrintSummary(output)

	if output.Meta.FailedWorkflows == 0 {
		return nil
	}
	if rc.config.Flags.OpenFailures {
		viewer := ui.NewFailureViewer(rc.storage, out)
		if err := viewer.View(output); err != nil {
			return err
		}
	}
	return cli.ErrChecksFailed
}

// record stores the run in the results database when one is configured
func (rc *RunCommand) record(cmd *cobra.Command, output *domain.RunOutput, results []domain.WorkflowResult, log *slog.Logger) error {
	if rc.config.Flags.ResultsDB == "" && rc.config.Flags.ResultsDriver != storage.DriverMySQL {
		return nil
	}

	dsn, err := storage.ResultsDSN(rc.config)
	if err != nil {
		return err
	}
	db, err := storage.NewSQLStorage(rc.config.Flags.ResultsDriver, dsn)
	if err != nil {
		return fmt.Errorf("open results database: %w", err)
	}
	defer db.Close()

	if err := db.Record(cmd.Context(), output, results); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	log.Debug("run recorded", "run_id", output.Meta.RunID, "driver", rc.config.Flags.ResultsDriver)
	return nil
}

package commands

import (
	"pwt/internal/cli"
	"pwt/internal/config"
	"pwt/internal/discovery"
	"pwt/internal/storage"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Validate *ValidateCommand
	Failures *FailuresCommand
	Report   *ReportCommand
	History  *HistoryCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	jsonStorage := storage.NewJSONStorage(cfg)

	return &Commands{
		Run:      NewRunCommand(cfg, scanner, filter, jsonStorage),
		List:     NewListCommand(cfg, scanner, filter, jsonStorage),
		Validate: NewValidateCommand(cfg, scanner),
		Failures: NewFailuresCommand(cfg, jsonStorage),
		Report:   NewReportCommand(cfg, jsonStorage),
		History:  NewHistoryCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Update config with flags after parsing; a positional path overrides --test-path
	applyFlags := func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			flags.TestPath = args[0]
		}
		cfg.Apply(flags.ToConfigFlags())
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [path]",
		Short:   "Run workflows and verify their outcomes",
		Long:    "Discover workflow test files, execute every workflow in its own working directory and check exit codes, output and files",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Run.Execute,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", config.DefaultProcessors, "Number of workflows to run in parallel")
	runCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test discovery should start")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter workflows by name pattern (supports wildcards, e.g., '*echo*')")
	runCmd.Flags().StringSliceVar(&flags.Tags, "tag", nil, "Run only workflows with one of these tags")
	runCmd.Flags().StringVar(&flags.BaseTemp, "basetemp", "", "Directory in which workflow working directories are created")
	runCmd.Flags().BoolVar(&flags.KeepWorkflowWD, "keep-workflow-wd", false, "Keep workflow working directories after the run")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", config.DefaultTimeout, "Kill a workflow that runs longer than this (0 disables)")
	runCmd.Flags().StringVar(&flags.EnvFile, "env-file", "", "Dotenv file added to every workflow's environment (default .env)")
	runCmd.Flags().StringVar(&flags.ResultsDB, "results-db", "", "Also record the run in this SQL database")
	runCmd.Flags().StringVar(&flags.ResultsDriver, "results-driver", config.DefaultResultsDriver, "SQL driver for --results-db (sqlite3, mysql)")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [path]",
		Short:   "List discovered workflows",
		Long:    "Scan and list all workflows without executing them",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: applyFlags,
		RunE:    c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test discovery should start")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter workflows by name pattern (supports wildcards, e.g., '*echo*')")
	listCmd.Flags().StringSliceVar(&flags.Tags, "tag", nil, "List only workflows with one of these tags")
	listCmd.Flags().BoolVarP(&flags.ShowChecks, "checks", "c", false, "List the checks each workflow declares")
	rootCmd.AddCommand(listCmd)

	// Validate command
	validateCmd := &cobra.Command{
		Use:     "validate [path]",
		Short:   "Validate workflow test files",
		Long:    "Check every discovered test file against the workflow schema without running anything",
		Args:    cobra.MaximumNArgs(1),
		PreRunE: applyFlags,
		RunE:    c.Validate.Execute,
	}
	validateCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test discovery should start")
	rootCmd.AddCommand(validateCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failed checks interactively",
		Long:    "Display failed checks from the last run in an interactive viewer",
		Args:    cobra.NoArgs,
		PreRunE: applyFlags,
		RunE:    c.Failures.Execute,
	}
	rootCmd.AddCommand(failuresCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:     "report",
		Short:   "Render a report of the last run",
		Long:    "Render the last run as Markdown, or as HTML with --html",
		Args:    cobra.NoArgs,
		PreRunE: applyFlags,
		RunE:    c.Report.Execute,
	}
	reportCmd.Flags().BoolVar(&flags.HTML, "html", false, "Render HTML instead of Markdown")
	reportCmd.Flags().StringVarP(&flags.ReportOutput, "output", "o", "", "Write the report to this file instead of stdout")
	rootCmd.AddCommand(reportCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recorded runs and flaky workflows",
		Long:    "Show the most recent runs recorded in the results database and the workflows that both passed and failed",
		Args:    cobra.NoArgs,
		PreRunE: applyFlags,
		RunE:    c.History.Execute,
	}
	historyCmd.Flags().StringVar(&flags.ResultsDB, "results-db", "", "SQL database the runs were recorded in")
	historyCmd.Flags().StringVar(&flags.ResultsDriver, "results-driver", config.DefaultResultsDriver, "SQL driver (sqlite3, mysql)")
	historyCmd.Flags().IntVarP(&flags.HistoryLimit, "limit", "n", config.DefaultHistoryLimit, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

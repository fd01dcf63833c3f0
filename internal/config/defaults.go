package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "workflow-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = ".pwt"
	// DefaultProcessors is the default number of processors
	DefaultProcessors = 1
	// DefaultEnvFile is the dotenv file loaded into every workflow's environment
	DefaultEnvFile = ".env"
	// DefaultResultsDriver is the SQL driver used when a results database is configured
	DefaultResultsDriver = "sqlite3"
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"
	// DefaultTimeout disables the per-workflow deadline
	DefaultTimeout time.Duration = 0
	// DefaultHistoryLimit is the number of runs shown by the history command
	DefaultHistoryLimit = 10
	// BaseTempPrefix prefixes the temporary directory created when no basetemp is given
	BaseTempPrefix = "pwt-"
)

// DefaultPathsToIgnore are the directories not copied into workflow workspaces
// and not scanned for test files
var DefaultPathsToIgnore = []string{
	".git",
	".pwt",
	"node_modules",
	"__pycache__",
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	TestPath    string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors int
	Timeout    time.Duration

	// Paths to ignore when scanning and copying
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Processors     int
	TestPath       string
	NameFilter     string
	Tags           []string
	BaseTemp       string
	KeepWorkflowWD bool
	Timeout        time.Duration
	EnvFile        string
	ResultsDB      string
	ResultsDriver  string
	LogLevel       string
	ShowChecks     bool
	OpenFailures   bool
	HTML           bool
	ReportOutput   string
	HistoryLimit   int
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:    DefaultProjectPath,
		TestPath:       DefaultTestPath,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		Processors:     DefaultProcessors,
		Timeout:        DefaultTimeout,
		Flags: Flags{
			Processors:    DefaultProcessors,
			ResultsDriver: DefaultResultsDriver,
			LogLevel:      DefaultLogLevel,
			HistoryLimit:  DefaultHistoryLimit,
		},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.Apply(flags)
	return cfg
}

// Apply overlays parsed command-line flags onto the config
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	if c.Flags.ResultsDriver == "" {
		c.Flags.ResultsDriver = DefaultResultsDriver
	}
	if c.Flags.LogLevel == "" {
		c.Flags.LogLevel = DefaultLogLevel
	}
	if c.Flags.HistoryLimit <= 0 {
		c.Flags.HistoryLimit = DefaultHistoryLimit
	}
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to ProjectPath if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	// Default: combine project path and test path
	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetBaseTemp returns the directory under which workflow workspaces are created.
// Without a --basetemp flag a fresh temporary directory is created.
func (c *Config) GetBaseTemp() (string, error) {
	if c.Flags.BaseTemp != "" {
		abs, err := filepath.Abs(c.Flags.BaseTemp)
		if err != nil {
			return "", fmt.Errorf("resolve basetemp %s: %w", c.Flags.BaseTemp, err)
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			return "", fmt.Errorf("create basetemp %s: %w", abs, err)
		}
		return abs, nil
	}
	dir, err := os.MkdirTemp("", BaseTempPrefix)
	if err != nil {
		return "", fmt.Errorf("create temporary basetemp: %w", err)
	}
	return dir, nil
}

// GetEnvFile returns the dotenv file path and whether it was set explicitly
func (c *Config) GetEnvFile() (string, bool) {
	if c.Flags.EnvFile != "" {
		if filepath.IsAbs(c.Flags.EnvFile) {
			return c.Flags.EnvFile, true
		}
		return filepath.Join(c.ProjectPath, c.Flags.EnvFile), true
	}
	return filepath.Join(c.ProjectPath, DefaultEnvFile), false
}

// WorkerCount returns the number of workers, never less than one
func (c *Config) WorkerCount() int {
	if c.Processors <= 0 {
		return 1
	}
	return c.Processors
}

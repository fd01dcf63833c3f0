package cli

import (
	"errors"
	"time"

	"pwt/internal/config"
)

// ErrChecksFailed is returned by run when at least one check failed. The
// summary has already been printed, so callers only set the exit status.
var ErrChecksFailed = errors.New("one or more checks failed")

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:     f.Processors,
		TestPath:       f.TestPath,
		NameFilter:     f.NameFilter,
		Tags:           f.Tags,
		BaseTemp:       f.BaseTemp,
		KeepWorkflowWD: f.KeepWorkflowWD,
		Timeout:        f.Timeout,
		EnvFile:        f.EnvFile,
		ResultsDB:      f.ResultsDB,
		ResultsDriver:  f.ResultsDriver,
		LogLevel:       f.LogLevel,
		ShowChecks:     f.ShowChecks,
		OpenFailures:   f.OpenFailures,
		HTML:           f.HTML,
		ReportOutput:   f.ReportOutput,
		HistoryLimit:   f.HistoryLimit,
	}
}

package domain

import "time"

// CheckResult is the outcome of one independent assertion on a workflow run.
type CheckResult struct {
	Workflow string `json:"workflow"`
	Scope    string `json:"scope,omitempty"` // "stdout", "stderr", a file path, or empty for the exit code
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Detail   string `json:"detail,omitempty"`
}

// ID returns a display identifier that is unique within a run.
func (c CheckResult) ID() string {
	if c.Scope == "" {
		return c.Workflow + "::" + c.Name
	}
	return c.Workflow + "::" + c.Scope + "::" + c.Name
}

// WorkflowResult represents the result of executing one workflow
type WorkflowResult struct {
	Name     string        // Workflow name
	Command  string        // Command as written in the test file
	Dir      string        // Working directory the command ran in
	ExitCode int           // Exit code of the process, -1 if it never ran
	Checks   []CheckResult // Ordered check results
	Error    error         // Execution error (spawn, provisioning, timeout)
	Duration time.Duration // Time taken to execute
}

// Passed reports whether every check of the workflow passed.
func (r WorkflowResult) Passed() bool {
	if len(r.Checks) == 0 {
		return r.Error == nil
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// FailedChecks returns the failing checks in order.
func (r WorkflowResult) FailedChecks() []CheckResult {
	var failed []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// RunMeta contains metadata about a run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	TotalWorkflows  int     `json:"total_workflows"`
	PassedWorkflows int     `json:"passed_workflows"`
	FailedWorkflows int     `json:"failed_workflows"`
	TotalChecks     int     `json:"total_checks"`
	FailedChecks    int     `json:"failed_checks"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the complete persisted structure of a run
type RunOutput struct {
	Meta    RunMeta        `json:"meta"`
	Details []CheckFailure `json:"details"`
}

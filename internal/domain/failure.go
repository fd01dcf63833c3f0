package domain

// CheckFailure represents a failed check as persisted after a run
type CheckFailure struct {
	CheckResult
	Command  string `json:"command"`
	Dir      string `json:"dir,omitempty"`
	Resolved bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}

// NewCheckFailure wraps a failing check with the context of its workflow.
func NewCheckFailure(result WorkflowResult, check CheckResult) CheckFailure {
	return CheckFailure{
		CheckResult: check,
		Command:     result.Command,
		Dir:         result.Dir,
	}
}

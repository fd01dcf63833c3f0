package execution

import (
	"context"
	"time"

	"pwt/internal/domain"
	"pwt/internal/workspace"
)

// Executor runs workflows and returns their results
type Executor interface {
	Execute(ctx context.Context, workflows []domain.Workflow) ([]domain.WorkflowResult, time.Duration, error)
}

// Provisioner hands out isolated working directories
type Provisioner interface {
	Provision(name string) (*workspace.Workspace, error)
}

// Progress receives completion counts while workflows finish
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

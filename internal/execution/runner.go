package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"pwt/internal/checks"
	"pwt/internal/config"
	"pwt/internal/domain"
	"pwt/internal/workspace"
)

// WorkflowNameEnv is set in every workflow process to the workflow's name.
const WorkflowNameEnv = "PWT_WORKFLOW_NAME"

// Runner turns workflows into runnable jobs and evaluates them once they finish
type Runner struct {
	config      *config.Config
	provisioner Provisioner
	env         []string
	logger      *slog.Logger
}

// NewRunner creates a new Runner. env is the base environment of every
// workflow process; nil inherits the current environment.
func NewRunner(cfg *config.Config, provisioner Provisioner, env []string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		config:      cfg,
		provisioner: provisioner,
		env:         env,
		logger:      logger,
	}
}

// Job creates the runnable unit for one workflow.
func (r *Runner) Job(ctx context.Context, wf domain.Workflow) *Job {
	return &Job{ctx: ctx, runner: r, workflow: wf}
}

// Run executes a single workflow synchronously.
func (r *Runner) Run(ctx context.Context, wf domain.Workflow) domain.WorkflowResult {
	job := r.Job(ctx, wf)
	_ = runUnit(job)
	return job.Result()
}

// Job runs one workflow: it provisions the workspace on Start, and on Wait
// waits for the process, evaluates the checks and cleans up.
type Job struct {
	ctx      context.Context
	runner   *Runner
	workflow domain.Workflow

	ws       *workspace.Workspace
	proc     *Process
	startErr error
	started  time.Time
	result   domain.WorkflowResult
	onDone   func(domain.WorkflowResult)
}

// Start provisions the workspace and launches the workflow command.
func (j *Job) Start() error {
	j.started = time.Now()
	name := j.workflow.Name

	if j.ctx != nil {
		if err := j.ctx.Err(); err != nil {
			j.startErr = fmt.Errorf("workflow not started: %w", err)
			return j.startErr
		}
	}

	ws, err := j.runner.provisioner.Provision(name)
	if err != nil {
		j.startErr = fmt.Errorf("provision workspace: %w", err)
		return j.startErr
	}
	j.ws = ws

	env := j.runner.env
	if env != nil {
		env = append(slices.Clone(env), WorkflowNameEnv+"="+name)
	}

	j.proc = NewProcess(j.workflow.Command, ws.Dir(), env)
	j.runner.logger.Info(fmt.Sprintf("run '%s' with command '%s' in '%s'", name, j.workflow.Command, ws.Dir()))
	if err := j.proc.Start(); err != nil {
		j.startErr = err
		return err
	}
	return nil
}

// Wait blocks until the workflow has finished and its checks are evaluated.
func (j *Job) Wait() error {
	var waitErr error
	if j.startErr == nil {
		waitErr = j.wait()
	}

	j.result = j.runner.finish(j, waitErr)
	if j.onDone != nil {
		j.onDone(j.result)
	}

	if j.startErr != nil {
		return j.startErr
	}
	return waitErr
}

func (j *Job) wait() error {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := j.runner.config.Timeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := j.proc.WaitContext(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		j.runner.logger.Warn(fmt.Sprintf("run '%s': killed after %s", j.workflow.Name, timeout))
		return fmt.Errorf("workflow timed out after %s: %w", timeout, err)
	case errors.Is(err, context.Canceled):
		j.runner.logger.Warn(fmt.Sprintf("run '%s': cancelled", j.workflow.Name))
		return fmt.Errorf("workflow cancelled: %w", err)
	}
	return err
}

// Result returns the workflow result. It is only complete after Wait.
func (j *Job) Result() domain.WorkflowResult {
	return j.result
}

// finish evaluates the checks of a job and removes its workspace unless the
// workspace is to be kept.
func (r *Runner) finish(j *Job, waitErr error) domain.WorkflowResult {
	wf := j.workflow
	result := domain.WorkflowResult{
		Name:     wf.Name,
		Command:  wf.Command,
		ExitCode: -1,
		Error:    j.startErr,
	}

	var dir string
	if j.ws != nil {
		dir = j.ws.Dir()
		result.Dir = dir
	}

	var outcome checks.Outcome
	if j.startErr == nil {
		outcome = j.proc
		result.ExitCode = j.proc.ExitCode()
		if waitErr != nil {
			result.Error = waitErr
		}
		r.logger.Info(fmt.Sprintf("run '%s': done", wf.Name))

		stdoutPath, stderrPath, err := j.proc.WriteLogs(dir)
		if err != nil {
			r.logger.Warn("could not save workflow logs", "workflow", wf.Name, "error", err)
		} else if r.config.Flags.KeepWorkflowWD {
			r.logger.Info(fmt.Sprintf("'%s' stdout saved in: %s", wf.Name, stdoutPath))
			r.logger.Info(fmt.Sprintf("'%s' stderr saved in: %s", wf.Name, stderrPath))
		}
	} else {
		r.logger.Error(fmt.Sprintf("run '%s': could not start", wf.Name), "error", j.startErr)
	}

	result.Checks = checks.Evaluate(checks.Build(wf, outcome, dir, j.startErr))
	result.Duration = time.Since(j.started)

	if j.ws != nil && !r.config.Flags.KeepWorkflowWD {
		if err := j.ws.Remove(); err != nil {
			r.logger.Warn("could not remove workspace", "workflow", wf.Name, "dir", dir, "error", err)
		}
	}

	return result
}

package execution

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pwt/internal/config"
	"pwt/internal/domain"
)

// WorkerPool runs workflows in parallel on a WorkQueue
type WorkerPool struct {
	config   *config.Config
	runner   *Runner
	progress Progress
	logger   *slog.Logger

	mu        sync.Mutex
	completed int
	passed    int
	failed    int
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *Runner, logger *slog.Logger) *WorkerPool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WorkerPool{
		config: cfg,
		runner: runner,
		logger: logger,
	}
}

// SetProgress sets the progress reporter for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every workflow to completion and returns the results in the
// order the workflows were given. A failing workflow never stops the others.
func (wp *WorkerPool) Execute(ctx context.Context, workflows []domain.Workflow) ([]domain.WorkflowResult, time.Duration, error) {
	if len(workflows) == 0 {
		return nil, 0, nil
	}

	wp.mu.Lock()
	wp.completed, wp.passed, wp.failed = 0, 0, 0
	wp.mu.Unlock()

	startTime := time.Now()
	queue := NewWorkQueue()
	jobs := make([]*Job, len(workflows))
	for i, wf := range workflows {
		job := wp.runner.Job(ctx, wf)
		job.onDone = wp.record
		jobs[i] = job
		if err := queue.Enqueue(job); err != nil {
			return nil, 0, err
		}
	}

	workers := wp.config.WorkerCount()
	wp.logger.Debug("executing workflows", "workflows", len(workflows), "workers", workers)
	if err := queue.Process(workers); err != nil {
		wp.logger.Debug("workflows reported errors", "error", err)
	}

	if wp.progress != nil {
		wp.progress.Finish()
	}

	results := make([]domain.WorkflowResult, len(jobs))
	for i, job := range jobs {
		results[i] = job.Result()
	}
	return results, time.Since(startTime), nil
}

func (wp *WorkerPool) record(result domain.WorkflowResult) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	wp.completed++
	if result.Passed() {
		wp.passed++
	} else {
		wp.failed++
	}
	if wp.progress != nil {
		wp.progress.Update(wp.completed, wp.passed, wp.failed)
	}
}

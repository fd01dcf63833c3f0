package storage

import (
	"time"

	"github.com/google/uuid"

	"pwt/internal/config"
	"pwt/internal/domain"
)

// Storage persists and loads run results (e.g. for the failures viewer).
type Storage interface {
	Save(output *domain.RunOutput) error
	Load() (*domain.RunOutput, error)
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// BuildOutput summarizes workflow results into the persisted run structure.
// Only failing checks are kept as details.
func BuildOutput(results []domain.WorkflowResult, duration time.Duration, workers int) *domain.RunOutput {
	meta := domain.RunMeta{
		RunID:           uuid.NewString(),
		TotalWorkflows:  len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	details := []domain.CheckFailure{}
	for _, r := range results {
		if r.Passed() {
			meta.PassedWorkflows++
		} else {
			meta.FailedWorkflows++
		}
		meta.TotalChecks += len(r.Checks)
		for _, c := range r.FailedChecks() {
			meta.FailedChecks++
			details = append(details, domain.NewCheckFailure(r, c))
		}
	}

	return &domain.RunOutput{Meta: meta, Details: details}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pwt/internal/config"
	"pwt/internal/domain"
)

func sampleResults() []domain.WorkflowResult {
	return []domain.WorkflowResult{
		{
			Name:     "simple echo",
			Command:  "echo moo",
			Dir:      "/tmp/pwt/simple_echo",
			Duration: 20 * time.Millisecond,
			Checks: []domain.CheckResult{
				{Workflow: "simple echo", Name: "exit code should be 0", Passed: true},
				{Workflow: "simple echo", Scope: "stdout", Name: "contains 'moo'", Passed: true},
			},
		},
		{
			Name:     "grep",
			Command:  "grep",
			Dir:      "/tmp/pwt/grep",
			ExitCode: 2,
			Duration: 10 * time.Millisecond,
			Checks: []domain.CheckResult{
				{Workflow: "grep", Name: "exit code should be 0", Detail: "The workflow exited with exit code '2' instead of '0'."},
				{Workflow: "grep", Scope: "stdout", Name: "contains 'x'", Detail: "'x' was not found in stdout"},
			},
			Error: errors.New("boom"),
		},
	}
}

func TestBuildOutput(t *testing.T) {
	output := BuildOutput(sampleResults(), 2*time.Second, 4)

	_, err := uuid.Parse(output.Meta.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, output.Meta.TotalWorkflows)
	assert.Equal(t, 1, output.Meta.PassedWorkflows)
	assert.Equal(t, 1, output.Meta.FailedWorkflows)
	assert.Equal(t, 4, output.Meta.TotalChecks)
	assert.Equal(t, 2, output.Meta.FailedChecks)
	assert.Equal(t, 4, output.Meta.Workers)
	assert.InDelta(t, 2.0, output.Meta.DurationSeconds, 0.001)

	require.Len(t, output.Details, 2)
	assert.Equal(t, "grep::exit code should be 0", output.Details[0].ID())
	assert.Equal(t, "grep", output.Details[0].Command)
	assert.Equal(t, "/tmp/pwt/grep", output.Details[0].Dir)
}

func TestBuildOutput_NoFailuresHasEmptyDetails(t *testing.T) {
	output := BuildOutput(sampleResults()[:1], time.Second, 1)
	assert.NotNil(t, output.Details)
	assert.Empty(t, output.Details)
}

func newJSONStorage(t *testing.T) *JSONStorage {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	return NewJSONStorage(cfg)
}

func TestJSONStorage_RoundTrip(t *testing.T) {
	st := newJSONStorage(t)
	output := BuildOutput(sampleResults(), time.Second, 2)
	output.Details[1].Resolved = true

	require.NoError(t, st.Save(output))

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, output, loaded)

	_, err = os.Stat(st.cfg.GetOutputPath() + ".lock")
	assert.NoError(t, err)
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	_, err := newJSONStorage(t).Load()
	assert.Error(t, err)
}

func TestJSONStorage_ConcurrentSaves(t *testing.T) {
	st := newJSONStorage(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, st.Save(BuildOutput(sampleResults(), time.Second, 1)))
		}()
	}
	wg.Wait()

	loaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Meta.TotalWorkflows)

	entries, err := os.ReadDir(filepath.Dir(st.cfg.GetOutputPath()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestSQLStorage_RecordAndHistory(t *testing.T) {
	st, err := NewSQLStorage(DriverSQLite, filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	first := BuildOutput(sampleResults(), time.Second, 2)
	first.Meta.Timestamp = "2026-01-01T10:00:00Z"
	require.NoError(t, st.Record(ctx, first, sampleResults()))

	fixed := sampleResults()
	fixed[1].Checks = fixed[1].Checks[:0]
	fixed[1].Error = nil
	second := BuildOutput(fixed, time.Second, 2)
	second.Meta.Timestamp = "2026-01-02T10:00:00Z"
	require.NoError(t, st.Record(ctx, second, fixed))

	runs, err := st.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.Meta.RunID, runs[0].RunID)
	assert.Equal(t, first.Meta.RunID, runs[1].RunID)
	assert.Equal(t, 1, runs[1].FailedWorkflows)
	assert.Equal(t, 2, runs[1].FailedChecks)

	limited, err := st.History(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	flaky, err := st.FlakyWorkflows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []WorkflowStats{{Name: "grep", Runs: 2, Failed: 1}}, flaky)
}

func TestSQLStorage_DuplicateRunRejected(t *testing.T) {
	st, err := NewSQLStorage(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	output := BuildOutput(sampleResults(), time.Second, 1)
	require.NoError(t, st.Record(ctx, output, sampleResults()))
	assert.Error(t, st.Record(ctx, output, sampleResults()))

	runs, err := st.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewSQLStorage_UnsupportedDriver(t *testing.T) {
	_, err := NewSQLStorage("postgres", "x")
	assert.Error(t, err)
}

func TestResultsDSN(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		cfg := config.New()
		cfg.Flags.ResultsDB = "/data/runs.db"
		dsn, err := ResultsDSN(cfg)
		require.NoError(t, err)
		assert.Equal(t, "/data/runs.db", dsn)
	})

	t.Run("sqlite requires an explicit database", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()
		_, err := ResultsDSN(cfg)
		assert.ErrorIs(t, err, ErrNoResultsDB)
	})

	t.Run("mysql from env file", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()
		cfg.Flags.ResultsDriver = DriverMySQL
		env := "PWT_DB_HOST=db.local\nPWT_DB_USERNAME=ci\nPWT_DB_PASSWORD=secret\nPWT_DB_DATABASE=runs\n"
		require.NoError(t, os.WriteFile(filepath.Join(cfg.ProjectPath, ".env"), []byte(env), 0644))

		dsn, err := ResultsDSN(cfg)
		require.NoError(t, err)
		assert.Contains(t, dsn, "ci:secret@tcp(db.local:3306)/runs")
	})

	t.Run("mysql defaults", func(t *testing.T) {
		cfg := config.New()
		cfg.ProjectPath = t.TempDir()
		cfg.Flags.ResultsDriver = DriverMySQL

		dsn, err := ResultsDSN(cfg)
		require.NoError(t, err)
		assert.Contains(t, dsn, "@tcp(127.0.0.1:3306)/pwt")
	})
}

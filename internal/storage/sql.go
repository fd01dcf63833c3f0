package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"pwt/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Supported database drivers
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// SQLStorage keeps a history of runs in a SQL database
type SQLStorage struct {
	db     *sql.DB
	driver string
}

// NewSQLStorage opens the database and creates the tables when missing.
// For sqlite3 the DSN is a file path (or ":memory:").
func NewSQLStorage(driver, dsn string) (*SQLStorage, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	case DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported results driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == DriverSQLite {
		// A single connection keeps ":memory:" databases alive across calls.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy_timeout: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStorage{db: db, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLStorage) initSchema() error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// Record stores one run and its workflow results in a single transaction.
func (s *SQLStorage) Record(ctx context.Context, output *domain.RunOutput, results []domain.WorkflowResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	meta := output.Meta
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, total_workflows, passed_workflows, failed_workflows, total_checks, failed_checks, duration_seconds, workers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.Timestamp, meta.TotalWorkflows, meta.PassedWorkflows, meta.FailedWorkflows,
		meta.TotalChecks, meta.FailedChecks, meta.DurationSeconds, meta.Workers)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range results {
		errText := ""
		if r.Error != nil {
			errText = r.Error.Error()
		}
		passed := 0
		if r.Passed() {
			passed = 1
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO workflow_results (run_id, name, command, dir, exit_code, passed, total_checks, failed_checks, duration_seconds, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.RunID, r.Name, r.Command, r.Dir, r.ExitCode, passed,
			len(r.Checks), len(r.FailedChecks()), r.Duration.Seconds(), errText)
		if err != nil {
			return fmt.Errorf("insert workflow result %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// History returns the most recent runs, newest first.
func (s *SQLStorage) History(ctx context.Context, limit int) ([]domain.RunMeta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, total_workflows, passed_workflows, failed_workflows, total_checks, failed_checks, duration_seconds, workers
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunMeta
	for rows.Next() {
		var m domain.RunMeta
		if err := rows.Scan(&m.RunID, &m.Timestamp, &m.TotalWorkflows, &m.PassedWorkflows, &m.FailedWorkflows,
			&m.TotalChecks, &m.FailedChecks, &m.DurationSeconds, &m.Workers); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

// WorkflowStats is the pass/fail history of one workflow across runs
type WorkflowStats struct {
	Name   string
	Runs   int
	Failed int
}

// FlakyWorkflows returns workflows that both passed and failed in the stored
// history, most failures first.
func (s *SQLStorage) FlakyWorkflows(ctx context.Context) ([]WorkflowStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, COUNT(*), SUM(CASE WHEN passed = 0 THEN 1 ELSE 0 END) AS failed
		FROM workflow_results GROUP BY name
		HAVING SUM(passed) > 0 AND SUM(CASE WHEN passed = 0 THEN 1 ELSE 0 END) > 0
		ORDER BY failed DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query workflow history: %w", err)
	}
	defer rows.Close()

	var stats []WorkflowStats
	for rows.Next() {
		var st WorkflowStats
		if err := rows.Scan(&st.Name, &st.Runs, &st.Failed); err != nil {
			return nil, fmt.Errorf("scan workflow history: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

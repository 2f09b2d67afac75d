// Package journal records bootstrap runs and their phase outcomes in a
// local SQLite database, so operators can audit what a machine went
// through. Recording is best-effort; the bootstrap never fails because
// the journal does.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunStatus represents the status of a bootstrap run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// PhaseStatus represents the outcome of a single phase.
type PhaseStatus string

const (
	PhaseStatusSucceeded PhaseStatus = "succeeded"
	PhaseStatusFailed    PhaseStatus = "failed"
	PhaseStatusSkipped   PhaseStatus = "skipped"
)

// Run represents one bootstrap invocation.
type Run struct {
	ID          string     `json:"id"`
	Distro      string     `json:"distro"`
	Version     string     `json:"version"`
	Channel     string     `json:"channel"`
	Rev         string     `json:"rev,omitempty"`
	Status      RunStatus  `json:"status"`
	ExitCode    int        `json:"exit_code"`
	Error       *string    `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// PhaseResult represents the outcome of one phase within a run.
type PhaseResult struct {
	RunID      string      `json:"run_id"`
	Phase      string      `json:"phase"`
	Handler    string      `json:"handler,omitempty"`
	Status     PhaseStatus `json:"status"`
	Error      *string     `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	DurationMS int64       `json:"duration_ms"`
}

// Journal is a SQLite-backed run recorder.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens the journal database, creating the parent directory and
// running migrations as needed.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

func (j *Journal) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(j.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// BeginRun records the start of a bootstrap run.
func (j *Journal) BeginRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO runs (id, distro, version, channel, rev, status, exit_code, error, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		run.ID,
		run.Distro,
		run.Version,
		run.Channel,
		run.Rev,
		run.Status,
		run.ExitCode,
		run.Error,
		run.StartedAt,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// FinishRun records the final status and exit code of a run.
func (j *Journal) FinishRun(ctx context.Context, id string, status RunStatus, exitCode int, errMsg *string) error {
	query := `
		UPDATE runs
		SET status = ?, exit_code = ?, error = ?, completed_at = ?
		WHERE id = ?
	`

	result, err := j.db.ExecContext(ctx, query, status, exitCode, errMsg, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// RecordPhase appends one phase outcome to a run.
func (j *Journal) RecordPhase(ctx context.Context, result *PhaseResult) error {
	query := `
		INSERT INTO phase_results (run_id, phase, handler, status, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		result.RunID,
		result.Phase,
		result.Handler,
		result.Status,
		result.Error,
		result.StartedAt,
		result.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("failed to record phase: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (j *Journal) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `
		SELECT id, distro, version, channel, rev, status, exit_code, error, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID,
			&run.Distro,
			&run.Version,
			&run.Channel,
			&run.Rev,
			&run.Status,
			&run.ExitCode,
			&run.Error,
			&run.StartedAt,
			&run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// PhaseResults returns the phase outcomes of a run in execution order.
func (j *Journal) PhaseResults(ctx context.Context, runID string) ([]*PhaseResult, error) {
	query := `
		SELECT run_id, phase, handler, status, error, started_at, duration_ms
		FROM phase_results
		WHERE run_id = ?
		ORDER BY id ASC
	`

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list phase results: %w", err)
	}
	defer rows.Close()

	results := []*PhaseResult{}
	for rows.Next() {
		result := &PhaseResult{}
		err := rows.Scan(
			&result.RunID,
			&result.Phase,
			&result.Handler,
			&result.Status,
			&result.Error,
			&result.StartedAt,
			&result.DurationMS,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phase result: %w", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phase results: %w", err)
	}
	return results, nil
}

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Run is one row of the mining_runs audit log: a single invocation of the
// orchestrator against a set of series with a fixed configuration.
type Run struct {
	ID           uuid.UUID
	MinerType    string
	Tickers      []string
	ConfigJSON   json.RawMessage
	ResultCount  int
	Status       string
	ErrorMessage *string
	StartedAt    time.Time
	FinishedAt   *time.Time
	CreatedAt    time.Time
}

const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// Repository provides data access methods for the mining_runs audit log.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck performs a database health check.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// GetDB returns the underlying DB instance for direct access to the pool.
func (r *Repository) GetDB() *DB {
	return r.db
}

// CreateRun inserts a new run in RunStatusPending with a freshly generated ID.
func (r *Repository) CreateRun(ctx context.Context, minerType string, tickers []string, configJSON json.RawMessage) (*Run, error) {
	run := &Run{
		ID:         uuid.New(),
		MinerType:  minerType,
		Tickers:    tickers,
		ConfigJSON: configJSON,
		Status:     RunStatusPending,
		StartedAt:  time.Now().UTC(),
	}

	query := `
		INSERT INTO mining_runs (id, miner_type, tickers, config_json, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.Pool.QueryRow(
		ctx, query,
		run.ID, run.MinerType, run.Tickers, run.ConfigJSON, run.Status, run.StartedAt,
	).Scan(&run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert mining run: %w", err)
	}
	return run, nil
}

// MarkRunning transitions a run to RunStatusRunning.
func (r *Repository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE mining_runs SET status = $2 WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, id, RunStatusRunning)
	return err
}

// CompleteRun records a run's terminal state: result count and finish time on
// success, or an error message on failure.
func (r *Repository) CompleteRun(ctx context.Context, id uuid.UUID, resultCount int, runErr error) error {
	finishedAt := time.Now().UTC()
	status := RunStatusDone
	var errMsg *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	query := `
		UPDATE mining_runs
		SET status = $2, result_count = $3, error_message = $4, finished_at = $5
		WHERE id = $1
	`
	_, err := r.db.Pool.Exec(ctx, query, id, status, resultCount, errMsg, finishedAt)
	return err
}

// GetRun retrieves a run by ID.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, miner_type, tickers, config_json, result_count, status,
		       error_message, started_at, finished_at, created_at
		FROM mining_runs
		WHERE id = $1
	`
	run := &Run{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.MinerType, &run.Tickers, &run.ConfigJSON, &run.ResultCount,
		&run.Status, &run.ErrorMessage, &run.StartedAt, &run.FinishedAt, &run.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves runs ordered by most recently started, with pagination.
func (r *Repository) ListRuns(ctx context.Context, limit, offset int) ([]*Run, error) {
	query := `
		SELECT id, miner_type, tickers, config_json, result_count, status,
		       error_message, started_at, finished_at, created_at
		FROM mining_runs
		ORDER BY started_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID, &run.MinerType, &run.Tickers, &run.ConfigJSON, &run.ResultCount,
			&run.Status, &run.ErrorMessage, &run.StartedAt, &run.FinishedAt, &run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRunsByStatus retrieves runs filtered by status.
func (r *Repository) ListRunsByStatus(ctx context.Context, status string, limit int) ([]*Run, error) {
	query := `
		SELECT id, miner_type, tickers, config_json, result_count, status,
		       error_message, started_at, finished_at, created_at
		FROM mining_runs
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := r.db.Pool.Query(ctx, query, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		err := rows.Scan(
			&run.ID, &run.MinerType, &run.Tickers, &run.ConfigJSON, &run.ResultCount,
			&run.Status, &run.ErrorMessage, &run.StartedAt, &run.FinishedAt, &run.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run from the audit log.
func (r *Repository) DeleteRun(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM mining_runs WHERE id = $1`
	_, err := r.db.Pool.Exec(ctx, query, id)
	return err
}

package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// JobRow is the persisted form of an analysis job. Input and Result are
// opaque JSON owned by the jobs package.
type JobRow struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// InsertJob persists a new job row.
func (db *DB) InsertJob(ctx context.Context, job JobRow) error {
	query := `
		INSERT INTO jobs (id, kind, status, input)
		VALUES ($1, $2, $3, $4)`

	_, err := db.pool.Exec(ctx, query, job.ID, job.Kind, job.Status, job.Input)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

// UpdateJob records a status transition, optionally attaching a result or
// an error message.
func (db *DB) UpdateJob(ctx context.Context, id, status string, result json.RawMessage, errMsg string) error {
	query := `
		UPDATE jobs SET
			status = $2,
			result = $3,
			error = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	tag, err := db.pool.Exec(ctx, query, id, status, result, errMsg)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

// GetJob loads one job by id, or nil when absent.
func (db *DB) GetJob(ctx context.Context, id string) (*JobRow, error) {
	query := `
		SELECT id, kind, status, input, result, error, created_at, updated_at
		FROM jobs
		WHERE id = $1`

	job := &JobRow{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Kind, &job.Status, &job.Input, &job.Result,
		&job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns the most recent jobs, newest first.
func (db *DB) ListJobs(ctx context.Context, limit int) ([]JobRow, error) {
	query := `
		SELECT id, kind, status, input, result, error, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []JobRow
	for rows.Next() {
		var job JobRow
		if err := rows.Scan(
			&job.ID, &job.Kind, &job.Status, &job.Input, &job.Result,
			&job.Error, &job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CountJobsByStatus returns how many jobs sit in each status.
func (db *DB) CountJobsByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM jobs GROUP BY status`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/brasildev/paraguay-price-scout/internal/database"
)

// Job kinds.
const (
	KindAnalyzeURL   = "analyze_url"
	KindAnalyzeQuery = "analyze_query"
)

// Job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Input is what a job operates on: a product page URL or a search query.
type Input struct {
	URL      string `json:"url,omitempty"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
}

// Job is the API-facing view of an analysis job.
type Job struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Input     Input           `json:"input"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store persists job rows. *database.DB implements it.
type Store interface {
	InsertJob(ctx context.Context, job database.JobRow) error
	UpdateJob(ctx context.Context, id, status string, result json.RawMessage, errMsg string) error
	GetJob(ctx context.Context, id string) (*database.JobRow, error)
	ListJobs(ctx context.Context, limit int) ([]database.JobRow, error)
	CountJobsByStatus(ctx context.Context) (map[string]int, error)
}

func fromRow(row database.JobRow) (Job, error) {
	job := Job{
		ID:        row.ID,
		Kind:      row.Kind,
		Status:    row.Status,
		Result:    row.Result,
		Error:     row.Error,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Input) > 0 {
		if err := json.Unmarshal(row.Input, &job.Input); err != nil {
			return Job{}, err
		}
	}
	return job, nil
}

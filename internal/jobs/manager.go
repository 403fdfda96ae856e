package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/brasildev/paraguay-price-scout/internal/database"
)

var (
	ErrJobNotFound = errors.New("jobs: job not found")
	ErrEmptyInput  = errors.New("jobs: input requires a url or a query")
)

// Manager accepts analysis jobs, persists them and feeds the worker
// queue. Job state lives in the store; the queue only carries ids, so a
// restart loses in-flight scheduling but never the jobs themselves.
type Manager struct {
	store  Store
	queue  *Queue
	logger *slog.Logger
}

func NewManager(store Store, queue *Queue, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		queue:  queue,
		logger: logger.With("component", "jobs"),
	}
}

// Submit creates a pending job and schedules it. The kind is derived from
// the input: a URL means a single-product job, otherwise a search job.
func (m *Manager) Submit(ctx context.Context, input Input) (*Job, error) {
	kind := KindAnalyzeQuery
	if input.URL != "" {
		kind = KindAnalyzeURL
	} else if input.Query == "" {
		return nil, ErrEmptyInput
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job input: %w", err)
	}

	row := database.JobRow{
		ID:     uuid.NewString(),
		Kind:   kind,
		Status: StatusPending,
		Input:  payload,
	}
	if err := m.store.InsertJob(ctx, row); err != nil {
		return nil, err
	}

	if err := m.queue.Push(row.ID); err != nil {
		m.store.UpdateJob(ctx, row.ID, StatusFailed, nil, "queue closed before scheduling")
		return nil, err
	}

	m.logger.Info("job submitted", "job_id", row.ID, "kind", kind)

	return &Job{ID: row.ID, Kind: kind, Status: StatusPending, Input: input}, nil
}

// Get returns one job by id.
func (m *Manager) Get(ctx context.Context, id string) (*Job, error) {
	row, err := m.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrJobNotFound
	}

	job, err := fromRow(*row)
	if err != nil {
		return nil, fmt.Errorf("corrupt job input for %s: %w", id, err)
	}
	return &job, nil
}

// List returns recent jobs, newest first.
func (m *Manager) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := m.store.ListJobs(ctx, limit)
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(rows))
	for _, row := range rows {
		job, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("corrupt job input for %s: %w", row.ID, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// StatusCounts reports how many jobs sit in each status.
func (m *Manager) StatusCounts(ctx context.Context) (map[string]int, error) {
	return m.store.CountJobsByStatus(ctx)
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// How many search hits a query job analyzes. Marketplace lookups are
// rate limited, so a full page of results would take minutes.
const queryAnalysisLimit = 5

// ProductSource supplies the products a job analyzes. The storefront
// scraper implements it.
type ProductSource interface {
	ExtractProduct(ctx context.Context, url string) (*models.Product, error)
	SearchProducts(ctx context.Context, query, category string) ([]models.Product, error)
}

// MarketAnalyzer runs the market analysis pipeline for one product.
type MarketAnalyzer interface {
	AnalyzeProduct(ctx context.Context, product models.Product) (*models.MarketAnalysis, error)
}

// AnalysisSink persists analyzed products. *database.DB implements it.
type AnalysisSink interface {
	UpsertProduct(ctx context.Context, p models.Product) error
	InsertAnalysis(ctx context.Context, analysis *models.MarketAnalysis) (int64, error)
}

// Worker drains the job queue: extract or search, analyze, persist. One
// worker per process is enough; the scraper rate limiter serializes the
// expensive part anyway.
type Worker struct {
	store    Store
	queue    *Queue
	source   ProductSource
	analyzer MarketAnalyzer
	sink     AnalysisSink
	logger   *slog.Logger
}

func NewWorker(store Store, queue *Queue, source ProductSource, analyzer MarketAnalyzer, sink AnalysisSink, logger *slog.Logger) *Worker {
	return &Worker{
		store:    store,
		queue:    queue,
		source:   source,
		analyzer: analyzer,
		sink:     sink,
		logger:   logger.With("component", "worker"),
	}
}

// Run processes jobs until the context is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) error {
	for {
		id, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		w.process(ctx, id)
	}
}

func (w *Worker) process(ctx context.Context, id string) {
	row, err := w.store.GetJob(ctx, id)
	if err != nil || row == nil {
		w.logger.Error("scheduled job missing from store", "job_id", id, "error", err)
		return
	}

	job, err := fromRow(*row)
	if err != nil {
		w.store.UpdateJob(ctx, id, StatusFailed, nil, "corrupt job input")
		return
	}

	w.logger.Info("job started", "job_id", id, "kind", job.Kind)
	w.store.UpdateJob(ctx, id, StatusRunning, nil, "")

	result, err := w.execute(ctx, job)
	if err != nil {
		w.logger.Error("job failed", "job_id", id, "error", err)
		w.store.UpdateJob(ctx, id, StatusFailed, nil, err.Error())
		return
	}

	if err := w.store.UpdateJob(ctx, id, StatusCompleted, result, ""); err != nil {
		w.logger.Error("failed to record job result", "job_id", id, "error", err)
		return
	}
	w.logger.Info("job completed", "job_id", id)
}

func (w *Worker) execute(ctx context.Context, job Job) (json.RawMessage, error) {
	switch job.Kind {
	case KindAnalyzeURL:
		analysis, err := w.analyzeURL(ctx, job.Input.URL)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analysis)

	case KindAnalyzeQuery:
		analyses, err := w.analyzeQuery(ctx, job.Input.Query, job.Input.Category)
		if err != nil {
			return nil, err
		}
		return json.Marshal(analyses)

	default:
		return nil, fmt.Errorf("unknown job kind %q", job.Kind)
	}
}

func (w *Worker) analyzeURL(ctx context.Context, url string) (*models.MarketAnalysis, error) {
	product, err := w.source.ExtractProduct(ctx, url)
	if err != nil {
		return nil, err
	}

	analysis, err := w.analyzer.AnalyzeProduct(ctx, *product)
	if err != nil {
		return nil, err
	}

	w.persist(ctx, *product, analysis)
	return analysis, nil
}

func (w *Worker) analyzeQuery(ctx context.Context, query, category string) ([]models.MarketAnalysis, error) {
	products, err := w.source.SearchProducts(ctx, query, category)
	if err != nil {
		return nil, err
	}
	if len(products) > queryAnalysisLimit {
		products = products[:queryAnalysisLimit]
	}

	analyses := make([]models.MarketAnalysis, 0, len(products))
	for _, product := range products {
		analysis, err := w.analyzer.AnalyzeProduct(ctx, product)
		if err != nil {
			w.logger.Warn("skipping product in query job", "product", product.Name, "error", err)
			continue
		}
		w.persist(ctx, product, analysis)
		analyses = append(analyses, *analysis)
	}
	return analyses, nil
}

// persist is best effort. A storage failure keeps the job result intact.
func (w *Worker) persist(ctx context.Context, product models.Product, analysis *models.MarketAnalysis) {
	if w.sink == nil {
		return
	}
	if err := w.sink.UpsertProduct(ctx, product); err != nil {
		w.logger.Warn("failed to persist product", "product", product.Name, "error", err)
	}
	if _, err := w.sink.InsertAnalysis(ctx, analysis); err != nil {
		w.logger.Warn("failed to persist analysis", "product", product.Name, "error", err)
	}
}

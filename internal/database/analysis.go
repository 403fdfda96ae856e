package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// AnalysisRecord is a stored market analysis with its row metadata. The
// full MarketAnalysis rides along as a JSONB payload.
type AnalysisRecord struct {
	ID        int64                 `json:"id"`
	Analysis  models.MarketAnalysis `json:"analysis"`
	CreatedAt time.Time             `json:"created_at"`
}

// InsertAnalysis persists a completed market analysis and returns its row
// id.
func (db *DB) InsertAnalysis(ctx context.Context, analysis *models.MarketAnalysis) (int64, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO analyses (product_name, source_price_usd, total_cost, score, position, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err = db.pool.QueryRow(ctx, query,
		analysis.ProductName, analysis.SourcePriceUSD, analysis.Costs.TotalCost,
		analysis.OpportunityScore, analysis.MarketPosition, payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis loads one stored analysis by row id, or nil when absent.
func (db *DB) GetAnalysis(ctx context.Context, id int64) (*AnalysisRecord, error) {
	query := `SELECT id, payload, created_at FROM analyses WHERE id = $1`

	record := &AnalysisRecord{}
	var payload []byte
	err := db.pool.QueryRow(ctx, query, id).Scan(&record.ID, &payload, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := json.Unmarshal(payload, &record.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
	}
	return record, nil
}

// ListAnalyses returns the most recent analyses, newest first.
func (db *DB) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	query := `SELECT id, payload, created_at FROM analyses ORDER BY created_at DESC LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var record AnalysisRecord
		var payload []byte
		if err := rows.Scan(&record.ID, &payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal(payload, &record.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// AnalysisStats summarizes the stored analyses for the stats endpoint.
type AnalysisStats struct {
	TotalAnalyses   int     `json:"total_analyses"`
	AverageScore    float64 `json:"average_score"`
	HighOpportunity int     `json:"high_opportunity"`
}

// Stats aggregates the analyses table. High opportunity means score >= 7.
func (db *DB) Stats(ctx context.Context) (*AnalysisStats, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(AVG(score), 0),
			COUNT(*) FILTER (WHERE score >= 7)
		FROM analyses`

	stats := &AnalysisStats{}
	err := db.pool.QueryRow(ctx, query).Scan(
		&stats.TotalAnalyses, &stats.AverageScore, &stats.HighOpportunity,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analyses: %w", err)
	}
	return stats, nil
}

package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            BIGSERIAL PRIMARY KEY,
		code          TEXT NOT NULL DEFAULT '',
		name          TEXT NOT NULL,
		brand         TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		price_usd     DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_brl     DOUBLE PRECISION NOT NULL DEFAULT 0,
		stock         TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL UNIQUE,
		exchange_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		site          TEXT NOT NULL DEFAULT '',
		extracted_at  TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS analyses (
		id              BIGSERIAL PRIMARY KEY,
		product_name    TEXT NOT NULL,
		source_price_usd DOUBLE PRECISION NOT NULL,
		total_cost      DOUBLE PRECISION NOT NULL,
		score           DOUBLE PRECISION NOT NULL,
		position        TEXT NOT NULL,
		payload         JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_analyses_product_name ON analyses (product_name)`,
	`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		status     TEXT NOT NULL,
		input      JSONB NOT NULL,
		result     JSONB,
		error      TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,
}

// Migrate applies the schema. Statements are idempotent; running twice is
// safe.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}

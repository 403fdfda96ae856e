package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brasildev/paraguay-price-scout/internal/models"
)

// UpsertProduct stores a scraped product, keyed by URL. Re-scraping the
// same page refreshes prices and stock in place.
func (db *DB) UpsertProduct(ctx context.Context, p models.Product) error {
	query := `
		INSERT INTO products (code, name, brand, model, category, price_usd, price_brl,
			stock, url, exchange_rate, site, extracted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (url) DO UPDATE SET
			code = EXCLUDED.code,
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			category = EXCLUDED.category,
			price_usd = EXCLUDED.price_usd,
			price_brl = EXCLUDED.price_brl,
			stock = EXCLUDED.stock,
			exchange_rate = EXCLUDED.exchange_rate,
			site = EXCLUDED.site,
			extracted_at = EXCLUDED.extracted_at,
			updated_at = CURRENT_TIMESTAMP`

	_, err := db.pool.Exec(ctx, query,
		p.Code, p.Name, p.Brand, p.Model, p.Category, p.PriceUSD, p.PriceBRL,
		p.Stock, p.URL, p.ExchangeRate, p.Site, p.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProductByURL returns the stored product for a page, or nil when the
// page was never scraped.
func (db *DB) GetProductByURL(ctx context.Context, url string) (*models.Product, error) {
	query := `
		SELECT code, name, brand, model, category, price_usd, price_brl,
			stock, url, exchange_rate, site, extracted_at
		FROM products
		WHERE url = $1`

	p := &models.Product{}
	err := db.pool.QueryRow(ctx, query, url).Scan(
		&p.Code, &p.Name, &p.Brand, &p.Model, &p.Category, &p.PriceUSD, &p.PriceBRL,
		&p.Stock, &p.URL, &p.ExchangeRate, &p.Site, &p.ExtractedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns the most recently scraped products.
func (db *DB) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	query := `
		SELECT code, name, brand, model, category, price_usd, price_brl,
			stock, url, exchange_rate, site, extracted_at
		FROM products
		ORDER BY extracted_at DESC
		LIMIT $1`

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.Code, &p.Name, &p.Brand, &p.Model, &p.Category, &p.PriceUSD, &p.PriceBRL,
			&p.Stock, &p.URL, &p.ExchangeRate, &p.Site, &p.ExtractedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

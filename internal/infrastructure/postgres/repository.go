// Package postgres provides a SQL catalog backend for deployments that keep
// the product catalog in Postgres instead of a Pinot cluster.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/awardwizard/backend/internal/domain"
)

// Repository implements domain.CatalogRepository over a Postgres products table
type Repository struct {
	db    *sql.DB
	table string
}

// New opens a Postgres connection pool and verifies connectivity
func New(dsn, table string) (*Repository, error) {
	if table == "" {
		table = "products"
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return &Repository{db: db, table: table}, nil
}

// Close releases the connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

// FetchProducts returns catalog rows for the given barcodes, keyed by barcode
func (r *Repository) FetchProducts(ctx context.Context, barcodes []string) (map[string]domain.CatalogProduct, error) {
	out := make(map[string]domain.CatalogProduct, len(barcodes))
	if len(barcodes) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(
		"SELECT barcode, COALESCE(brand, ''), COALESCE(category, ''), COALESCE(description, ''), COALESCE(keywords, '') FROM %s WHERE barcode = ANY($1)",
		r.table,
	)

	rows, err := r.db.QueryContext(ctx, query, pqStringArray(barcodes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.Barcode, &p.Brand, &p.Category, &p.Description, &p.Keywords); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}
		out[p.Barcode] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return out, nil
}

// FindRelated returns catalog rows sharing the given brand and category,
// ordered by barcode so truncation at the LIMIT is stable across runs.
func (r *Repository) FindRelated(ctx context.Context, brand, category string) ([]domain.CatalogProduct, error) {
	if brand == "" || category == "" {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT barcode, COALESCE(brand, ''), COALESCE(category, ''), COALESCE(description, ''), COALESCE(keywords, '') FROM %s WHERE brand = $1 AND category = $2 ORDER BY barcode LIMIT 100",
		r.table,
	)

	rows, err := r.db.QueryContext(ctx, query, brand, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var products []domain.CatalogProduct
	for rows.Next() {
		var p domain.CatalogProduct
		if err := rows.Scan(&p.Barcode, &p.Brand, &p.Category, &p.Description, &p.Keywords); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return products, nil
}

// pqStringArray renders a Postgres text[] literal for ANY($1) binding.
// lib/pq accepts array literals as strings; quotes and backslashes in
// barcodes are escaped per the array literal syntax.
func pqStringArray(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		v = strings.ReplaceAll(v, `"`, `\"`)
		quoted[i] = `"` + v + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

package domain

import (
	"context"
	"time"
)

// CatalogRepository defines the interface for read-only catalog lookups
type CatalogRepository interface {
	// FetchProducts returns the catalog rows for the given barcodes, keyed by
	// barcode. Barcodes the catalog does not know are simply absent from the map.
	FetchProducts(ctx context.Context, barcodes []string) (map[string]CatalogProduct, error)

	// FindRelated returns catalog rows sharing the given brand and category.
	FindRelated(ctx context.Context, brand, category string) ([]CatalogProduct, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

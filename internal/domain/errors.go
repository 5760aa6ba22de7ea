package domain

import "errors"

var (
	// ErrMalformedInput is returned when the uploaded CSV is empty or has no barcode column
	ErrMalformedInput = errors.New("input CSV is empty or missing the 'barcode' column")

	// ErrCatalogUnavailable is returned when the catalog endpoint cannot be reached
	// or returns a response that cannot be parsed
	ErrCatalogUnavailable = errors.New("catalog service unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

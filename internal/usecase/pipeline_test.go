package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/awardwizard/backend/internal/domain"
)

// MockCatalogRepository is an in-memory catalog for pipeline tests
type MockCatalogRepository struct {
	products     map[string]domain.CatalogProduct
	related      map[string][]domain.CatalogProduct
	fetchErr     error
	relatedErr   error
	fetchCalls   int
	relatedCalls int
}

func (m *MockCatalogRepository) FetchProducts(ctx context.Context, barcodes []string) (map[string]domain.CatalogProduct, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make(map[string]domain.CatalogProduct)
	for _, b := range barcodes {
		if p, ok := m.products[b]; ok {
			out[b] = p
		}
	}
	return out, nil
}

func (m *MockCatalogRepository) FindRelated(ctx context.Context, brand, category string) ([]domain.CatalogProduct, error) {
	m.relatedCalls++
	if m.relatedErr != nil {
		return nil, m.relatedErr
	}
	return m.related[brand+"|"+category], nil
}

// MockCacheRepository is a TTL-less map cache for tests
type MockCacheRepository struct {
	data map[string]interface{}
}

func NewMockCache() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]interface{})}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func testCatalog() *MockCatalogRepository {
	return &MockCatalogRepository{
		products: map[string]domain.CatalogProduct{
			"0123456789012": {
				Barcode:     "0123456789012",
				Brand:       "Acme",
				Category:    "Snacks",
				Description: "Acme brand salted potato chips",
			},
			"0001234567890": {
				Barcode:     "0001234567890",
				Brand:       "Globex",
				Category:    "Beverages",
				Description: "item",
			},
		},
		related: map[string][]domain.CatalogProduct{
			"Acme|Snacks": {
				{Barcode: "0123456789012", Brand: "Acme", Category: "Snacks", Description: "Acme brand salted potato chips"},
				{Barcode: "0000000000002", Brand: "Acme", Category: "Snacks", Description: "Acme salted corn chips"},
				{Barcode: "0000000000003", Brand: "Acme", Category: "Snacks", Description: "Acme chocolate wafer"},
			},
		},
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty batch", func(t *testing.T) {
		svc := NewPipelineService(testCatalog(), NewMockCache(), PipelineConfig{})

		_, err := svc.Run(ctx, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("one result per barcode in input order", func(t *testing.T) {
		svc := NewPipelineService(testCatalog(), NewMockCache(), PipelineConfig{})

		input := []string{"0001234567890", "9999999999999", "0123456789012"}
		result, err := svc.Run(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Results) != len(input) {
			t.Fatalf("len(Results) = %d, want %d", len(result.Results), len(input))
		}
		for i, barcode := range input {
			if result.Results[i].Barcode != barcode {
				t.Errorf("Results[%d].Barcode = %s, want %s", i, result.Results[i].Barcode, barcode)
			}
		}
		if result.RunID == "" {
			t.Error("RunID is empty")
		}
	})

	t.Run("unknown barcode gets not-found reason", func(t *testing.T) {
		svc := NewPipelineService(testCatalog(), NewMockCache(), PipelineConfig{})

		result, err := svc.Run(ctx, []string{"9999999999999"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		row := result.Results[0]
		if row.Valid {
			t.Error("Valid = true, want false")
		}
		if len(row.Reasons) != 1 || row.Reasons[0] != ReasonNotFound {
			t.Errorf("Reasons = %v, want [%q]", row.Reasons, ReasonNotFound)
		}
	})

	t.Run("recommends only for valid records", func(t *testing.T) {
		svc := NewPipelineService(testCatalog(), NewMockCache(), PipelineConfig{})

		result, err := svc.Run(ctx, []string{"0123456789012", "0001234567890"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Recommendations) == 0 {
			t.Fatal("no recommendations for valid record")
		}
		for _, rec := range result.Recommendations {
			if rec.SourceBarcode != "0123456789012" {
				t.Errorf("recommendation sourced from %s, want only the valid barcode", rec.SourceBarcode)
			}
			if rec.RecommendedBarcode == rec.SourceBarcode {
				t.Error("recommendation includes the source barcode itself")
			}
		}
	})

	t.Run("catalog failure aborts run with no partial results", func(t *testing.T) {
		catalog := testCatalog()
		catalog.fetchErr = errors.New("broker down")
		svc := NewPipelineService(catalog, NewMockCache(), PipelineConfig{})

		result, err := svc.Run(ctx, []string{"0123456789012"})
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
		if result != nil {
			t.Errorf("result = %+v, want nil", result)
		}
	})

	t.Run("sibling lookup failure aborts run", func(t *testing.T) {
		catalog := testCatalog()
		catalog.relatedErr = domain.ErrCatalogUnavailable
		svc := NewPipelineService(catalog, NewMockCache(), PipelineConfig{})

		_, err := svc.Run(ctx, []string{"0123456789012"})
		if !errors.Is(err, domain.ErrCatalogUnavailable) {
			t.Errorf("error = %v, want ErrCatalogUnavailable", err)
		}
	})

	t.Run("second run hits the product cache", func(t *testing.T) {
		catalog := testCatalog()
		cache := NewMockCache()
		svc := NewPipelineService(catalog, cache, PipelineConfig{})

		if _, err := svc.Run(ctx, []string{"0123456789012"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := svc.Run(ctx, []string{"0123456789012"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Product and sibling set are cached after the first run
		if catalog.fetchCalls != 1 {
			t.Errorf("fetchCalls = %d, want 1", catalog.fetchCalls)
		}
		if catalog.relatedCalls != 1 {
			t.Errorf("relatedCalls = %d, want 1", catalog.relatedCalls)
		}
	})

	t.Run("deterministic across repeated runs", func(t *testing.T) {
		svc := NewPipelineService(testCatalog(), NewMockCache(), PipelineConfig{})

		first, err := svc.Run(ctx, []string{"0123456789012", "0001234567890"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := svc.Run(ctx, []string{"0123456789012", "0001234567890"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(first.Recommendations) != len(second.Recommendations) {
			t.Fatalf("recommendation counts differ: %d vs %d", len(first.Recommendations), len(second.Recommendations))
		}
		for i := range first.Recommendations {
			if first.Recommendations[i].RecommendedBarcode != second.Recommendations[i].RecommendedBarcode {
				t.Errorf("Recommendations[%d] differ: %s vs %s", i,
					first.Recommendations[i].RecommendedBarcode,
					second.Recommendations[i].RecommendedBarcode)
			}
		}
	})
}

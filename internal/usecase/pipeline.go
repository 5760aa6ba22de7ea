package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/awardwizard/backend/internal/domain"
)

// PipelineConfig holds configuration for the validation pipeline
type PipelineConfig struct {
	CacheTTL  time.Duration
	Rules     RuleConfig
	Recommend RecommenderConfig
}

// PipelineService runs one validation batch end to end:
// catalog fetch (through cache) -> rule evaluation -> recommendations -> report.
type PipelineService struct {
	catalog     domain.CatalogRepository
	cache       domain.CacheRepository
	rules       *RuleEvaluator
	recommender *Recommender
	cacheTTL    time.Duration
}

// NewPipelineService creates a pipeline service with dependencies
func NewPipelineService(
	catalog domain.CatalogRepository,
	cache domain.CacheRepository,
	config PipelineConfig,
) *PipelineService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	recommendConfig := config.Recommend
	if recommendConfig.CacheTTL == 0 {
		recommendConfig.CacheTTL = cacheTTL
	}

	return &PipelineService{
		catalog:     catalog,
		cache:       cache,
		rules:       NewRuleEvaluator(config.Rules),
		recommender: NewRecommender(catalog, cache, recommendConfig),
		cacheTTL:    cacheTTL,
	}
}

// Run validates one batch of barcodes. Results preserve input order, with
// exactly one row per barcode. Recommendations are grouped by source barcode
// in input order, ranked within each group. A catalog failure aborts the run
// with no partial results.
func (s *PipelineService) Run(ctx context.Context, barcodes []string) (*domain.ValidationReport, error) {
	if len(barcodes) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	products, err := s.fetchProducts(ctx, barcodes)
	if err != nil {
		return nil, err
	}

	report := &domain.ValidationReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Results:     make([]domain.ValidationResult, 0, len(barcodes)),
	}

	for _, barcode := range barcodes {
		product, found := products[barcode]
		result := s.rules.Evaluate(barcode, product, found)
		report.Results = append(report.Results, result)

		if !result.Valid {
			continue
		}

		recommendations, err := s.recommender.Recommend(ctx, product)
		if err != nil {
			return nil, err
		}
		report.Recommendations = append(report.Recommendations, recommendations...)
	}

	slog.Info("validation run complete",
		"runId", report.RunID,
		"barcodes", len(barcodes),
		"recommendations", len(report.Recommendations))

	return report, nil
}

// fetchProducts resolves barcodes against the cache, then fetches the
// remainder from the catalog in one pass and caches what it finds.
func (s *PipelineService) fetchProducts(ctx context.Context, barcodes []string) (map[string]domain.CatalogProduct, error) {
	products := make(map[string]domain.CatalogProduct, len(barcodes))

	var missing []string
	for _, barcode := range barcodes {
		cached, err := s.cache.Get(ctx, productCacheKey(barcode))
		if err == nil {
			if product, ok := cached.(domain.CatalogProduct); ok {
				products[barcode] = product
				continue
			}
		}
		missing = append(missing, barcode)
	}

	if len(missing) == 0 {
		return products, nil
	}

	fetched, err := s.catalog.FetchProducts(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	for barcode, product := range fetched {
		products[barcode] = product
		if err := s.cache.Set(ctx, productCacheKey(barcode), product, s.cacheTTL); err != nil {
			slog.Debug("failed to cache product", "barcode", barcode, "error", err)
		}
	}

	return products, nil
}

func productCacheKey(barcode string) string {
	return "product:" + barcode
}

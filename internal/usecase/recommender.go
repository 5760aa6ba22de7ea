package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/awardwizard/backend/internal/domain"
)

// RecommenderConfig holds configuration for the recommender
type RecommenderConfig struct {
	MaxPerItem int
	CacheTTL   time.Duration
}

// Recommender proposes related catalog products for validated barcodes.
// Candidates share the source's brand and category and are ranked by
// description keyword overlap.
type Recommender struct {
	catalog    domain.CatalogRepository
	cache      domain.CacheRepository
	maxPerItem int
	cacheTTL   time.Duration
}

// NewRecommender creates a recommender with the given configuration
func NewRecommender(catalog domain.CatalogRepository, cache domain.CacheRepository, config RecommenderConfig) *Recommender {
	maxPerItem := config.MaxPerItem
	if maxPerItem <= 0 {
		maxPerItem = 3
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	return &Recommender{
		catalog:    catalog,
		cache:      cache,
		maxPerItem: maxPerItem,
		cacheTTL:   cacheTTL,
	}
}

// Recommend returns up to MaxPerItem related products for the source record.
// Ranking is deterministic: overlap descending, then barcode ascending.
func (r *Recommender) Recommend(ctx context.Context, source domain.CatalogProduct) ([]domain.Recommendation, error) {
	if source.Brand == "" || source.Category == "" {
		return nil, nil
	}

	siblings, err := r.findSiblings(ctx, source.Brand, source.Category)
	if err != nil {
		return nil, err
	}

	sourceTokens := tokenize(source.Description)

	type candidate struct {
		barcode string
		score   int
	}
	candidates := make([]candidate, 0, len(siblings))
	seen := map[string]bool{source.Barcode: true}

	for _, sibling := range siblings {
		if seen[sibling.Barcode] {
			continue
		}
		seen[sibling.Barcode] = true
		candidates = append(candidates, candidate{
			barcode: sibling.Barcode,
			score:   tokenOverlap(sourceTokens, tokenize(sibling.Description)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].barcode < candidates[j].barcode
	})

	if len(candidates) > r.maxPerItem {
		candidates = candidates[:r.maxPerItem]
	}

	reason := fmt.Sprintf("same brand %q and category %q", source.Brand, source.Category)
	recommendations := make([]domain.Recommendation, 0, len(candidates))
	for _, c := range candidates {
		recommendations = append(recommendations, domain.Recommendation{
			SourceBarcode:      source.Barcode,
			RecommendedBarcode: c.barcode,
			Reason:             reason,
			Score:              c.score,
		})
	}

	return recommendations, nil
}

// findSiblings fetches the brand/category sibling set, caching per pair so a
// batch of same-brand products costs one catalog query.
func (r *Recommender) findSiblings(ctx context.Context, brand, category string) ([]domain.CatalogProduct, error) {
	key := fmt.Sprintf("siblings:%s|%s", brand, category)

	if cached, err := r.cache.Get(ctx, key); err == nil {
		if siblings, ok := cached.([]domain.CatalogProduct); ok {
			return siblings, nil
		}
	}

	siblings, err := r.catalog.FindRelated(ctx, brand, category)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, siblings, r.cacheTTL); err != nil {
		slog.Debug("failed to cache sibling set", "key", key, "error", err)
	}

	return siblings, nil
}

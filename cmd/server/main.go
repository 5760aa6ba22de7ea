package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/awardwizard/backend/config"
	httpDelivery "github.com/awardwizard/backend/internal/delivery/http"
	"github.com/awardwizard/backend/internal/domain"
	"github.com/awardwizard/backend/internal/infrastructure/cache"
	"github.com/awardwizard/backend/internal/infrastructure/pinot"
	"github.com/awardwizard/backend/internal/infrastructure/postgres"
	"github.com/awardwizard/backend/internal/usecase"
	"github.com/awardwizard/backend/pkg/logging"
)

func main() {
	logging.Setup()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting Award Wizard backend",
		"version", "1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"catalog", cfg.Catalog.Type)

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()

	catalog, err := buildCatalog(cfg)
	if err != nil {
		slog.Error("failed to initialize catalog backend", "error", err)
		os.Exit(1)
	}

	// Initialize usecase layer
	pipeline := usecase.NewPipelineService(catalog, memoryCache, usecase.PipelineConfig{
		CacheTTL: cfg.Cache.TTL,
		Rules: usecase.RuleConfig{
			MinDescriptionTokens: cfg.Rules.MinDescriptionTokens,
			VagueTerms:           cfg.Rules.VagueTerms,
			AllowedCategories:    cfg.Rules.AllowedCategories,
		},
		Recommend: usecase.RecommenderConfig{
			MaxPerItem: cfg.Recommend.MaxPerItem,
		},
	})

	slog.Info("validation rules",
		"minDescriptionTokens", cfg.Rules.MinDescriptionTokens,
		"vagueTerms", len(cfg.Rules.VagueTerms),
		"allowedCategories", len(cfg.Rules.AllowedCategories),
		"maxRecommendations", cfg.Recommend.MaxPerItem)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(pipeline)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	slog.Info("server listening", "addr", addr)

	if err := router.Run(addr); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// buildCatalog selects the catalog backend from configuration
func buildCatalog(cfg *config.Config) (domain.CatalogRepository, error) {
	switch cfg.Catalog.Type {
	case "pinot":
		return pinot.NewClient(pinot.Config{
			Endpoint:   cfg.Catalog.Endpoint,
			AuthHeader: cfg.Catalog.AuthHeader,
			Table:      cfg.Catalog.Table,
			BatchSize:  cfg.Catalog.BatchSize,
		}), nil
	case "postgres":
		return postgres.New(cfg.Catalog.PostgresDSN, cfg.Catalog.Table)
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Catalog.Type)
	}
}

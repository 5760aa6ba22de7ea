// Award Wizard CLI - run the barcode validation pipeline from the terminal.
//
// Usage:
//
//	upcwizard validate --input barcodes.csv --output-dir out/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/awardwizard/backend/config"
	"github.com/awardwizard/backend/internal/domain"
	"github.com/awardwizard/backend/internal/infrastructure/cache"
	"github.com/awardwizard/backend/internal/infrastructure/pinot"
	"github.com/awardwizard/backend/internal/infrastructure/postgres"
	"github.com/awardwizard/backend/internal/report"
	"github.com/awardwizard/backend/internal/usecase"
	"github.com/awardwizard/backend/pkg/logging"
)

var version = "dev"

func main() {
	logging.Setup()

	app := &cli.App{
		Name:    "upcwizard",
		Usage:   "Validate product barcodes against the catalog and suggest related UPCs",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Catalog SQL API endpoint (overrides config)",
				EnvVars: []string{"UPCWIZARD_CATALOG_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "auth-header",
				Usage:   "Authorization header value for the catalog endpoint",
				EnvVars: []string{"UPCWIZARD_CATALOG_AUTH_HEADER"},
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Barcodes per catalog query (overrides config)",
			},
		},
		Commands: []*cli.Command{
			validateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a CSV of barcodes and write the result tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to CSV with a 'barcode' column",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Directory for validation.csv and recommendations.csv",
			},
		},
		Action: runValidate,
	}
}

func runValidate(c *cli.Context) error {
	// Surface the endpoint flag to config validation before loading
	if v := c.String("endpoint"); v != "" {
		os.Setenv("UPCWIZARD_CATALOG_ENDPOINT", v)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(cfg, c)

	input, err := os.Open(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	barcodes, err := report.ParseBarcodeCSV(input)
	if err != nil {
		return err
	}
	slog.Info("loaded barcodes", "count", len(barcodes))

	var catalog domain.CatalogRepository
	switch cfg.Catalog.Type {
	case "postgres":
		repo, err := postgres.New(cfg.Catalog.PostgresDSN, cfg.Catalog.Table)
		if err != nil {
			return err
		}
		defer repo.Close()
		catalog = repo
	default:
		catalog = pinot.NewClient(pinot.Config{
			Endpoint:   cfg.Catalog.Endpoint,
			AuthHeader: cfg.Catalog.AuthHeader,
			Table:      cfg.Catalog.Table,
			BatchSize:  cfg.Catalog.BatchSize,
		})
	}

	pipeline := usecase.NewPipelineService(catalog, cache.NewMemoryCache(), usecase.PipelineConfig{
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

	result, err := pipeline.Run(context.Background(), barcodes)
	if err != nil {
		return err
	}

	outDir := c.String("output-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	if err := writeTable(filepath.Join(outDir, "validation.csv"), func(f *os.File) error {
		return report.WriteValidationCSV(f, result.Results)
	}); err != nil {
		return err
	}

	if err := writeTable(filepath.Join(outDir, "recommendations.csv"), func(f *os.File) error {
		return report.WriteRecommendationCSV(f, result.Recommendations)
	}); err != nil {
		return err
	}

	invalid := 0
	for _, r := range result.Results {
		if !r.Valid {
			invalid++
		}
	}
	slog.Info("run complete",
		"runId", result.RunID,
		"barcodes", len(result.Results),
		"invalid", invalid,
		"recommendations", len(result.Recommendations),
		"outputDir", outDir)

	return nil
}

// applyOverrides lets CLI flags win over file/env configuration
func applyOverrides(cfg *config.Config, c *cli.Context) {
	if v := c.String("endpoint"); v != "" {
		cfg.Catalog.Endpoint = v
	}
	if v := c.String("auth-header"); v != "" {
		cfg.Catalog.AuthHeader = v
	}
	if v := c.Int("batch-size"); v > 0 {
		cfg.Catalog.BatchSize = v
	}
}

func writeTable(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	Rules     RulesConfig
	Recommend RecommendConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds catalog backend configuration
type CatalogConfig struct {
	Type        string `mapstructure:"type"` // "pinot" or "postgres"
	Endpoint    string `mapstructure:"endpoint"`
	AuthHeader  string `mapstructure:"auth_header"`
	BatchSize   int    `mapstructure:"batch_size"`
	Table       string `mapstructure:"table"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RulesConfig holds validation rule configuration
type RulesConfig struct {
	MinDescriptionTokens int      `mapstructure:"min_description_tokens"`
	VagueTerms           []string `mapstructure:"vague_terms"`
	AllowedCategories    []string `mapstructure:"allowed_categories"`
}

// RecommendConfig holds recommendation configuration
type RecommendConfig struct {
	MaxPerItem int `mapstructure:"max_per_item"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/upcwizard/")

	// Environment variable settings (UPCWIZARD_CATALOG_ENDPOINT etc.)
	v.SetEnvPrefix("UPCWIZARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Catalog defaults. Empty-string defaults keep env-only keys visible
	// to Unmarshal.
	v.SetDefault("catalog.type", "pinot")
	v.SetDefault("catalog.endpoint", "")
	v.SetDefault("catalog.auth_header", "")
	v.SetDefault("catalog.postgres_dsn", "")
	v.SetDefault("catalog.batch_size", 1000)
	v.SetDefault("catalog.table", "products")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")

	// Rule defaults
	v.SetDefault("rules.min_description_tokens", 3)
	v.SetDefault("rules.vague_terms", []string{
		"assorted", "misc", "variety", "good product", "item", "product", "n/a",
	})
	v.SetDefault("rules.allowed_categories", []string{})

	// Recommendation defaults
	v.SetDefault("recommend.max_per_item", 3)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Type {
	case "pinot":
		if config.Catalog.Endpoint == "" {
			return fmt.Errorf("catalog endpoint is required (set UPCWIZARD_CATALOG_ENDPOINT)")
		}
	case "postgres":
		if config.Catalog.PostgresDSN == "" {
			return fmt.Errorf("Postgres DSN is required when catalog type is 'postgres'")
		}
	default:
		return fmt.Errorf("catalog type must be 'pinot' or 'postgres', got: %s", config.Catalog.Type)
	}

	if config.Catalog.BatchSize <= 0 {
		return fmt.Errorf("catalog batch size must be positive, got: %d", config.Catalog.BatchSize)
	}

	if config.Rules.MinDescriptionTokens < 1 {
		return fmt.Errorf("rules.min_description_tokens must be at least 1, got: %d", config.Rules.MinDescriptionTokens)
	}

	if config.Recommend.MaxPerItem < 1 {
		return fmt.Errorf("recommend.max_per_item must be at least 1, got: %d", config.Recommend.MaxPerItem)
	}

	return nil
}

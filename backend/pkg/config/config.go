package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	apperrors "graph-explorer/backend/pkg/errors"
)

// Graph source selectors for GRAPH_SOURCE
const (
	SourceAPI   = "api"
	SourceNeo4j = "neo4j"
)

// Styling strategies for STYLE_STRATEGY
const (
	StrategyTyped       = "typed"
	StrategyPassthrough = "passthrough"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Which backend answers fragment fetches: "api" or "neo4j"
	GraphSource string

	// Graph API (pass-through backend)
	APIURL   string
	APIKey   string
	APIToken string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Expansion
	FetchTimeout         time.Duration
	SettleDelay          time.Duration
	PlacementMaxAttempts int // 0 keeps the per-mode default
	InitialQuery         string
	InitialNodeType      string
	LabelViewLimit       int

	// Circuit breaker around the graph API
	BreakerFailureThreshold float64
	BreakerMinRequests      int
	BreakerOpenTimeout      time.Duration

	// Styling: "typed" colors and sizes nodes by type, "passthrough" keeps
	// the backend's styling
	StyleStrategy string

	// Optional YAML file overriding colors, palette and sizes
	ThemeFile string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		GraphSource:             strings.ToLower(getEnv("GRAPH_SOURCE", SourceAPI)),
		APIURL:                  getEnv("API_URL", ""),
		APIKey:                  getEnv("API_KEY", ""),
		APIToken:                getEnv("API_TOKEN", ""),
		Neo4jURI:                getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:               getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:           getEnv("NEO4J_PASSWORD", "password"),
		FetchTimeout:            getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		SettleDelay:             getEnvDuration("SETTLE_DELAY", 50*time.Millisecond),
		PlacementMaxAttempts:    getEnvInt("PLACEMENT_MAX_ATTEMPTS", 0),
		InitialQuery:            getEnv("INITIAL_QUERY", "9693"),
		InitialNodeType:         getEnv("INITIAL_NODE_TYPE", "Publication"),
		LabelViewLimit:          getEnvInt("LABEL_VIEW_LIMIT", 10000),
		BreakerFailureThreshold: getEnvFloat("BREAKER_FAILURE_THRESHOLD", 0.6),
		BreakerMinRequests:      getEnvInt("BREAKER_MIN_REQUESTS", 3),
		BreakerOpenTimeout:      getEnvDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),
		StyleStrategy:           strings.ToLower(getEnv("STYLE_STRATEGY", StrategyTyped)),
		ThemeFile:               getEnv("THEME_FILE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.GraphSource {
	case SourceAPI:
		// The browser client refused to start without all three; keep that contract.
		if c.APIURL == "" {
			return apperrors.NewConfigMissingRequired("API_URL")
		}
		if c.APIKey == "" {
			return apperrors.NewConfigMissingRequired("API_KEY")
		}
		if c.APIToken == "" {
			return apperrors.NewConfigMissingRequired("API_TOKEN")
		}
	case SourceNeo4j:
		if c.Neo4jURI == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_URI")
		}
		if c.Neo4jUser == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_USER")
		}
		if c.Neo4jPassword == "" {
			return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
		}
	default:
		return apperrors.NewConfigValidationFailed("GRAPH_SOURCE", fmt.Sprintf("unknown source %q", c.GraphSource))
	}

	switch c.StyleStrategy {
	case StrategyTyped, StrategyPassthrough:
	default:
		return apperrors.NewConfigValidationFailed("STYLE_STRATEGY", fmt.Sprintf("unknown strategy %q", c.StyleStrategy))
	}

	if c.FetchTimeout <= 0 {
		return apperrors.NewConfigValidationFailed("FETCH_TIMEOUT", "must be positive")
	}
	if c.PlacementMaxAttempts < 0 {
		return apperrors.NewConfigValidationFailed("PLACEMENT_MAX_ATTEMPTS", "must not be negative")
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		return apperrors.NewConfigValidationFailed("BREAKER_FAILURE_THRESHOLD", "must be in (0, 1]")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"partnerpay/models"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// FallbackScenarios is the built-in share table used when a project's
// scenario name is not stored in the database.
type FallbackScenarios map[string]models.Shares

// Lookup returns a copy of the shares registered under name
func (f FallbackScenarios) Lookup(name string) (models.Shares, bool) {
	shares, ok := f[name]
	if !ok {
		return nil, false
	}
	return shares.Clone(), true
}

// DefaultFallbackScenarios returns the three scenarios every installation starts with
func DefaultFallbackScenarios() FallbackScenarios {
	return FallbackScenarios{
		"Scenariusz 1": {
			"W1": decimal.NewFromInt(40),
			"W2": decimal.NewFromInt(30),
			"W3": decimal.NewFromInt(30),
		},
		"Scenariusz 2": {
			"W1": decimal.NewFromInt(50),
			"W2": decimal.NewFromInt(25),
			"W3": decimal.NewFromInt(25),
		},
		"Scenariusz 3": {
			"W1": decimal.RequireFromString("33.33"),
			"W2": decimal.RequireFromString("33.33"),
			"W3": decimal.RequireFromString("33.34"),
		},
	}
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"

	// Payout settings
	FirmPercentage  decimal.Decimal `env:"FIRM_PERCENTAGE" envDefault:"3"`
	Currency        string          `env:"CURRENCY" envDefault:"zł"`
	DefaultPartners []string        `env:"DEFAULT_PARTNERS" envDefault:"W1,W2,W3" envSeparator:","`
	AuditQueryLimit int             `env:"AUDIT_QUERY_LIMIT" envDefault:"200"`

	// FALLBACK_SCENARIOS is a JSON object {"name": {"partner": percent}}
	FallbackScenariosJSON string            `env:"FALLBACK_SCENARIOS"`
	FallbackScenarios     FallbackScenarios `env:"-"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load reads an optional .env file and then the process environment
func load() (*Config, error) {
	_ = godotenv.Load()
	return parse()
}

func parse() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	config.FallbackScenarios = DefaultFallbackScenarios()
	if config.FallbackScenariosJSON != "" {
		var table map[string]map[string]decimal.Decimal
		if err := json.Unmarshal([]byte(config.FallbackScenariosJSON), &table); err != nil {
			return nil, fmt.Errorf("FALLBACK_SCENARIOS is not valid JSON: %w", err)
		}
		config.FallbackScenarios = make(FallbackScenarios, len(table))
		for name, shares := range table {
			config.FallbackScenarios[name] = models.Shares(shares)
		}
	}

	if config.FirmPercentage.IsNegative() || config.FirmPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("FIRM_PERCENTAGE must be between 0 and 100, got %s", config.FirmPercentage)
	}
	if config.AuditQueryLimit <= 0 {
		return nil, fmt.Errorf("AUDIT_QUERY_LIMIT must be positive, got %d", config.AuditQueryLimit)
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/southecare68/crypto-webhook/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration. It is constructed once at
// startup and passed by reference into the components that need it; there
// is no ambient global state.
type Config struct {
	// Pushover credentials. When either is empty, notifications are
	// disabled and delivery falls back to a no-op sender.
	PushoverToken string
	PushoverUser  string

	// Risk / accounting parameters
	StartEquity decimal.Decimal // Equity baseline for the aggregate report
	RiskBudget  decimal.Decimal // Intended loss per trade on a full stop-out
	MaxNotional decimal.Decimal // Cap on position size * entry price

	// Database
	DBPath string

	// HTTP
	ListenAddr string

	// Logging
	LogLevel logger.LogLevel
}

// Defaults for the risk surface.
var (
	defaultStartEquity = decimal.NewFromInt(5000)
	defaultRiskBudget  = decimal.NewFromInt(200)
	defaultMaxNotional = decimal.NewFromInt(1500)
)

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Pushover (optional; the service runs without outbound notifications)
	cfg.PushoverToken = getEnv("PUSHOVER_TOKEN", "")
	cfg.PushoverUser = getEnv("PUSHOVER_USER", "")

	// Risk / accounting parameters
	cfg.StartEquity, err = getEnvAsDecimal("START_EQUITY", defaultStartEquity)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid START_EQUITY: %v", err))
	} else if cfg.StartEquity.IsNegative() {
		errs = append(errs, "START_EQUITY cannot be negative")
	}

	cfg.RiskBudget, err = getEnvAsDecimal("RISK_BUDGET", defaultRiskBudget)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_BUDGET: %v", err))
	} else if !cfg.RiskBudget.IsPositive() {
		errs = append(errs, "RISK_BUDGET must be positive")
	}

	cfg.MaxNotional, err = getEnvAsDecimal("MAX_NOTIONAL", defaultMaxNotional)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_NOTIONAL: %v", err))
	} else if !cfg.MaxNotional.IsPositive() {
		errs = append(errs, "MAX_NOTIONAL must be positive")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/trade_ledger.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// HTTP
	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// NotificationsEnabled reports whether Pushover credentials are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.PushoverToken != "" && c.PushoverUser != ""
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) (decimal.Decimal, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return decimal.Zero, fmt.Errorf("invalid decimal value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

// Package config holds the runtime configuration of the analysis engine.
// Defaults are production values; every setting can be overridden from the
// environment, or from an hjson file for humans maintaining deployments.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
)

// DCFConfig holds the user-supplied assumptions of the DCF model.
type DCFConfig struct {
	DiscountRate   float64 `json:"discount_rate"`
	GrowthRate     float64 `json:"growth_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	ForecastYears  int     `json:"forecast_years"`
}

// Config is the full engine configuration.
type Config struct {
	LogLevel string `json:"log_level"`

	// Validation thresholds.
	BalanceSheetTolerance  float64 `json:"balance_sheet_tolerance"`
	QuarterlyToleranceDays int     `json:"quarterly_tolerance_days"`
	OutlierThresholdPct    float64 `json:"outlier_threshold_pct"`

	// FX rate fetch budget. Retries are owned here, not by the engine loop.
	CurrencyFetchRetries int           `json:"currency_fetch_retries"`
	CurrencyRetryDelay   time.Duration `json:"-"`

	DCF DCFConfig `json:"dcf"`

	// Optional Postgres DSN for run persistence; empty disables the store.
	DatabaseURL string `json:"-"`
}

// Default returns the production defaults.
func Default() Config {
	return Config{
		LogLevel:               "info",
		BalanceSheetTolerance:  0.01,
		QuarterlyToleranceDays: 10,
		OutlierThresholdPct:    200,
		CurrencyFetchRetries:   3,
		CurrencyRetryDelay:     time.Second,
		DCF: DCFConfig{
			DiscountRate:   0.10,
			GrowthRate:     0.05,
			TerminalGrowth: 0.02,
			ForecastYears:  5,
		},
	}
}

// FromEnv returns the defaults overridden by environment variables.
func FromEnv() Config {
	cfg := Default()

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, ok := envFloat("BALANCE_TOLERANCE"); ok {
		cfg.BalanceSheetTolerance = v
	}
	if v, ok := envInt("QUARTERLY_TOLERANCE_DAYS"); ok {
		cfg.QuarterlyToleranceDays = v
	}
	if v, ok := envFloat("OUTLIER_THRESHOLD_PCT"); ok {
		cfg.OutlierThresholdPct = v
	}
	if v, ok := envInt("CURRENCY_RETRIES"); ok {
		cfg.CurrencyFetchRetries = v
	}
	if v, ok := envFloat("CURRENCY_RETRY_DELAY"); ok {
		cfg.CurrencyRetryDelay = time.Duration(v * float64(time.Second))
	}
	if v, ok := envFloat("DCF_DISCOUNT_RATE"); ok {
		cfg.DCF.DiscountRate = v
	}
	if v, ok := envFloat("DCF_GROWTH_RATE"); ok {
		cfg.DCF.GrowthRate = v
	}
	if v, ok := envFloat("DCF_TERMINAL_GROWTH"); ok {
		cfg.DCF.TerminalGrowth = v
	}
	if v, ok := envInt("DCF_FORECAST_YEARS"); ok {
		cfg.DCF.ForecastYears = v
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	return cfg
}

// LoadFile overlays settings from an hjson configuration file onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := hjson.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func envFloat(key string) (float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

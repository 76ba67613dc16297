package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/quantdesk/quantdesk/internal/domain"
)

// Config holds application configuration. Every tunable has an explicit
// default; nothing is read from mutable process-wide state after Load.
type Config struct {
	DataDir  string // Base directory for the price cache database
	Port     int
	LogLevel string
	DevMode  bool

	// Market data
	HistoryLookback string // Yahoo period string for daily history (e.g. "2y")
	CacheTTLMinutes int    // Freshness window for cached series
	RefreshSchedule string // Cron expression for the background history refresh

	// Analysis defaults
	Indicators IndicatorDefaults
	Composite  CompositeWeights

	// Portfolio defaults
	DriftThreshold float64 // Absolute weight drift that triggers a rebalance order
	OrderFee       float64 // Fixed per-order commission estimate
}

// IndicatorDefaults are the standard indicator parameters, overridable per
// request via query parameters.
type IndicatorDefaults struct {
	RSIPeriod           int
	MomentumPeriod      int
	MACDFast            int
	MACDSlow            int
	MACDSignal          int
	BollingerPeriod     int
	BollingerMultiplier float64
}

// CompositeWeights are the signal weights of the composite analyzer.
// They must sum to 1; weights of unavailable signals are renormalized over
// the remaining ones at evaluation time.
type CompositeWeights struct {
	RSI          float64
	Trend        float64
	Seasonality  float64
	Fundamentals float64
}

// Validate checks the weight-sum invariant.
func (w CompositeWeights) Validate() error {
	sum := w.RSI + w.Trend + w.Seasonality + w.Fundamentals
	if sum < 1-1e-6 || sum > 1+1e-6 {
		return domain.InvalidParameter("composite_weights", "weights must sum to 1, got %v", sum)
	}
	if w.RSI < 0 || w.Trend < 0 || w.Seasonality < 0 || w.Fundamentals < 0 {
		return domain.InvalidParameter("composite_weights", "weights must be non-negative")
	}
	return nil
}

// Load reads configuration from environment variables, with a .env file as
// fallback when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:         getEnv("DATA_DIR", "./data"),
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		HistoryLookback: getEnv("HISTORY_LOOKBACK", "2y"),
		CacheTTLMinutes: getEnvAsInt("CACHE_TTL_MINUTES", 5),
		RefreshSchedule: getEnv("REFRESH_SCHEDULE", "0 30 * * * *"),
		Indicators: IndicatorDefaults{
			RSIPeriod:           getEnvAsInt("RSI_PERIOD", 14),
			MomentumPeriod:      getEnvAsInt("MOMENTUM_PERIOD", 10),
			MACDFast:            getEnvAsInt("MACD_FAST", 12),
			MACDSlow:            getEnvAsInt("MACD_SLOW", 26),
			MACDSignal:          getEnvAsInt("MACD_SIGNAL", 9),
			BollingerPeriod:     getEnvAsInt("BOLLINGER_PERIOD", 20),
			BollingerMultiplier: getEnvAsFloat("BOLLINGER_MULTIPLIER", 2.0),
		},
		Composite: CompositeWeights{
			RSI:          getEnvAsFloat("WEIGHT_RSI", 0.30),
			Trend:        getEnvAsFloat("WEIGHT_TREND", 0.30),
			Seasonality:  getEnvAsFloat("WEIGHT_SEASONALITY", 0.15),
			Fundamentals: getEnvAsFloat("WEIGHT_FUNDAMENTALS", 0.25),
		},
		DriftThreshold: getEnvAsFloat("DRIFT_THRESHOLD", 0.05),
		OrderFee:       getEnvAsFloat("ORDER_FEE", 2.0),
	}

	if err := cfg.Composite.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

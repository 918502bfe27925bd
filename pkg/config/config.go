package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Only this package reads environment variables.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Data locations
	DataDir      string // signals/ledger/report output directory
	UniverseCSV  string // ticker universe file
	LedgerDriver string // "csv" or "postgres"

	// Database (used when LedgerDriver == "postgres")
	Database DatabaseConfig

	// Redis (optional quote cache)
	Redis RedisConfig

	// External APIs
	NewsAPI       NewsAPIConfig
	Reddit        RedditConfig
	Sentiment     SentimentConfig
	ShortInterest ShortInterestConfig

	// Strategy parameters
	Strategy StrategyConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// NewsAPIConfig holds NewsAPI configuration
type NewsAPIConfig struct {
	APIKey   string
	BaseURL  string
	PageSize int
	Window   time.Duration // how far back to search per ticker
}

// RedditConfig holds Reddit configuration
type RedditConfig struct {
	UserAgent   string
	Subreddits  []string
	Lookback    time.Duration
	LimitPerSub int
}

// SentimentConfig holds the sentiment scoring service configuration
type SentimentConfig struct {
	BaseURL string // scoring endpoint; empty disables sentiment
}

// ShortInterestConfig holds the short-interest scrape configuration
type ShortInterestConfig struct {
	PageURL string // table page to scrape; empty disables the channel
}

// StrategyConfig holds the signal-generation parameters.
// Immutable after Load; every component receives it at construction.
type StrategyConfig struct {
	LookbackDays int

	// Screening
	MinPrice     float64
	MinAvgVolume float64
	MinSurvivors int // below this, the screen falls back to the full universe

	// Ranking
	TopKForNews int
	TopNBuys    int
	Weights     FactorWeights

	// Exits
	StopLossPct      float64
	TakeProfitPct    float64
	SentimentExitMin float64
	HoldDaysMax      int

	// Sizing
	Equity          float64
	RiskPerTradePct float64
}

// FactorWeights are the five channel weights of the combined score.
// They must sum to 1.0; Load fails fast otherwise.
type FactorWeights struct {
	Momentum    float64
	RelStrength float64
	News        float64
	Reddit      float64
	Squeeze     float64
}

// Sum returns the total of all five weights.
func (w FactorWeights) Sum() float64 {
	return w.Momentum + w.RelStrength + w.News + w.Reddit + w.Squeeze
}

// Validate checks the weight-sum invariant.
func (w FactorWeights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"momentum", w.Momentum},
		{"relstrength", w.RelStrength},
		{"news", w.News},
		{"reddit", w.Reddit},
		{"squeeze", w.Squeeze},
	}
	for _, nw := range named {
		if nw.value < 0 {
			return fmt.Errorf("factor weight %s is negative: %v", nw.name, nw.value)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("factor weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Data locations
		DataDir:      getEnv("DATA_DIR", "data"),
		UniverseCSV:  getEnv("UNIVERSE_CSV", "data/tickers.csv"),
		LedgerDriver: getEnv("LEDGER_DRIVER", "csv"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External APIs
		NewsAPI: NewsAPIConfig{
			APIKey:   getEnv("NEWSAPI_KEY", ""),
			BaseURL:  getEnv("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
			PageSize: getEnvAsInt("NEWSAPI_PAGE_SIZE", 20),
			Window:   getEnvAsDuration("NEWSAPI_WINDOW", "48h"),
		},
		Reddit: RedditConfig{
			UserAgent:   getEnv("REDDIT_USER_AGENT", "papertrade/1.0"),
			Subreddits:  getEnvAsList("REDDIT_SUBREDDITS", "stocks,wallstreetbets,investing"),
			Lookback:    getEnvAsDuration("REDDIT_LOOKBACK", "72h"),
			LimitPerSub: getEnvAsInt("REDDIT_LIMIT_PER_SUB", 200),
		},
		Sentiment: SentimentConfig{
			BaseURL: getEnv("SENTIMENT_URL", ""),
		},
		ShortInterest: ShortInterestConfig{
			PageURL: getEnv("SHORT_INTEREST_URL", ""),
		},

		// Strategy
		Strategy: StrategyConfig{
			LookbackDays: getEnvAsInt("LOOKBACK_DAYS", 180),

			MinPrice:     getEnvAsFloat("MIN_PRICE", 5.0),
			MinAvgVolume: getEnvAsFloat("MIN_AVG_VOLUME_20D", 2_000_000),
			MinSurvivors: getEnvAsInt("MIN_SURVIVORS", 10),

			TopKForNews: getEnvAsInt("TOP_K_FOR_NEWS", 15),
			TopNBuys:    getEnvAsInt("TOP_N_BUYS", 10),
			Weights: FactorWeights{
				Momentum:    getEnvAsFloat("WEIGHT_MOMENTUM", 0.35),
				RelStrength: getEnvAsFloat("WEIGHT_RELSTRENGTH", 0.15),
				News:        getEnvAsFloat("WEIGHT_NEWS", 0.25),
				Reddit:      getEnvAsFloat("WEIGHT_REDDIT", 0.15),
				Squeeze:     getEnvAsFloat("WEIGHT_SQUEEZE", 0.10),
			},

			StopLossPct:      getEnvAsFloat("STOP_LOSS_PCT", 0.08),
			TakeProfitPct:    getEnvAsFloat("TAKE_PROFIT_PCT", 0.05),
			SentimentExitMin: getEnvAsFloat("SENTIMENT_EXIT_MIN", 0.20),
			HoldDaysMax:      getEnvAsInt("HOLD_DAYS_MAX", 3),

			Equity:          getEnvAsFloat("PORTFOLIO_EQUITY", 100_000),
			RiskPerTradePct: getEnvAsFloat("RISK_PER_TRADE_PCT", 0.01),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks required values and strategy invariants.
// Failures here are fatal: the run aborts before any I/O side effect.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.LedgerDriver {
	case "csv":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when LEDGER_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("LEDGER_DRIVER must be csv or postgres, got %q", c.LedgerDriver)
	}

	if err := c.Strategy.Weights.Validate(); err != nil {
		return err
	}

	s := c.Strategy
	if s.StopLossPct <= 0 || s.TakeProfitPct <= 0 {
		return fmt.Errorf("stop-loss and take-profit must be positive")
	}
	if s.HoldDaysMax <= 0 {
		return fmt.Errorf("HOLD_DAYS_MAX must be positive")
	}
	if s.Equity <= 0 || s.RiskPerTradePct <= 0 {
		return fmt.Errorf("equity and risk-per-trade must be positive")
	}
	if s.TopNBuys <= 0 || s.TopKForNews <= 0 {
		return fmt.Errorf("TOP_N_BUYS and TOP_K_FOR_NEWS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

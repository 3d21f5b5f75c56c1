package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Trading
	Symbol           string
	InitialCapital   float64
	LotSize          int64
	MarginMultiplier float64

	// Auto trading
	AutoTradeEnabled   bool
	AutoTradeMinConf   float64
	AutoTradeDelay     time.Duration
	AutoTradeMaxLots   int64
	EnforceMarketHours bool

	// Market data feed: "sim" (in-process random walk) or "ws" (quote server)
	FeedMode      string
	QuoteWSURL    string
	TickInterval  time.Duration
	SimBasePrice  float64
	SimVolatility float64

	// Angel One credentials (required only when FeedMode is "smartapi")
	AngelAPIKey     string
	AngelClientCode string
	AngelPassword   string
	AngelTOTPSecret string

	// Infrastructure
	HTTPAddr      string
	MetricsAddr   string
	SQLitePath    string
	RedisAddr     string // empty disables the Redis publisher
	RedisPassword string

	// Telegram notifications (empty token disables)
	TelegramToken  string
	TelegramChatID string

	// Generic webhook notifications (empty disables)
	WebhookURL string
}

// Load reads configuration from environment variables with sensible defaults.
// Angel One credentials are only required for the smartapi feed mode.
func Load() *Config {
	cfg := &Config{
		Symbol:           getEnv("SYMBOL", "BANKNIFTY"),
		InitialCapital:   getFloat("INITIAL_CAPITAL", 100000),
		LotSize:          getInt64("LOT_SIZE", 25),
		MarginMultiplier: getFloat("MARGIN_MULTIPLIER", 5),

		AutoTradeEnabled:   getBool("AUTO_TRADE", false),
		AutoTradeMinConf:   getFloat("AUTO_TRADE_MIN_CONFIDENCE", 0.6),
		AutoTradeDelay:     getDuration("AUTO_TRADE_DELAY", 500*time.Millisecond),
		AutoTradeMaxLots:   getInt64("AUTO_TRADE_MAX_LOTS", 1),
		EnforceMarketHours: getBool("ENFORCE_MARKET_HOURS", false),

		FeedMode:      getEnv("FEED_MODE", "sim"),
		QuoteWSURL:    getEnv("QUOTE_WS_URL", "ws://localhost:9001/ws"),
		TickInterval:  getDuration("TICK_INTERVAL", 2*time.Second),
		SimBasePrice:  getFloat("SIM_BASE_PRICE", 52000),
		SimVolatility: getFloat("SIM_VOLATILITY", 0.0015),

		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		SQLitePath:    getEnv("SQLITE_PATH", "data/trades.db"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:     getEnv("WEBHOOK_URL", ""),
	}

	if cfg.FeedMode == "smartapi" {
		cfg.AngelAPIKey = mustEnv("ANGEL_API_KEY")
		cfg.AngelClientCode = mustEnv("ANGEL_CLIENT_CODE")
		cfg.AngelPassword = mustEnv("ANGEL_PASSWORD")
		cfg.AngelTOTPSecret = mustEnv("ANGEL_TOTP_SECRET")
	}
	return cfg
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		log.Printf("[config] invalid int for %s, using default %d", key, fallback)
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[config] invalid float for %s, using default %v", key, fallback)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("[config] invalid bool for %s, using default %v", key, fallback)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("[config] invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}

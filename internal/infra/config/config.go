package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultThresholdDays = 30
	defaultEmailFrom     = "no-reply@admin.com"
	defaultHTTPAddr      = "127.0.0.1:9090"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string

	// Channels. An empty credential disables its channel, it is never a startup error.
	EmailAPIKey       string
	EmailFrom         string
	ChatBotToken      string
	ChatDestinationID int64

	AdminTelegramID int64 // 0 disables the admin bot commands

	ExpiryThresholdDays int
	StartupDelay        time.Duration
	ScanInterval        time.Duration
	CronSpecExpiryCheck string // Overrides ScanInterval when set

	ChannelTimeout     time.Duration // Per outbound call
	LifecycleTimeout   time.Duration // Whole synchronous lifecycle notification
	LifecycleQueueSize int

	// Outbound pacing in requests per second; 0 disables.
	EmailRateLimit float64
	EmailRateBurst int
	ChatRateLimit  float64 // Telegram allows about 20 messages a minute to one group
	ChatRateBurst  int

	HTTPAddr    string
	LogLevel    string
	Environment string
}

// EmailEnabled reports whether the email channel has credentials.
func (c *AppConfig) EmailEnabled() bool { return c.EmailAPIKey != "" }

// ChatEnabled reports whether the chat channel has both a token and a destination.
func (c *AppConfig) ChatEnabled() bool { return c.ChatBotToken != "" && c.ChatDestinationID != 0 }

// AdminBotEnabled reports whether the bot should poll for admin commands.
func (c *AppConfig) AdminBotEnabled() bool { return c.ChatBotToken != "" && c.AdminTelegramID != 0 }

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.EmailAPIKey = os.Getenv("EMAIL_API_KEY")
	cfg.EmailFrom = os.Getenv("EMAIL_FROM")
	if cfg.EmailFrom == "" {
		cfg.EmailFrom = defaultEmailFrom
	}

	cfg.ChatBotToken = os.Getenv("CHAT_BOT_TOKEN")
	if cfg.ChatDestinationID, err = int64Env("CHAT_DESTINATION_ID", 0); err != nil {
		return nil, err
	}
	if cfg.AdminTelegramID, err = int64Env("ADMIN_TELEGRAM_ID", 0); err != nil {
		return nil, err
	}

	threshold, err := int64Env("EXPIRY_THRESHOLD_DAYS", DefaultThresholdDays)
	if err != nil {
		return nil, err
	}
	if threshold < 0 {
		return nil, fmt.Errorf("invalid EXPIRY_THRESHOLD_DAYS: must not be negative")
	}
	cfg.ExpiryThresholdDays = int(threshold)

	if cfg.StartupDelay, err = durationEnv("STARTUP_DELAY", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.ScanInterval, err = durationEnv("SCAN_INTERVAL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ScanInterval <= 0 {
		return nil, fmt.Errorf("invalid SCAN_INTERVAL: must be positive")
	}
	cfg.CronSpecExpiryCheck = os.Getenv("EXPIRY_CHECK_CRON")

	if cfg.ChannelTimeout, err = durationEnv("CHANNEL_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LifecycleTimeout, err = durationEnv("LIFECYCLE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	queueSize, err := int64Env("LIFECYCLE_QUEUE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	if queueSize <= 0 {
		return nil, fmt.Errorf("invalid LIFECYCLE_QUEUE_SIZE: must be positive")
	}
	cfg.LifecycleQueueSize = int(queueSize)

	if cfg.EmailRateLimit, err = rateEnv("EMAIL_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.EmailRateBurst, err = burstEnv("EMAIL_RATE_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.ChatRateLimit, err = rateEnv("CHAT_RATE_LIMIT", 20.0/60.0); err != nil {
		return nil, err
	}
	if cfg.ChatRateBurst, err = burstEnv("CHAT_RATE_BURST", 3); err != nil {
		return nil, err
	}

	// The call-in endpoint is unauthenticated, so only loopback by default.
	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

func int64Env(key string, def int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func rateEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return v, nil
}

func burstEnv(key string, def int64) (int, error) {
	v, err := int64Env(key, def)
	if err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("invalid %s: must be at least 1", key)
	}
	return int(v), nil
}
